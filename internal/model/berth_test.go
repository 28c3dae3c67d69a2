package model

import (
	"testing"

	apperrors "railway-reservation/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBerthClaim(t *testing.T) {
	t.Run("Standard berth holds one", func(t *testing.T) {
		b := &Berth{Number: 1, Category: BerthLower}
		require.NoError(t, b.Claim(2))
		assert.True(t, b.Occupied)
		assert.Equal(t, 1, b.Occupants)

		err := b.Claim(2)
		assert.ErrorIs(t, err, apperrors.ErrInvariantViolation)
		assert.Equal(t, 1, b.Occupants)
	})

	t.Run("Side lower is shared by two", func(t *testing.T) {
		b := &Berth{Number: 64, Category: BerthSideLower}

		require.NoError(t, b.Claim(2))
		assert.False(t, b.Occupied, "first RAC occupant leaves room for one more")
		assert.True(t, b.HasRoom(2))

		require.NoError(t, b.Claim(2))
		assert.True(t, b.Occupied)
		assert.False(t, b.HasRoom(2))

		assert.ErrorIs(t, b.Claim(2), apperrors.ErrInvariantViolation)
		assert.Equal(t, 2, b.Occupants)
	})
}

func TestBerthRelease(t *testing.T) {
	t.Run("Shared berth stays occupied for remaining occupant", func(t *testing.T) {
		b := &Berth{Category: BerthSideLower, Occupied: true, Occupants: 2}

		require.NoError(t, b.Release())
		assert.True(t, b.Occupied)
		assert.Equal(t, 1, b.Occupants)

		require.NoError(t, b.Release())
		assert.False(t, b.Occupied)
		assert.Equal(t, 0, b.Occupants)
	})

	t.Run("Empty berth", func(t *testing.T) {
		b := &Berth{Category: BerthMiddle}
		assert.ErrorIs(t, b.Release(), apperrors.ErrInvariantViolation)
	})
}

func TestBerthLayout(t *testing.T) {
	caps := Capacities{BerthSets: 2, SideLowerBerths: 2, RACSlotsPerBerth: 2, WaitingListSize: 1}
	berths := BerthLayout(caps)

	require.Len(t, berths, 8)
	want := []BerthCategory{
		BerthLower, BerthMiddle, BerthUpper,
		BerthLower, BerthMiddle, BerthUpper,
		BerthSideLower, BerthSideLower,
	}
	for i, b := range berths {
		assert.Equal(t, i+1, b.Number)
		assert.Equal(t, want[i], b.Category)
		assert.False(t, b.Occupied)
	}
}

func TestBerthCategory(t *testing.T) {
	assert.True(t, BerthSideLower.IsShared())
	assert.False(t, BerthLower.IsShared())
	assert.True(t, BerthUpper.IsValid())
	assert.False(t, BerthCategory("SIDE_UPPER").IsValid())
}
