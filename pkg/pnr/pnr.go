// Package pnr generates confirmation codes (Passenger Name Records).
package pnr

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Length is the fixed size of every confirmation code.
const Length = 10

// Generator produces a new confirmation code on each call.
type Generator func() string

// Generate combines the last 4 base36 digits of the current millisecond
// timestamp with 6 hex digits of a random UUID, upper-cased.
func Generate() string {
	return generateAt(time.Now())
}

func generateAt(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	if len(ts) > 4 {
		ts = ts[len(ts)-4:]
	}
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	code := ts + random[:Length-len(ts)]
	return strings.ToUpper(code)
}

// Valid reports whether s looks like a code produced by Generate.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9') && !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
