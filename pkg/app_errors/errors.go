package apperrors

import "errors"

var (
	ErrNoTicketsAvailable  = errors.New("no tickets available")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrPassengerNotFound   = errors.New("passenger not found")
	ErrLedgerNotFound      = errors.New("ledger not found")
	ErrBerthNotFound       = errors.New("berth not found")
	ErrInvariantViolation  = errors.New("reservation invariant violated")
	ErrPNRCollision        = errors.New("pnr collision")
	ErrInvalidInput        = errors.New("invalid input")
	ErrCacheMiss           = errors.New("cache miss")
	ErrInternalServerError = errors.New("internal server error")
)
