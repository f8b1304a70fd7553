package service

import "errors"

// Sentinel errors returned by the ledger and directory operations.
// The API layer maps these to HTTP status codes; nothing below it
// knows about transports or status codes.
var (
	ErrNotFound           = errors.New("not found")                      // Referenced entity absent
	ErrForbidden          = errors.New("forbidden")                      // Caller is not the owner
	ErrAlreadyReserved    = errors.New("gift already reserved")          // Reservation exists or gift fully funded
	ErrContributionsExist = errors.New("gift already has contributions") // Reservation blocked by contributions
	ErrDuplicateEmail     = errors.New("email already registered")       // Registration conflict
	ErrInvalidAmount      = errors.New("amount must be positive")        // Contribution validation
)
