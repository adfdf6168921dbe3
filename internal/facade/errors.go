package facade

import "errors"

// Validation errors. They are returned before any upstream call.
var (
	ErrInvalidSeason = errors.New("season must be a positive integer")
	ErrInvalidRound  = errors.New("round must be a positive integer")
	ErrInvalidRange  = errors.New("invalid season range")
)
