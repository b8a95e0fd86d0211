package visits

import "errors"

var (
	// ErrVisitNotFound is returned when no visit exists for an appointment id.
	ErrVisitNotFound = errors.New("visit not found")

	// ErrAlreadyCheckedIn is returned on a duplicate same-day check-in.
	ErrAlreadyCheckedIn = errors.New("already checked in")

	// ErrInvalidState is returned when a toggle is attempted from a terminal
	// or unknown status. This is an operational fault, not user input.
	ErrInvalidState = errors.New("invalid visit state")
)
