package domain

import "errors"

// Sentinel errors shared across services and controllers.
var (
	// ErrNotFound is returned when a requested event does not exist.
	ErrNotFound = errors.New("not found")
	// ErrRegistrationNotFound is returned when an admin edits or deletes a
	// registration that does not exist.
	ErrRegistrationNotFound = errors.New("registration not found")
	// ErrRegistrationClosed is returned when claiming a slot on an event whose
	// registration has been closed by the organizer.
	ErrRegistrationClosed = errors.New("registration closed")
	// ErrInvalidPhone is returned when a phone number is not exactly 10 digits.
	ErrInvalidPhone = errors.New("invalid phone format")
	// ErrSlotConflict is returned when a slot is already held by a different
	// participant. Use errors.As with *SlotConflictError to get the occupant.
	ErrSlotConflict = errors.New("slot already taken")
	// ErrUnauthorized is returned on a failed admin login.
	ErrUnauthorized = errors.New("unauthorized")
)

// SlotConflictError reports a claim or reassignment that lost to an existing
// registration. Phone is the occupant's phone when known; it may be empty when
// the conflict was detected by the storage uniqueness constraint.
type SlotConflictError struct {
	SlotTime string
	Phone    string
}

func (e *SlotConflictError) Error() string {
	return "slot " + e.SlotTime + " already taken"
}

// Unwrap lets errors.Is(err, ErrSlotConflict) match.
func (e *SlotConflictError) Unwrap() error { return ErrSlotConflict }
