package domain

import (
	"context"
	"time"
)

// Registration represents a participant's claim on one slot of an event.
// A participant is identified by the (normalized name, phone) pair; there is
// no participant login.
// swagger:model Registration
type Registration struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	ChildName    string    `json:"child_name"`
	Phone        string    `json:"phone"`
	SlotTime     string    `json:"slot_time"` // "HH:MM"
	RegisteredAt time.Time `json:"registered_at"`
}

// NewRegistration returns a new Registration. ID is set by the repository on
// create.
func NewRegistration(eventID, childName, phone, slotTime string, registeredAt time.Time) *Registration {
	return &Registration{
		EventID:      eventID,
		ChildName:    childName,
		Phone:        phone,
		SlotTime:     slotTime,
		RegisteredAt: registeredAt,
	}
}

// RegistrationRepository defines storage operations for registrations.
// Create and UpdateSlot translate a storage-level uniqueness violation on
// (event_id, slot_time) into ErrSlotConflict.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id string) (*Registration, error)
	// GetByEventAndSlot returns the registration holding the slot, or ErrNotFound.
	GetByEventAndSlot(ctx context.Context, eventID, slotTime string) (*Registration, error)
	// GetByEventAndIdentity returns the registration for the (name, phone)
	// identity within the event, or ErrNotFound.
	GetByEventAndIdentity(ctx context.Context, eventID, childName, phone string) (*Registration, error)
	// GetByEventAndPhone returns the registration with the phone within the
	// event, or ErrNotFound.
	GetByEventAndPhone(ctx context.Context, eventID, phone string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	UpdateSlot(ctx context.Context, id, slotTime string) (*Registration, error)
	Delete(ctx context.Context, id string) error
}

// ClaimResult reports the outcome of a successful slot claim.
type ClaimResult struct {
	Registration *Registration
	// Created is true when a new registration row was inserted.
	Created bool
	// Transferred is true when an existing registration was moved to a new slot.
	Transferred bool
	// AlreadyHeld is true when the participant already held the requested slot
	// and nothing changed.
	AlreadyHeld bool
}

// RegistrationService defines participant and admin registration operations.
type RegistrationService interface {
	// ClaimSlot runs the slot claim protocol for the event identified by hash.
	// The phone format is checked before anything else; the name is normalized
	// before identity lookup. Errors: ErrInvalidPhone, ErrNotFound,
	// ErrRegistrationClosed, *SlotConflictError.
	ClaimSlot(ctx context.Context, eventHash, childName, phone, slotTime string) (*ClaimResult, error)
	// FindByPhone looks up a registration by phone within the event. A missing
	// registration is not an error: the returned registration is nil.
	FindByPhone(ctx context.Context, eventHash, phone string) (*Registration, error)
	// ReassignSlot moves a registration to a new slot, enforcing the slot
	// conflict check against every other registration of the same event.
	// Errors: ErrRegistrationNotFound, *SlotConflictError.
	ReassignSlot(ctx context.Context, registrationID, slotTime string) (*Registration, error)
	// DeleteRegistration removes a registration. Errors: ErrRegistrationNotFound.
	DeleteRegistration(ctx context.Context, registrationID string) error
}
