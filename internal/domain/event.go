package domain

import (
	"context"
	"time"
)

// BreakInterval is a configured pause during which no slot may start.
// Start and End are "HH:MM" times within the event day.
type BreakInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Event represents a single-day event with fixed-length bookable time slots.
// swagger:model Event
type Event struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	EventDate        string          `json:"event_date"` // "YYYY-MM-DD"
	StartTime        string          `json:"start_time"` // "HH:MM"
	EndTime          string          `json:"end_time"`   // "HH:MM"
	SlotDuration     int             `json:"slot_duration"` // minutes
	Breaks           []BreakInterval `json:"breaks"`
	RegistrationOpen bool            `json:"registration_open"`
	EventHash        string          `json:"event_hash"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewEvent returns a new Event with registration open. ID is set by the
// repository on create; EventHash is set by the service before create.
func NewEvent(title, eventDate, startTime, endTime string, slotDuration int, breaks []BreakInterval, createdAt time.Time) *Event {
	if breaks == nil {
		breaks = []BreakInterval{}
	}
	return &Event{
		Title:            title,
		EventDate:        eventDate,
		StartTime:        startTime,
		EndTime:          endTime,
		SlotDuration:     slotDuration,
		Breaks:           breaks,
		RegistrationOpen: true,
		CreatedAt:        createdAt,
	}
}

// Slots returns the event's full slot sequence, re-derived on every call.
func (e *Event) Slots() ([]string, error) {
	return GenerateSlots(e.StartTime, e.EndTime, e.SlotDuration, e.Breaks)
}

// EventWithCount bundles an event with its registration count for admin lists.
type EventWithCount struct {
	*Event
	RegistrationsCount int `json:"registrations_count"`
}

// EventRepository defines storage operations for events.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByHash(ctx context.Context, hash string) (*Event, error)
	// ListByDate returns events on the given "YYYY-MM-DD" date with their
	// registration counts, ordered by start time, plus the total for pagination.
	ListByDate(ctx context.Context, date string, params PaginationParams) ([]*EventWithCount, int, error)
	// ToggleOpen flips registration_open and returns the new value.
	ToggleOpen(ctx context.Context, id string) (bool, error)
	// Delete removes the event; registrations cascade at the schema level.
	Delete(ctx context.Context, id string) error
}

// SlotStatus is one entry of a public slot listing: a generated slot start
// time with its occupancy.
type SlotStatus struct {
	Time     string `json:"time"`
	Occupied bool   `json:"occupied"`
	Phone    string `json:"phone,omitempty"`
}

// AdminSlot is one entry of the admin slot listing: a generated slot merged
// with the registration holding it, if any.
type AdminSlot struct {
	Time         string        `json:"time"`
	Registration *Registration `json:"registration,omitempty"`
}

// EventService defines organizer-facing event operations.
type EventService interface {
	// CreateEvent validates the fields, assigns an event hash, and persists the
	// event. Returns the event and its shareable registration URL.
	CreateEvent(ctx context.Context, title, eventDate, startTime, endTime string, slotDuration int, breaks []BreakInterval) (*Event, string, error)
	ListEventsByDate(ctx context.Context, date string, params PaginationParams) ([]*EventWithCount, int, error)
	ToggleRegistration(ctx context.Context, eventID string) (bool, error)
	DeleteEvent(ctx context.Context, eventID string) error
	GetEventByHash(ctx context.Context, hash string) (*Event, error)
	// ListSlots returns every generated slot with its occupancy, freshly derived.
	ListSlots(ctx context.Context, hash string) ([]*SlotStatus, error)
	// ListAdminSlots returns every generated slot merged with registration detail.
	ListAdminSlots(ctx context.Context, eventID string) ([]*AdminSlot, error)
	// SendInvitations emails the event's registration URL to each address and
	// returns the sent count and the addresses that failed.
	SendInvitations(ctx context.Context, eventID string, emails []string) (int, []string, error)
}
