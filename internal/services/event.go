package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"slotbooking/internal/domain"
)

// eventHashLen is the number of hex characters of the public event token.
const eventHashLen = 16

type eventService struct {
	eventRepo domain.EventRepository
	regRepo   domain.RegistrationRepository
	mailer    domain.Mailer
	baseURL   string
	logger    *slog.Logger
}

// NewEventService creates an EventService. baseURL is used to build shareable
// registration URLs (no trailing slash expected).
func NewEventService(
	eventRepo domain.EventRepository,
	regRepo domain.RegistrationRepository,
	mailer domain.Mailer,
	baseURL string,
	logger *slog.Logger,
) domain.EventService {
	return &eventService{
		eventRepo: eventRepo,
		regRepo:   regRepo,
		mailer:    mailer,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// generateEventHash derives the opaque public token from the title, date, and
// a random salt, hashed and truncated to 16 hex characters so numeric IDs are
// never exposed in shareable URLs.
func generateEventHash(title, eventDate string) (string, error) {
	salt := make([]byte, 8)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	sum := sha256.Sum256(fmt.Appendf(nil, "%s_%s_%s", title, eventDate, hex.EncodeToString(salt)))
	return hex.EncodeToString(sum[:])[:eventHashLen], nil
}

func (s *eventService) registrationURL(hash string) string {
	return s.baseURL + "/register/" + hash
}

func (s *eventService) CreateEvent(ctx context.Context, title, eventDate, startTime, endTime string, slotDuration int, breaks []domain.BreakInterval) (*domain.Event, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, "", fmt.Errorf("title is required")
	}
	if _, err := time.Parse("2006-01-02", eventDate); err != nil {
		return nil, "", fmt.Errorf("invalid event date %q: expected YYYY-MM-DD", eventDate)
	}
	// Reject inputs the generator cannot produce a slot sequence for.
	if _, err := domain.GenerateSlots(startTime, endTime, slotDuration, breaks); err != nil {
		return nil, "", err
	}

	hash, err := generateEventHash(title, eventDate)
	if err != nil {
		return nil, "", err
	}

	event := domain.NewEvent(title, eventDate, startTime, endTime, slotDuration, breaks, time.Now())
	event.EventHash = hash
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, "", fmt.Errorf("create event: %w", err)
	}
	return event, s.registrationURL(hash), nil
}

func (s *eventService) ListEventsByDate(ctx context.Context, date string, params domain.PaginationParams) ([]*domain.EventWithCount, int, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, 0, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	events, total, err := s.eventRepo.ListByDate(ctx, date, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return events, total, nil
}

func (s *eventService) ToggleRegistration(ctx context.Context, eventID string) (bool, error) {
	open, err := s.eventRepo.ToggleOpen(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("toggle registration: %w", err)
	}
	return open, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) GetEventByHash(ctx context.Context, hash string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListSlots(ctx context.Context, hash string) ([]*domain.SlotStatus, error) {
	event, err := s.eventRepo.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// The slot sequence is re-derived on every request, never persisted.
	slots, err := event.Slots()
	if err != nil {
		return nil, fmt.Errorf("generate slots: %w", err)
	}

	regs, err := s.regRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	occupied := make(map[string]string, len(regs))
	for _, reg := range regs {
		occupied[reg.SlotTime] = reg.Phone
	}

	out := make([]*domain.SlotStatus, 0, len(slots))
	for _, slot := range slots {
		phone, taken := occupied[slot]
		out = append(out, &domain.SlotStatus{Time: slot, Occupied: taken, Phone: phone})
	}
	return out, nil
}

func (s *eventService) ListAdminSlots(ctx context.Context, eventID string) ([]*domain.AdminSlot, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	slots, err := event.Slots()
	if err != nil {
		return nil, fmt.Errorf("generate slots: %w", err)
	}

	regs, err := s.regRepo.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	bySlot := make(map[string]*domain.Registration, len(regs))
	for _, reg := range regs {
		bySlot[reg.SlotTime] = reg
	}

	out := make([]*domain.AdminSlot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, &domain.AdminSlot{Time: slot, Registration: bySlot[slot]})
	}
	return out, nil
}

func (s *eventService) SendInvitations(ctx context.Context, eventID string, emails []string) (int, []string, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil, domain.ErrNotFound
		}
		return 0, nil, fmt.Errorf("get event: %w", err)
	}

	url := s.registrationURL(event.EventHash)
	subject := fmt.Sprintf("Registration open: %s on %s", event.Title, event.EventDate)
	html := fmt.Sprintf(
		`<p>You are invited to <strong>%s</strong> on %s.</p><p>Pick your time slot here: <a href="%s">%s</a></p>`,
		event.Title, event.EventDate, url, url,
	)
	text := fmt.Sprintf("You are invited to %s on %s. Pick your time slot here: %s", event.Title, event.EventDate, url)

	sent := 0
	failed := []string{}
	for _, email := range emails {
		if err := s.mailer.Send(email, subject, html, text); err != nil {
			s.logger.WarnContext(ctx, "invitation send failed", "email", email, "err", err)
			failed = append(failed, email)
			continue
		}
		sent++
	}
	return sent, failed, nil
}
