package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbooking/internal/domain"
)

type registrationService struct {
	eventRepo domain.EventRepository
	regRepo   domain.RegistrationRepository
}

// NewRegistrationService creates a RegistrationService with the given repositories.
func NewRegistrationService(eventRepo domain.EventRepository, regRepo domain.RegistrationRepository) domain.RegistrationService {
	return &registrationService{
		eventRepo: eventRepo,
		regRepo:   regRepo,
	}
}

// ClaimSlot decides whether a participant's submission creates a new
// registration, transfers an existing one, or is rejected with a conflict.
// The phone format is checked before the event lookup since it can never
// mutate state. The uniqueness constraint on (event_id, slot_time) is the
// final arbiter: a constraint violation during insert or update surfaces as a
// slot conflict rather than an internal error.
func (s *registrationService) ClaimSlot(ctx context.Context, eventHash, childName, phone, slotTime string) (*domain.ClaimResult, error) {
	if !domain.ValidPhone(phone) {
		return nil, domain.ErrInvalidPhone
	}
	name := domain.NormalizeName(childName)

	event, err := s.eventRepo.GetByHash(ctx, eventHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if !event.RegistrationOpen {
		return nil, domain.ErrRegistrationClosed
	}

	existing, err := s.regRepo.GetByEventAndIdentity(ctx, event.ID, name, phone)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get registration by identity: %w", err)
	}

	holder, err := s.regRepo.GetByEventAndSlot(ctx, event.ID, slotTime)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get slot holder: %w", err)
	}

	if existing == nil {
		if holder != nil {
			return nil, &domain.SlotConflictError{SlotTime: slotTime, Phone: holder.Phone}
		}
		reg := domain.NewRegistration(event.ID, name, phone, slotTime, time.Now())
		if err := s.regRepo.Create(ctx, reg); err != nil {
			// A concurrent claim may have won the slot between the read and
			// this insert; the repository already translated that to a conflict.
			if errors.Is(err, domain.ErrSlotConflict) {
				return nil, err
			}
			return nil, fmt.Errorf("create registration: %w", err)
		}
		return &domain.ClaimResult{Registration: reg, Created: true}, nil
	}

	if existing.SlotTime == slotTime {
		return &domain.ClaimResult{Registration: existing, AlreadyHeld: true}, nil
	}

	// A transfer is only blocked when the target slot belongs to a different
	// phone; a same-phone holder under another stored name is allowed through.
	if holder != nil && holder.Phone != phone {
		return nil, &domain.SlotConflictError{SlotTime: slotTime, Phone: holder.Phone}
	}

	updated, err := s.regRepo.UpdateSlot(ctx, existing.ID, slotTime)
	if err != nil {
		if errors.Is(err, domain.ErrSlotConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("transfer registration: %w", err)
	}
	return &domain.ClaimResult{Registration: updated, Transferred: true}, nil
}

func (s *registrationService) FindByPhone(ctx context.Context, eventHash, phone string) (*domain.Registration, error) {
	event, err := s.eventRepo.GetByHash(ctx, eventHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	reg, err := s.regRepo.GetByEventAndPhone(ctx, event.ID, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get registration by phone: %w", err)
	}
	return reg, nil
}

// ReassignSlot is the admin-forced variant of a transfer: the same conflict
// check applies, except the registration being moved is excluded from it.
func (s *registrationService) ReassignSlot(ctx context.Context, registrationID, slotTime string) (*domain.Registration, error) {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}

	holder, err := s.regRepo.GetByEventAndSlot(ctx, reg.EventID, slotTime)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get slot holder: %w", err)
	}
	if holder != nil && holder.ID != reg.ID {
		return nil, &domain.SlotConflictError{SlotTime: slotTime, Phone: holder.Phone}
	}
	if holder != nil && holder.ID == reg.ID {
		return reg, nil
	}

	updated, err := s.regRepo.UpdateSlot(ctx, reg.ID, slotTime)
	if err != nil {
		if errors.Is(err, domain.ErrSlotConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("reassign registration: %w", err)
	}
	return updated, nil
}

func (s *registrationService) DeleteRegistration(ctx context.Context, registrationID string) error {
	if err := s.regRepo.Delete(ctx, registrationID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrRegistrationNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}
	return nil
}
