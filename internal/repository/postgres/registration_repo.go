package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"slotbooking/internal/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
// A violation of UNIQUE(event_id, slot_time) means a concurrent claim won the
// slot between our read and write; it is surfaced as a slot conflict.
const uniqueViolation = "23505"

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (event_id, child_name, phone, slot_time, registered_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		reg.EventID, reg.ChildName, reg.Phone, reg.SlotTime, reg.RegisteredAt,
	).Scan(&reg.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return &domain.SlotConflictError{SlotTime: reg.SlotTime}
		}
		return err
	}
	return nil
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, child_name, phone, slot_time, registered_at
		FROM registrations
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *registrationRepository) GetByEventAndSlot(ctx context.Context, eventID, slotTime string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, child_name, phone, slot_time, registered_at
		FROM registrations
		WHERE event_id = $1 AND slot_time = $2
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, eventID, slotTime))
}

func (r *registrationRepository) GetByEventAndIdentity(ctx context.Context, eventID, childName, phone string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, child_name, phone, slot_time, registered_at
		FROM registrations
		WHERE event_id = $1 AND child_name = $2 AND phone = $3
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, eventID, childName, phone))
}

func (r *registrationRepository) GetByEventAndPhone(ctx context.Context, eventID, phone string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, child_name, phone, slot_time, registered_at
		FROM registrations
		WHERE event_id = $1 AND phone = $2
		ORDER BY registered_at
		LIMIT 1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, eventID, phone))
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, child_name, phone, slot_time, registered_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY slot_time
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := make([]*domain.Registration, 0)
	for rows.Next() {
		reg := &domain.Registration{}
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.ChildName, &reg.Phone, &reg.SlotTime, &reg.RegisteredAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *registrationRepository) UpdateSlot(ctx context.Context, id, slotTime string) (*domain.Registration, error) {
	query := `
		UPDATE registrations
		SET slot_time = $1
		WHERE id = $2
		RETURNING id, event_id, child_name, phone, slot_time, registered_at
	`
	reg, err := r.scanOne(r.DB.QueryRowContext(ctx, query, slotTime, id))
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return nil, &domain.SlotConflictError{SlotTime: slotTime}
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM registrations WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) scanOne(row *sql.Row) (*domain.Registration, error) {
	reg := &domain.Registration{}
	err := row.Scan(&reg.ID, &reg.EventID, &reg.ChildName, &reg.Phone, &reg.SlotTime, &reg.RegisteredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}
