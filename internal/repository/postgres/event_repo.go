package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"slotbooking/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func marshalBreaks(breaks []domain.BreakInterval) ([]byte, error) {
	if breaks == nil {
		breaks = []domain.BreakInterval{}
	}
	data, err := json.Marshal(breaks)
	if err != nil {
		return nil, fmt.Errorf("marshal breaks: %w", err)
	}
	return data, nil
}

func scanEvent(row interface{ Scan(...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var breaksRaw []byte
	err := row.Scan(
		&e.ID, &e.Title, &e.EventDate, &e.StartTime, &e.EndTime,
		&e.SlotDuration, &breaksRaw, &e.RegistrationOpen, &e.EventHash, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(breaksRaw) > 0 {
		if err := json.Unmarshal(breaksRaw, &e.Breaks); err != nil {
			return nil, fmt.Errorf("unmarshal breaks: %w", err)
		}
	}
	if e.Breaks == nil {
		e.Breaks = []domain.BreakInterval{}
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	breaksRaw, err := marshalBreaks(e.Breaks)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO events (title, event_date, start_time, end_time, slot_duration, breaks, registration_open, event_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.EventDate, e.StartTime, e.EndTime, e.SlotDuration,
		breaksRaw, e.RegistrationOpen, e.EventHash, e.CreatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT id, title, event_date, start_time, end_time, slot_duration, breaks, registration_open, event_hash, created_at
		FROM events
		WHERE id = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByHash(ctx context.Context, hash string) (*domain.Event, error) {
	query := `
		SELECT id, title, event_date, start_time, end_time, slot_duration, breaks, registration_open, event_hash, created_at
		FROM events
		WHERE event_hash = $1
	`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, hash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByDate(ctx context.Context, date string, params domain.PaginationParams) ([]*domain.EventWithCount, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM events WHERE event_date = $1`
	if err := r.DB.QueryRowContext(ctx, countQuery, date).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT e.id, e.title, e.event_date, e.start_time, e.end_time, e.slot_duration, e.breaks, e.registration_open, e.event_hash, e.created_at,
		       COUNT(r.id) AS registrations_count
		FROM events e
		LEFT JOIN registrations r ON r.event_id = e.id
		WHERE e.event_date = $1
		GROUP BY e.id
		ORDER BY e.start_time, e.id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, date, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.EventWithCount, 0)
	for rows.Next() {
		e := &domain.Event{}
		var breaksRaw []byte
		var count int
		if err := rows.Scan(
			&e.ID, &e.Title, &e.EventDate, &e.StartTime, &e.EndTime,
			&e.SlotDuration, &breaksRaw, &e.RegistrationOpen, &e.EventHash, &e.CreatedAt,
			&count,
		); err != nil {
			return nil, 0, err
		}
		if len(breaksRaw) > 0 {
			if err := json.Unmarshal(breaksRaw, &e.Breaks); err != nil {
				return nil, 0, fmt.Errorf("unmarshal breaks: %w", err)
			}
		}
		if e.Breaks == nil {
			e.Breaks = []domain.BreakInterval{}
		}
		events = append(events, &domain.EventWithCount{Event: e, RegistrationsCount: count})
	}
	return events, total, rows.Err()
}

func (r *eventRepository) ToggleOpen(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE events
		SET registration_open = NOT registration_open
		WHERE id = $1
		RETURNING registration_open
	`
	var open bool
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&open)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	return open, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
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
