package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"slotbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMailer records sent mail and can fail for selected recipients.
type fakeMailer struct {
	sent    []string
	failFor map[string]bool
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	if f.failFor[to] {
		return errors.New("smtp rejected")
	}
	f.sent = append(f.sent, to)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEventService(er domain.EventRepository, rr domain.RegistrationRepository, mailer domain.Mailer) domain.EventService {
	if mailer == nil {
		mailer = &fakeMailer{}
	}
	return NewEventService(er, rr, mailer, "https://booking.example.com", testLogger())
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		title        string
		eventDate    string
		startTime    string
		endTime      string
		slotDuration int
		breaks       []domain.BreakInterval
		repoErr      error
		wantErr      bool
		assert       func(t *testing.T, er *fakeEventRepo, event *domain.Event, url string)
	}{
		{
			name:         "success",
			title:        "Parent Meetings",
			eventDate:    "2025-05-10",
			startTime:    "09:00",
			endTime:      "12:00",
			slotDuration: 30,
			breaks:       []domain.BreakInterval{{Start: "10:00", End: "10:30"}},
			assert: func(t *testing.T, er *fakeEventRepo, event *domain.Event, url string) {
				require.NotEmpty(t, event.ID)
				assert.True(t, event.RegistrationOpen, "new events open for registration")
				assert.Len(t, event.EventHash, 16)
				assert.Regexp(t, "^[0-9a-f]{16}$", event.EventHash)
				assert.Equal(t, "https://booking.example.com/register/"+event.EventHash, url)
				_, ok := er.byID[event.ID]
				require.True(t, ok)
			},
		},
		{
			name:         "nil breaks stored as empty list",
			title:        "Parent Meetings",
			eventDate:    "2025-05-10",
			startTime:    "09:00",
			endTime:      "12:00",
			slotDuration: 30,
			breaks:       nil,
			assert: func(t *testing.T, _ *fakeEventRepo, event *domain.Event, _ string) {
				require.NotNil(t, event.Breaks)
				assert.Empty(t, event.Breaks)
			},
		},
		{
			name:         "missing title",
			title:        "   ",
			eventDate:    "2025-05-10",
			startTime:    "09:00",
			endTime:      "12:00",
			slotDuration: 30,
			wantErr:      true,
		},
		{
			name:         "bad date",
			title:        "Parent Meetings",
			eventDate:    "10-05-2025",
			startTime:    "09:00",
			endTime:      "12:00",
			slotDuration: 30,
			wantErr:      true,
		},
		{
			name:         "bad slot duration",
			title:        "Parent Meetings",
			eventDate:    "2025-05-10",
			startTime:    "09:00",
			endTime:      "12:00",
			slotDuration: 0,
			wantErr:      true,
		},
		{
			name:         "bad time format",
			title:        "Parent Meetings",
			eventDate:    "2025-05-10",
			startTime:    "9am",
			endTime:      "12:00",
			slotDuration: 30,
			wantErr:      true,
		},
		{
			name:         "repo error",
			title:        "Parent Meetings",
			eventDate:    "2025-05-10",
			startTime:    "09:00",
			endTime:      "12:00",
			slotDuration: 30,
			repoErr:      errors.New("db down"),
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			er := newFakeEventRepo()
			er.createErr = tt.repoErr
			svc := newTestEventService(er, newFakeRegRepo(), nil)
			event, url, err := svc.CreateEvent(ctx, tt.title, tt.eventDate, tt.startTime, tt.endTime, tt.slotDuration, tt.breaks)
			if tt.wantErr {
				require.Error(t, err)
				require.Nil(t, event)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, event)
			if tt.assert != nil {
				tt.assert(t, er, event, url)
			}
		})
	}
}

func TestEventService_CreateEvent_HashVariesWithSalt(t *testing.T) {
	ctx := context.Background()
	svc := newTestEventService(newFakeEventRepo(), newFakeRegRepo(), nil)

	a, _, err := svc.CreateEvent(ctx, "Parent Meetings", "2025-05-10", "09:00", "12:00", 30, nil)
	require.NoError(t, err)
	b, _, err := svc.CreateEvent(ctx, "Parent Meetings", "2025-05-10", "09:00", "12:00", 30, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.EventHash, b.EventHash, "identical inputs must still produce distinct hashes")
}

func TestEventService_ListEventsByDate(t *testing.T) {
	ctx := context.Background()
	er := newFakeEventRepo()
	er.addEvent("aaaa111122223333", "09:00", "12:00", 30)
	svc := newTestEventService(er, newFakeRegRepo(), nil)

	t.Run("invalid date", func(t *testing.T) {
		_, _, err := svc.ListEventsByDate(ctx, "not-a-date", domain.PaginationParams{Page: 1, PageSize: 20})
		require.Error(t, err)
	})

	t.Run("returns events on the date", func(t *testing.T) {
		events, total, err := svc.ListEventsByDate(ctx, "2025-05-10", domain.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, events, 1)
	})

	t.Run("empty on other dates", func(t *testing.T) {
		events, total, err := svc.ListEventsByDate(ctx, "2030-01-01", domain.PaginationParams{Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		require.Empty(t, events)
	})
}

func TestEventService_ToggleRegistration(t *testing.T) {
	ctx := context.Background()
	er := newFakeEventRepo()
	e := er.addEvent("aaaa111122223333", "09:00", "12:00", 30)
	svc := newTestEventService(er, newFakeRegRepo(), nil)

	open, err := svc.ToggleRegistration(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, open)

	open, err = svc.ToggleRegistration(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, open)

	_, err = svc.ToggleRegistration(ctx, "ev-missing")
	require.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()
	er := newFakeEventRepo()
	e := er.addEvent("aaaa111122223333", "09:00", "12:00", 30)
	svc := newTestEventService(er, newFakeRegRepo(), nil)

	require.NoError(t, svc.DeleteEvent(ctx, e.ID))
	require.True(t, errors.Is(svc.DeleteEvent(ctx, e.ID), domain.ErrNotFound))
}

func TestEventService_ListSlots(t *testing.T) {
	ctx := context.Background()
	const hash = "aaaa111122223333"

	t.Run("event not found", func(t *testing.T) {
		svc := newTestEventService(newFakeEventRepo(), newFakeRegRepo(), nil)
		_, err := svc.ListSlots(ctx, "missing")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("merges occupancy into the generated sequence", func(t *testing.T) {
		er := newFakeEventRepo()
		rr := newFakeRegRepo()
		e := er.addEvent(hash, "09:00", "10:30", 30)
		rr.addReg(e.ID, "Anna Smith", "1234567890", "09:30")

		svc := newTestEventService(er, rr, nil)
		slots, err := svc.ListSlots(ctx, hash)
		require.NoError(t, err)
		require.Len(t, slots, 3)

		assert.Equal(t, "09:00", slots[0].Time)
		assert.False(t, slots[0].Occupied)
		assert.Empty(t, slots[0].Phone)

		assert.Equal(t, "09:30", slots[1].Time)
		assert.True(t, slots[1].Occupied)
		assert.Equal(t, "1234567890", slots[1].Phone)

		assert.Equal(t, "10:00", slots[2].Time)
		assert.False(t, slots[2].Occupied)
	})
}

func TestEventService_ListAdminSlots(t *testing.T) {
	ctx := context.Background()
	er := newFakeEventRepo()
	rr := newFakeRegRepo()
	e := er.addEvent("aaaa111122223333", "09:00", "10:00", 30)
	reg := rr.addReg(e.ID, "Anna Smith", "1234567890", "09:00")

	svc := newTestEventService(er, rr, nil)

	t.Run("event not found", func(t *testing.T) {
		_, err := svc.ListAdminSlots(ctx, "ev-missing")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("includes registration detail", func(t *testing.T) {
		slots, err := svc.ListAdminSlots(ctx, e.ID)
		require.NoError(t, err)
		require.Len(t, slots, 2)
		require.NotNil(t, slots[0].Registration)
		assert.Equal(t, reg.ID, slots[0].Registration.ID)
		assert.Equal(t, "Anna Smith", slots[0].Registration.ChildName)
		assert.Nil(t, slots[1].Registration)
	})
}

func TestEventService_SendInvitations(t *testing.T) {
	ctx := context.Background()
	er := newFakeEventRepo()
	e := er.addEvent("aaaa111122223333", "09:00", "12:00", 30)

	t.Run("event not found", func(t *testing.T) {
		svc := newTestEventService(er, newFakeRegRepo(), &fakeMailer{})
		_, _, err := svc.SendInvitations(ctx, "ev-missing", []string{"a@example.com"})
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("counts sent and collects failures", func(t *testing.T) {
		mailer := &fakeMailer{failFor: map[string]bool{"bad@example.com": true}}
		svc := newTestEventService(er, newFakeRegRepo(), mailer)

		sent, failed, err := svc.SendInvitations(ctx, e.ID, []string{"a@example.com", "bad@example.com", "b@example.com"})
		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Equal(t, []string{"bad@example.com"}, failed)
		assert.ElementsMatch(t, []string{"a@example.com", "b@example.com"}, mailer.sent)
	})
}
