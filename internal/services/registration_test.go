package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"slotbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	createErr error
	listErr   error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetByHash(ctx context.Context, hash string) (*domain.Event, error) {
	for _, e := range f.byID {
		if e.EventHash == hash {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByDate(ctx context.Context, date string, params domain.PaginationParams) ([]*domain.EventWithCount, int, error) {
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	var out []*domain.EventWithCount
	for _, e := range f.byID {
		if e.EventDate == date {
			out = append(out, &domain.EventWithCount{Event: e})
		}
	}
	if out == nil {
		out = []*domain.EventWithCount{}
	}
	total := len(out)
	offset := params.Offset()
	if offset > total {
		offset = total
	}
	end := offset + params.PageSize
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (f *fakeEventRepo) ToggleOpen(ctx context.Context, id string) (bool, error) {
	e, ok := f.byID[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	e.RegistrationOpen = !e.RegistrationOpen
	return e.RegistrationOpen, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// addEvent seeds an open event and returns it.
func (f *fakeEventRepo) addEvent(hash, startTime, endTime string, slotDuration int) *domain.Event {
	e := domain.NewEvent("Parent Meetings", "2025-05-10", startTime, endTime, slotDuration, nil, time.Now())
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	e.EventHash = hash
	f.byID[e.ID] = e
	return e
}

// fakeRegRepo is an in-memory RegistrationRepository for tests. Create and
// UpdateSlot enforce slot uniqueness per event the way the schema constraint
// does, returning a SlotConflictError carrying the occupant's phone.
type fakeRegRepo struct {
	regs      []*domain.Registration
	nextID    int
	createErr error
	updateErr error
	listErr   error
}

func newFakeRegRepo() *fakeRegRepo {
	return &fakeRegRepo{nextID: 1}
}

func (f *fakeRegRepo) holderOf(eventID, slotTime string) *domain.Registration {
	for _, r := range f.regs {
		if r.EventID == eventID && r.SlotTime == slotTime {
			return r
		}
	}
	return nil
}

func (f *fakeRegRepo) Create(ctx context.Context, reg *domain.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	if holder := f.holderOf(reg.EventID, reg.SlotTime); holder != nil {
		return &domain.SlotConflictError{SlotTime: reg.SlotTime, Phone: holder.Phone}
	}
	reg.ID = fmt.Sprintf("reg-%d", f.nextID)
	f.nextID++
	f.regs = append(f.regs, reg)
	return nil
}

func (f *fakeRegRepo) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	for _, r := range f.regs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegRepo) GetByEventAndSlot(ctx context.Context, eventID, slotTime string) (*domain.Registration, error) {
	if r := f.holderOf(eventID, slotTime); r != nil {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegRepo) GetByEventAndIdentity(ctx context.Context, eventID, childName, phone string) (*domain.Registration, error) {
	for _, r := range f.regs {
		if r.EventID == eventID && r.ChildName == childName && r.Phone == phone {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegRepo) GetByEventAndPhone(ctx context.Context, eventID, phone string) (*domain.Registration, error) {
	for _, r := range f.regs {
		if r.EventID == eventID && r.Phone == phone {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*domain.Registration{}
	for _, r := range f.regs {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegRepo) UpdateSlot(ctx context.Context, id, slotTime string) (*domain.Registration, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	reg, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if holder := f.holderOf(reg.EventID, slotTime); holder != nil && holder.ID != id {
		return nil, &domain.SlotConflictError{SlotTime: slotTime, Phone: holder.Phone}
	}
	reg.SlotTime = slotTime
	return reg, nil
}

func (f *fakeRegRepo) Delete(ctx context.Context, id string) error {
	for i, r := range f.regs {
		if r.ID == id {
			f.regs = append(f.regs[:i], f.regs[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

// addReg seeds a registration directly, bypassing the conflict check.
func (f *fakeRegRepo) addReg(eventID, childName, phone, slotTime string) *domain.Registration {
	r := domain.NewRegistration(eventID, childName, phone, slotTime, time.Now())
	r.ID = fmt.Sprintf("reg-%d", f.nextID)
	f.nextID++
	f.regs = append(f.regs, r)
	return r
}

func TestRegistrationService_ClaimSlot(t *testing.T) {
	ctx := context.Background()
	const hash = "abc123def456abcd"

	tests := []struct {
		name      string
		setup     func(er *fakeEventRepo, rr *fakeRegRepo)
		hash      string
		childName string
		phone     string
		slotTime  string
		wantErr   error
		assert    func(t *testing.T, rr *fakeRegRepo, got *domain.ClaimResult)
	}{
		{
			name:      "invalid phone rejected before event lookup",
			setup:     func(er *fakeEventRepo, rr *fakeRegRepo) {},
			hash:      "does-not-exist",
			childName: "Anna Smith",
			phone:     "12345",
			slotTime:  "09:00",
			wantErr:   domain.ErrInvalidPhone,
		},
		{
			name:      "event not found",
			setup:     func(er *fakeEventRepo, rr *fakeRegRepo) {},
			hash:      "does-not-exist",
			childName: "Anna Smith",
			phone:     "1234567890",
			slotTime:  "09:00",
			wantErr:   domain.ErrNotFound,
		},
		{
			name: "registration closed",
			setup: func(er *fakeEventRepo, rr *fakeRegRepo) {
				e := er.addEvent(hash, "09:00", "12:00", 30)
				e.RegistrationOpen = false
			},
			hash:      hash,
			childName: "Anna Smith",
			phone:     "1234567890",
			slotTime:  "09:00",
			wantErr:   domain.ErrRegistrationClosed,
		},
		{
			name: "new registration created with normalized name",
			setup: func(er *fakeEventRepo, rr *fakeRegRepo) {
				er.addEvent(hash, "09:00", "12:00", 30)
			},
			hash:      hash,
			childName: "  aNNa   sMITH ",
			phone:     "1234567890",
			slotTime:  "09:30",
			assert: func(t *testing.T, rr *fakeRegRepo, got *domain.ClaimResult) {
				assert.True(t, got.Created)
				assert.False(t, got.Transferred)
				assert.False(t, got.AlreadyHeld)
				require.NotNil(t, got.Registration)
				assert.Equal(t, "Anna Smith", got.Registration.ChildName)
				assert.Equal(t, "09:30", got.Registration.SlotTime)
				require.Len(t, rr.regs, 1)
			},
		},
		{
			name: "slot taken by another participant",
			setup: func(er *fakeEventRepo, rr *fakeRegRepo) {
				e := er.addEvent(hash, "09:00", "12:00", 30)
				rr.addReg(e.ID, "Bob Jones", "0987654321", "09:30")
			},
			hash:      hash,
			childName: "Anna Smith",
			phone:     "1234567890",
			slotTime:  "09:30",
			wantErr:   domain.ErrSlotConflict,
			assert: func(t *testing.T, rr *fakeRegRepo, _ *domain.ClaimResult) {
				require.Len(t, rr.regs, 1, "no second row must be created")
			},
		},
		{
			name: "resubmit of held slot is a no-op",
			setup: func(er *fakeEventRepo, rr *fakeRegRepo) {
				e := er.addEvent(hash, "09:00", "12:00", 30)
				rr.addReg(e.ID, "Anna Smith", "1234567890", "09:30")
			},
			hash:      hash,
			childName: "anna smith",
			phone:     "1234567890",
			slotTime:  "09:30",
			assert: func(t *testing.T, rr *fakeRegRepo, got *domain.ClaimResult) {
				assert.True(t, got.AlreadyHeld)
				assert.False(t, got.Created)
				assert.False(t, got.Transferred)
				require.Len(t, rr.regs, 1)
			},
		},
		{
			name: "resubmit with a free slot transfers the registration",
			setup: func(er *fakeEventRepo, rr *fakeRegRepo) {
				e := er.addEvent(hash, "09:00", "12:00", 30)
				rr.addReg(e.ID, "Anna Smith", "1234567890", "09:30")
			},
			hash:      hash,
			childName: "Anna Smith",
			phone:     "1234567890",
			slotTime:  "10:00",
			assert: func(t *testing.T, rr *fakeRegRepo, got *domain.ClaimResult) {
				assert.True(t, got.Transferred)
				require.Len(t, rr.regs, 1, "transfer must move the row, not add one")
				assert.Equal(t, "10:00", rr.regs[0].SlotTime)
				assert.Nil(t, rr.holderOf(rr.regs[0].EventID, "09:30"), "old slot must be free")
			},
		},
		{
			name: "transfer blocked when target is held by another phone",
			setup: func(er *fakeEventRepo, rr *fakeRegRepo) {
				e := er.addEvent(hash, "09:00", "12:00", 30)
				rr.addReg(e.ID, "Anna Smith", "1234567890", "09:30")
				rr.addReg(e.ID, "Bob Jones", "0987654321", "10:00")
			},
			hash:      hash,
			childName: "Anna Smith",
			phone:     "1234567890",
			slotTime:  "10:00",
			wantErr:   domain.ErrSlotConflict,
			assert: func(t *testing.T, rr *fakeRegRepo, _ *domain.ClaimResult) {
				assert.Equal(t, "09:30", rr.regs[0].SlotTime, "registration must stay put")
			},
		},
		{
			name: "same-phone holder under another name passes to the storage arbiter",
			setup: func(er *fakeEventRepo, rr *fakeRegRepo) {
				e := er.addEvent(hash, "09:00", "12:00", 30)
				rr.addReg(e.ID, "Anna Smith", "1234567890", "09:30")
				rr.addReg(e.ID, "Ben Smith", "1234567890", "10:00")
			},
			hash:      hash,
			childName: "Anna Smith",
			phone:     "1234567890",
			slotTime:  "10:00",
			wantErr:   domain.ErrSlotConflict,
		},
		{
			name: "concurrent insert conflict surfaces from the repository",
			setup: func(er *fakeEventRepo, rr *fakeRegRepo) {
				er.addEvent(hash, "09:00", "12:00", 30)
				rr.createErr = &domain.SlotConflictError{SlotTime: "09:00", Phone: "0987654321"}
			},
			hash:      hash,
			childName: "Anna Smith",
			phone:     "1234567890",
			slotTime:  "09:00",
			wantErr:   domain.ErrSlotConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			er := newFakeEventRepo()
			rr := newFakeRegRepo()
			tt.setup(er, rr)
			svc := NewRegistrationService(er, rr)
			got, err := svc.ClaimSlot(ctx, tt.hash, tt.childName, tt.phone, tt.slotTime)
			if tt.wantErr != nil {
				require.Error(t, err)
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				require.Nil(t, got)
				if tt.assert != nil {
					tt.assert(t, rr, nil)
				}
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			if tt.assert != nil {
				tt.assert(t, rr, got)
			}
		})
	}
}

func TestRegistrationService_ClaimSlot_ConflictCarriesOccupantPhone(t *testing.T) {
	ctx := context.Background()
	er := newFakeEventRepo()
	rr := newFakeRegRepo()
	e := er.addEvent("abc123def456abcd", "09:00", "12:00", 30)
	rr.addReg(e.ID, "Bob Jones", "0987654321", "09:30")

	svc := NewRegistrationService(er, rr)
	_, err := svc.ClaimSlot(ctx, "abc123def456abcd", "Anna Smith", "1234567890", "09:30")
	require.Error(t, err)

	var conflict *domain.SlotConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "09:30", conflict.SlotTime)
	assert.Equal(t, "0987654321", conflict.Phone)
}

func TestRegistrationService_FindByPhone(t *testing.T) {
	ctx := context.Background()
	const hash = "abc123def456abcd"

	t.Run("event not found", func(t *testing.T) {
		svc := NewRegistrationService(newFakeEventRepo(), newFakeRegRepo())
		_, err := svc.FindByPhone(ctx, "missing", "1234567890")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("unknown phone returns nil without error", func(t *testing.T) {
		er := newFakeEventRepo()
		er.addEvent(hash, "09:00", "12:00", 30)
		svc := NewRegistrationService(er, newFakeRegRepo())
		reg, err := svc.FindByPhone(ctx, hash, "1234567890")
		require.NoError(t, err)
		require.Nil(t, reg)
	})

	t.Run("known phone returns the registration", func(t *testing.T) {
		er := newFakeEventRepo()
		rr := newFakeRegRepo()
		e := er.addEvent(hash, "09:00", "12:00", 30)
		want := rr.addReg(e.ID, "Anna Smith", "1234567890", "09:30")
		svc := NewRegistrationService(er, rr)
		reg, err := svc.FindByPhone(ctx, hash, "1234567890")
		require.NoError(t, err)
		require.NotNil(t, reg)
		assert.Equal(t, want.ID, reg.ID)
		assert.Equal(t, "09:30", reg.SlotTime)
	})
}

func TestRegistrationService_ReassignSlot(t *testing.T) {
	ctx := context.Background()
	const hash = "abc123def456abcd"

	t.Run("registration not found", func(t *testing.T) {
		svc := NewRegistrationService(newFakeEventRepo(), newFakeRegRepo())
		_, err := svc.ReassignSlot(ctx, "reg-missing", "10:00")
		require.True(t, errors.Is(err, domain.ErrRegistrationNotFound))
	})

	t.Run("target held by another registration", func(t *testing.T) {
		er := newFakeEventRepo()
		rr := newFakeRegRepo()
		e := er.addEvent(hash, "09:00", "12:00", 30)
		moved := rr.addReg(e.ID, "Anna Smith", "1234567890", "09:30")
		rr.addReg(e.ID, "Bob Jones", "0987654321", "10:00")

		svc := NewRegistrationService(er, rr)
		_, err := svc.ReassignSlot(ctx, moved.ID, "10:00")
		require.Error(t, err)
		var conflict *domain.SlotConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, "0987654321", conflict.Phone)
		assert.Equal(t, "09:30", moved.SlotTime, "registration must stay put")
	})

	t.Run("reassigning to the held slot is a no-op", func(t *testing.T) {
		er := newFakeEventRepo()
		rr := newFakeRegRepo()
		e := er.addEvent(hash, "09:00", "12:00", 30)
		moved := rr.addReg(e.ID, "Anna Smith", "1234567890", "09:30")

		svc := NewRegistrationService(er, rr)
		got, err := svc.ReassignSlot(ctx, moved.ID, "09:30")
		require.NoError(t, err)
		assert.Equal(t, moved.ID, got.ID)
		assert.Equal(t, "09:30", got.SlotTime)
	})

	t.Run("success moves the registration", func(t *testing.T) {
		er := newFakeEventRepo()
		rr := newFakeRegRepo()
		e := er.addEvent(hash, "09:00", "12:00", 30)
		moved := rr.addReg(e.ID, "Anna Smith", "1234567890", "09:30")

		svc := NewRegistrationService(er, rr)
		got, err := svc.ReassignSlot(ctx, moved.ID, "11:00")
		require.NoError(t, err)
		assert.Equal(t, "11:00", got.SlotTime)
		require.Len(t, rr.regs, 1)
	})
}

func TestRegistrationService_DeleteRegistration(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		svc := NewRegistrationService(newFakeEventRepo(), newFakeRegRepo())
		err := svc.DeleteRegistration(ctx, "reg-missing")
		require.True(t, errors.Is(err, domain.ErrRegistrationNotFound))
	})

	t.Run("success frees the slot", func(t *testing.T) {
		er := newFakeEventRepo()
		rr := newFakeRegRepo()
		e := er.addEvent("abc123def456abcd", "09:00", "12:00", 30)
		reg := rr.addReg(e.ID, "Anna Smith", "1234567890", "09:30")

		svc := NewRegistrationService(er, rr)
		require.NoError(t, svc.DeleteRegistration(ctx, reg.ID))
		require.Empty(t, rr.regs)
	})
}
