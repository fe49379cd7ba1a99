package appointment

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appventus/appointment-backend/internal/series"
)

// fakeRepo keeps appointments in memory and doubles as the collision
// lookup, mirroring how the pgx repository and lookup share one table.
type fakeRepo struct {
	items map[string]*Appointment
	next  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string]*Appointment{}}
}

func (f *fakeRepo) Create(ctx context.Context, a *Appointment) error {
	f.next++
	a.ID = "appt-" + strconv.Itoa(f.next)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	copied := *a
	f.items[a.ID] = &copied
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Appointment, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeRepo) List(ctx context.Context, filter Filter) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range f.items {
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if !filter.IncludeDeleted && a.Deleted {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(ctx context.Context, a *Appointment) error {
	if _, ok := f.items[a.ID]; !ok {
		return ErrNotFound
	}
	copied := *a
	f.items[a.ID] = &copied
	return nil
}

func (f *fakeRepo) SoftDelete(ctx context.Context, id string) error {
	a, ok := f.items[id]
	if !ok || a.Deleted {
		return ErrNotFound
	}
	a.Deleted = true
	return nil
}

func (f *fakeRepo) BookingsForUser(ctx context.Context, userID string, from, to time.Time) ([]series.Booking, error) {
	var out []series.Booking
	for _, a := range f.items {
		if a.UserID != userID {
			continue
		}
		if !a.StartTime.Before(to) || !a.EndTime.After(from) {
			continue
		}
		out = append(out, series.Booking{
			ID:      a.ID,
			UserID:  a.UserID,
			Title:   a.Title,
			Start:   a.StartTime,
			End:     a.EndTime,
			Deleted: a.Deleted,
		})
	}
	return out, nil
}

func newTestService() (Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, series.NewResolver(repo)), repo
}

func hour(hh int) time.Time {
	return time.Date(2024, 1, 1, hh, 0, 0, 0, time.UTC)
}

func TestCreateAppointment(t *testing.T) {
	svc, _ := newTestService()

	a, err := svc.Create(context.Background(), CreateRequest{
		UserID: "u1", Title: "consultation",
		StartTime: hour(9), EndTime: hour(10),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "u1", a.UserID)
}

func TestCreateAppointmentValidation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateRequest{
		UserID: "u1", Title: " ",
		StartTime: hour(9), EndTime: hour(10),
	})
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.Create(context.Background(), CreateRequest{
		UserID: "u1", Title: "x",
		StartTime: hour(10), EndTime: hour(10),
	})
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestCreateAppointmentCollision(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{
		UserID: "u1", Title: "first",
		StartTime: hour(9), EndTime: hour(10),
	})
	require.NoError(t, err)

	// Overlapping slot for the same user is rejected with the conflict.
	_, err = svc.Create(ctx, CreateRequest{
		UserID: "u1", Title: "second",
		StartTime: hour(9).Add(30 * time.Minute), EndTime: hour(10).Add(30 * time.Minute),
	})
	var conflict *series.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "first", conflict.Existing.Title)

	// Back-to-back is fine: half-open intervals.
	_, err = svc.Create(ctx, CreateRequest{
		UserID: "u1", Title: "adjacent",
		StartTime: hour(10), EndTime: hour(11),
	})
	assert.NoError(t, err)

	// A different user may book the same slot.
	_, err = svc.Create(ctx, CreateRequest{
		UserID: "u2", Title: "other user",
		StartTime: hour(9), EndTime: hour(10),
	})
	assert.NoError(t, err)

	// Force overrides the collision after confirmation.
	_, err = svc.Create(ctx, CreateRequest{
		UserID: "u1", Title: "forced",
		StartTime: hour(9), EndTime: hour(10),
		Force: true,
	})
	assert.NoError(t, err)
}

func TestUpdateAppointmentExcludesSelf(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateRequest{
		UserID: "u1", Title: "movable",
		StartTime: hour(9), EndTime: hour(10),
	})
	require.NoError(t, err)

	// Shifting within its own old slot must not self-collide.
	newStart := hour(9).Add(15 * time.Minute)
	newEnd := hour(10).Add(15 * time.Minute)
	updated, err := svc.Update(ctx, a.ID, UpdateRequest{
		StartTime: &newStart, EndTime: &newEnd,
	}, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, newStart, updated.StartTime)
}

func TestUpdateAppointmentPermissions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateRequest{
		UserID: "u1", Title: "private",
		StartTime: hour(9), EndTime: hour(10),
	})
	require.NoError(t, err)

	title := "hijacked"
	_, err = svc.Update(ctx, a.ID, UpdateRequest{Title: &title}, "u2", false)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Admins may edit anyone's appointment.
	_, err = svc.Update(ctx, a.ID, UpdateRequest{Title: &title}, "u2", true)
	assert.NoError(t, err)
}

func TestDeleteAppointmentIsSoft(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateRequest{
		UserID: "u1", Title: "gone",
		StartTime: hour(9), EndTime: hour(10),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, a.ID, "u1", false))

	stored, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, stored.Deleted)

	// The slot frees up once the appointment is soft-deleted.
	_, err = svc.Create(ctx, CreateRequest{
		UserID: "u1", Title: "replacement",
		StartTime: hour(9), EndTime: hour(10),
	})
	assert.NoError(t, err)
}
