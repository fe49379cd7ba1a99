package series

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLookup is an in-memory BookingLookup that records how often it was
// queried, so short-circuit behavior can be asserted.
type fakeLookup struct {
	bookings []Booking
	calls    int
	err      error
}

func (f *fakeLookup) BookingsForUser(ctx context.Context, userID string, from, to time.Time) ([]Booking, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []Booking
	for _, b := range f.bookings {
		if b.UserID == userID && b.Start.Before(to) && b.End.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func ts(hh, mm int) time.Time {
	return time.Date(2024, 1, 1, hh, mm, 0, 0, time.UTC)
}

func TestFindCollision(t *testing.T) {
	existing := Booking{
		ID: "b1", UserID: "u1", Title: "checkup",
		Start: ts(9, 0), End: ts(10, 0),
	}

	tests := []struct {
		name       string
		bookings   []Booking
		start, end time.Time
		excludeID  string
		wantID     string
	}{
		{
			name:     "overlapping candidate collides",
			bookings: []Booking{existing},
			start:    ts(9, 30), end: ts(10, 30),
			wantID: "b1",
		},
		{
			name:     "touching boundary does not collide",
			bookings: []Booking{existing},
			start:    ts(10, 0), end: ts(11, 0),
			wantID: "",
		},
		{
			name:     "excluded booking never collides",
			bookings: []Booking{existing},
			start:    ts(9, 0), end: ts(10, 0),
			excludeID: "b1",
			wantID:    "",
		},
		{
			name: "deleted booking is ignored",
			bookings: []Booking{
				{ID: "b2", UserID: "u1", Start: ts(9, 0), End: ts(10, 0), Deleted: true},
			},
			start: ts(9, 0), end: ts(10, 0),
			wantID: "",
		},
		{
			name: "other user's booking is ignored",
			bookings: []Booking{
				{ID: "b3", UserID: "u2", Start: ts(9, 0), End: ts(10, 0)},
			},
			start: ts(9, 0), end: ts(10, 0),
			wantID: "",
		},
		{
			name: "earliest start wins over storage order",
			bookings: []Booking{
				{ID: "late", UserID: "u1", Start: ts(9, 30), End: ts(10, 30)},
				{ID: "early", UserID: "u1", Start: ts(9, 0), End: ts(10, 0)},
			},
			start: ts(9, 0), end: ts(11, 0),
			wantID: "early",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(&fakeLookup{bookings: tt.bookings})
			hit, err := resolver.FindCollision(context.Background(), "u1", tt.start, tt.end, tt.excludeID, "")
			require.NoError(t, err)
			if tt.wantID == "" {
				assert.Nil(t, hit)
			} else {
				require.NotNil(t, hit)
				assert.Equal(t, tt.wantID, hit.ID)
			}
		})
	}
}

func TestFindCollisionExcludesSeries(t *testing.T) {
	lookup := &fakeLookup{bookings: []Booking{
		{ID: "b1", UserID: "u1", SeriesID: "s1", Start: ts(9, 0), End: ts(10, 0)},
	}}
	resolver := NewResolver(lookup)

	hit, err := resolver.FindCollision(context.Background(), "u1", ts(9, 0), ts(10, 0), "", "s1")
	require.NoError(t, err)
	assert.Nil(t, hit)

	hit, err = resolver.FindCollision(context.Background(), "u1", ts(9, 0), ts(10, 0), "", "other")
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, "b1", hit.ID)
}

func TestFindCollisionLookupFailure(t *testing.T) {
	resolver := NewResolver(&fakeLookup{err: errors.New("connection reset")})

	hit, err := resolver.FindCollision(context.Background(), "u1", ts(9, 0), ts(10, 0), "", "")
	assert.Nil(t, hit)
	// A failed lookup must never read as "no collision".
	assert.ErrorIs(t, err, ErrLookupFailed)
}

func TestFindFirstCollisionShortCircuits(t *testing.T) {
	// Five weekly occurrences; only the third one is taken.
	starts := []time.Time{
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 22, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 29, 9, 0, 0, 0, time.UTC),
	}
	lookup := &fakeLookup{bookings: []Booking{
		{
			ID: "taken", UserID: "u1", Title: "vacation",
			Start: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
	}}
	resolver := NewResolver(lookup)

	conflict, err := resolver.FindFirstCollision(context.Background(), "u1", starts, time.Hour, "", "")
	require.NoError(t, err)
	require.NotNil(t, conflict)

	assert.Equal(t, 3, conflict.Seq)
	assert.Equal(t, starts[2], conflict.Occurrence)
	assert.Equal(t, "taken", conflict.Existing.ID)
	// Occurrences 4 and 5 must not be looked up.
	assert.Equal(t, 3, lookup.calls)
}

func TestFindFirstCollisionClean(t *testing.T) {
	starts := []time.Time{ts(9, 0), ts(11, 0), ts(13, 0)}
	lookup := &fakeLookup{}
	resolver := NewResolver(lookup)

	conflict, err := resolver.FindFirstCollision(context.Background(), "u1", starts, time.Hour, "", "")
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.Equal(t, 3, lookup.calls)
}
