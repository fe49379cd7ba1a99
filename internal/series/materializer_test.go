package series

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appventus/appointment-backend/internal/recurrence"
)

func weeklyInput(start time.Time, count int) MaterializeInput {
	return MaterializeInput{
		UserID: "u1",
		Title:  "physio",
		Rule: recurrence.Rule{
			Enabled: true, Interval: 1, Unit: recurrence.UnitWeek,
			EndMode: recurrence.EndAfterCount, EndAfterCount: count,
		},
		Start:           start,
		DurationMinutes: 60,
		MaxOccurrences:  200,
	}
}

func TestMaterialize(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	m := NewMaterializer(NewResolver(&fakeLookup{}))

	plan, err := m.Materialize(context.Background(), weeklyInput(start, 3))
	require.NoError(t, err)
	require.Len(t, plan.Occurrences, 3)
	require.Len(t, plan.Instances, 3)

	assert.Equal(t, start, plan.Series.FirstOccurrence)
	assert.Equal(t, 3, plan.Series.InstanceCount)
	assert.Equal(t, 60, plan.Series.DurationMinutes)
	assert.NotEmpty(t, plan.Series.ID)
	assert.Empty(t, plan.ReplaceSeriesID)

	for i, inst := range plan.Instances {
		assert.Equal(t, plan.Series.ID, inst.SeriesID)
		assert.Equal(t, i+1, inst.Seq)
		assert.Equal(t, "u1", inst.UserID)
		assert.Equal(t, plan.Occurrences[i], inst.Start)
		assert.Equal(t, plan.Occurrences[i].Add(time.Hour), inst.End)
	}
}

func TestMaterializeInvalidRule(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	lookup := &fakeLookup{}
	m := NewMaterializer(NewResolver(lookup))

	in := weeklyInput(start, 3)
	in.Rule.Interval = 0

	plan, err := m.Materialize(context.Background(), in)
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, ErrInvalidRule)
	// Rejected before any generation or lookup work.
	assert.Zero(t, lookup.calls)

	in = weeklyInput(start, 3)
	in.DurationMinutes = 0
	_, err = m.Materialize(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestMaterializeNoOccurrences(t *testing.T) {
	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	m := NewMaterializer(NewResolver(&fakeLookup{}))

	in := weeklyInput(start, 0)
	in.Rule.EndMode = recurrence.EndOnDate
	in.Rule.EndOnDate = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	// Weekly rule snapping to Thursday jumps past the end date.
	in.Rule.Weekdays = []time.Weekday{time.Thursday}

	plan, err := m.Materialize(context.Background(), in)
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, ErrNoOccurrences)
}

func TestMaterializeSurfacesConflict(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	lookup := &fakeLookup{bookings: []Booking{
		{
			ID: "b1", UserID: "u1", Title: "dentist",
			Start: time.Date(2024, 1, 8, 9, 30, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 8, 10, 30, 0, 0, time.UTC),
		},
	}}
	m := NewMaterializer(NewResolver(lookup))

	plan, err := m.Materialize(context.Background(), weeklyInput(start, 3))
	assert.Nil(t, plan)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 2, conflict.Seq)
	assert.Equal(t, "b1", conflict.Existing.ID)
}

func TestMaterializeForceSkipsCollisionCheck(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	lookup := &fakeLookup{bookings: []Booking{
		{
			ID: "b1", UserID: "u1",
			Start: start, End: start.Add(time.Hour),
		},
	}}
	m := NewMaterializer(NewResolver(lookup))

	in := weeklyInput(start, 2)
	in.Force = true

	plan, err := m.Materialize(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, plan.Instances, 2)
	assert.Zero(t, lookup.calls)
}

func TestMaterializeReplacementIgnoresOwnSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	// The old instances of the series being replaced still exist in
	// storage; they must not block the replacement plan.
	lookup := &fakeLookup{bookings: []Booking{
		{ID: "old1", UserID: "u1", SeriesID: "s1", Start: start, End: start.Add(time.Hour)},
	}}
	m := NewMaterializer(NewResolver(lookup))

	in := weeklyInput(start, 2)
	in.ReplaceSeriesID = "s1"

	plan, err := m.Materialize(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "s1", plan.ReplaceSeriesID)
	assert.Len(t, plan.Instances, 2)
}

func TestMaterializeLookupFailure(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	m := NewMaterializer(NewResolver(&fakeLookup{err: errors.New("timeout")}))

	plan, err := m.Materialize(context.Background(), weeklyInput(start, 3))
	assert.Nil(t, plan)
	assert.ErrorIs(t, err, ErrLookupFailed)
}
