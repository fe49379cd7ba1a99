package series

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/appventus/appointment-backend/internal/recurrence"
)

// MaterializeInput is everything needed to expand a rule into a series
// plan. MaxOccurrences must be supplied explicitly; it is the only guard
// against unbounded EndNever rules and is never defaulted here.
type MaterializeInput struct {
	UserID          string
	Title           string
	Rule            recurrence.Rule
	Start           time.Time
	DurationMinutes int
	MaxOccurrences  int

	// ExcludeID skips one existing booking during collision checks,
	// used when converting an existing appointment into a series.
	ExcludeID string

	// ReplaceSeriesID marks this plan as a replacement for an existing
	// series (soft-delete old instances, then create new ones).
	ReplaceSeriesID string

	// Force skips the collision check. Callers set it on a second
	// attempt after the user confirmed saving past a reported conflict.
	Force bool
}

// Materializer turns an approved rule into a persistence plan. It issues
// no writes itself; the resolver dependency is its only I/O (reads).
type Materializer struct {
	resolver *Resolver
}

func NewMaterializer(resolver *Resolver) *Materializer {
	return &Materializer{resolver: resolver}
}

// Materialize validates the rule, expands its occurrences, checks them
// for collisions and returns the resulting plan.
//
// Error taxonomy, all distinguishable with errors.Is / errors.As:
//   - ErrInvalidRule (wrapped with the concrete validation failure)
//   - ErrNoOccurrences
//   - *ConflictError when a slot is already taken and Force is unset
//   - ErrLookupFailed when storage could not be consulted
func (m *Materializer) Materialize(ctx context.Context, in MaterializeInput) (*Plan, error) {
	if in.DurationMinutes < 1 {
		return nil, fmt.Errorf("%w: duration must be at least one minute", ErrInvalidRule)
	}
	if err := in.Rule.Validate(in.Start); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}

	occurrences := recurrence.Generate(in.Start, in.Rule, in.MaxOccurrences)
	if len(occurrences) == 0 {
		return nil, ErrNoOccurrences
	}

	duration := time.Duration(in.DurationMinutes) * time.Minute

	if !in.Force {
		conflict, err := m.resolver.FindFirstCollision(ctx, in.UserID, occurrences, duration, in.ExcludeID, in.ReplaceSeriesID)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, conflict
		}
	}

	seriesID := uuid.New().String()
	plan := &Plan{
		Occurrences: occurrences,
		Series: Series{
			ID:              seriesID,
			UserID:          in.UserID,
			Rule:            in.Rule,
			FirstOccurrence: occurrences[0],
			DurationMinutes: in.DurationMinutes,
			InstanceCount:   len(occurrences),
		},
		Instances:       make([]InstanceRequest, len(occurrences)),
		ReplaceSeriesID: in.ReplaceSeriesID,
	}

	for i, start := range occurrences {
		plan.Instances[i] = InstanceRequest{
			SeriesID: seriesID,
			Seq:      i + 1,
			UserID:   in.UserID,
			Title:    in.Title,
			Start:    start,
			End:      start.Add(duration),
		}
	}

	return plan, nil
}
