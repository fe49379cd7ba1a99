package series

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appventus/appointment-backend/internal/recurrence"
)

// CreateInput carries everything a caller supplies to create or replace
// a recurring series.
type CreateInput struct {
	UserID          string
	Title           string
	Rule            recurrence.Rule
	Start           time.Time
	DurationMinutes int
	StatusID        string
	Force           bool
}

// PreviewResult is the dry-run output: the expanded occurrences and, if
// the slots are not free, the first conflict. No writes are performed.
type PreviewResult struct {
	Occurrences []time.Time
	Conflict    *ConflictError
}

type Service interface {
	// Preview expands the rule and reports the first collision without
	// persisting anything.
	Preview(ctx context.Context, in CreateInput) (*PreviewResult, error)

	// Create materializes and persists a new series.
	Create(ctx context.Context, in CreateInput) (*Series, error)

	// Replace soft-deletes the instances of an existing series and
	// persists a freshly materialized one in its place.
	Replace(ctx context.Context, seriesID string, in CreateInput) (*Series, error)

	GetByID(ctx context.Context, id string) (*Series, error)
	ListForUser(ctx context.Context, userID string) ([]*Series, error)

	// Delete soft-deletes all instances of the series and removes the
	// series record.
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo         Repository
	materializer *Materializer

	// maxOccurrences caps every expansion; EndNever rules stop exactly
	// here. Always passed explicitly into the materializer.
	maxOccurrences int
}

func NewService(repo Repository, materializer *Materializer, maxOccurrences int) Service {
	return &service{
		repo:           repo,
		materializer:   materializer,
		maxOccurrences: maxOccurrences,
	}
}

func (s *service) Preview(ctx context.Context, in CreateInput) (*PreviewResult, error) {
	plan, err := s.materializer.Materialize(ctx, s.materializeInput(in, ""))
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			// A conflict is a decision point for the caller, not a
			// failure of the preview itself. Re-expand without the
			// check to still show the full occurrence list.
			occurrences := recurrence.Generate(in.Start, in.Rule, s.maxOccurrences)
			return &PreviewResult{Occurrences: occurrences, Conflict: conflict}, nil
		}
		return nil, err
	}
	return &PreviewResult{Occurrences: plan.Occurrences}, nil
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Series, error) {
	plan, err := s.materializer.Materialize(ctx, s.materializeInput(in, ""))
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, plan, in.StatusID)
}

func (s *service) Replace(ctx context.Context, seriesID string, in CreateInput) (*Series, error) {
	old, err := s.repo.GetByID(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if old.UserID != in.UserID {
		in.UserID = old.UserID
	}

	plan, err := s.materializer.Materialize(ctx, s.materializeInput(in, seriesID))
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, plan, in.StatusID)
}

func (s *service) GetByID(ctx context.Context, id string) (*Series, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListForUser(ctx context.Context, userID string) ([]*Series, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if _, err := s.repo.SoftDeleteInstances(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) materializeInput(in CreateInput, replaceSeriesID string) MaterializeInput {
	return MaterializeInput{
		UserID:          in.UserID,
		Title:           in.Title,
		Rule:            in.Rule,
		Start:           in.Start,
		DurationMinutes: in.DurationMinutes,
		MaxOccurrences:  s.maxOccurrences,
		ReplaceSeriesID: replaceSeriesID,
		Force:           in.Force,
	}
}

// execute runs a plan: soft-delete replaced instances first, then write
// the series record and its appointments.
func (s *service) execute(ctx context.Context, plan *Plan, statusID string) (*Series, error) {
	if plan.ReplaceSeriesID != "" {
		if _, err := s.repo.SoftDeleteInstances(ctx, plan.ReplaceSeriesID); err != nil {
			return nil, fmt.Errorf("replace series: %w", err)
		}
		if err := s.repo.Delete(ctx, plan.ReplaceSeriesID); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("replace series: %w", err)
		}
	}

	created := plan.Series
	if err := s.repo.Create(ctx, &created); err != nil {
		return nil, err
	}
	if err := s.repo.CreateInstances(ctx, plan.Instances, statusID); err != nil {
		return nil, err
	}
	return &created, nil
}
