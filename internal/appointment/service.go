package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/appventus/appointment-backend/internal/series"
)

type CreateRequest struct {
	UserID      string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	StatusID    string

	// Force saves past a reported collision. Callers set it on a second
	// attempt after the user confirmed the warning.
	Force bool
}

type UpdateRequest struct {
	Title       *string
	Description *string
	StartTime   *time.Time
	EndTime     *time.Time
	StatusID    *string
	Force       bool
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	List(ctx context.Context, filter Filter) ([]*Appointment, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, updaterUserID string, isAdmin bool) (*Appointment, error)
	Delete(ctx context.Context, id string, deleterUserID string, isAdmin bool) error
}

type service struct {
	repo     Repository
	resolver *series.Resolver
}

func NewService(repo Repository, resolver *series.Resolver) Service {
	return &service{
		repo:     repo,
		resolver: resolver,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Appointment, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidTimeRange
	}

	// Collision check against the user's existing, non-deleted
	// appointments. A hit is surfaced for the caller to confirm, not
	// silently overridden.
	if !req.Force {
		hit, err := s.resolver.FindCollision(ctx, req.UserID, req.StartTime, req.EndTime, "", "")
		if err != nil {
			return nil, err
		}
		if hit != nil {
			return nil, &series.ConflictError{Seq: 1, Occurrence: req.StartTime, Existing: *hit}
		}
	}

	a := &Appointment{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		StatusID:    nullable(req.StatusID),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Appointment, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, updaterUserID string, isAdmin bool) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isAdmin && a.UserID != updaterUserID {
		return nil, ErrPermissionDenied
	}

	newStart := a.StartTime
	newEnd := a.EndTime
	timeChanged := false

	if req.StartTime != nil {
		newStart = *req.StartTime
		timeChanged = true
	}
	if req.EndTime != nil {
		newEnd = *req.EndTime
		timeChanged = true
	}

	if timeChanged {
		if !newEnd.After(newStart) {
			return nil, ErrInvalidTimeRange
		}

		// Re-check the new slot, excluding the appointment itself so it
		// never collides with its own old interval.
		if !req.Force {
			hit, err := s.resolver.FindCollision(ctx, a.UserID, newStart, newEnd, a.ID, "")
			if err != nil {
				return nil, err
			}
			if hit != nil {
				return nil, &series.ConflictError{Seq: 1, Occurrence: newStart, Existing: *hit}
			}
		}
		a.StartTime = newStart
		a.EndTime = newEnd
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrTitleRequired
		}
		a.Title = *req.Title
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.StatusID != nil {
		a.StatusID = nullable(*req.StatusID)
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *service) Delete(ctx context.Context, id string, deleterUserID string, isAdmin bool) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !isAdmin && a.UserID != deleterUserID {
		return ErrPermissionDenied
	}

	return s.repo.SoftDelete(ctx, id)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
