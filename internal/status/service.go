package status

import (
	"context"
	"strings"
)

type CreateRequest struct {
	Name      string
	Color     string
	SortOrder int
}

type UpdateRequest struct {
	Name      *string
	Color     *string
	SortOrder *int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Status, error)
	GetByID(ctx context.Context, id string) (*Status, error)
	List(ctx context.Context, filter Filter) ([]*Status, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Status, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Status, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}

	st := &Status{
		Name:      req.Name,
		Color:     req.Color,
		SortOrder: req.SortOrder,
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Status, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Status, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Status, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		st.Name = *req.Name
	}
	if req.Color != nil {
		st.Color = *req.Color
	}
	if req.SortOrder != nil {
		st.SortOrder = *req.SortOrder
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	// Check existence
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
