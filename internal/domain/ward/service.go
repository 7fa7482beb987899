package ward

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medstock/medstock/internal/platform/db"
)

var ErrNotFound = errors.New("ward not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, w *Ward) error {
	if w.Code == "" {
		return fmt.Errorf("code is required")
	}
	if w.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Create(ctx, w)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Ward, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.ErrNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

// GetByCode resolves a ward for the stock orchestrator.
func (s *Service) GetByCode(ctx context.Context, code string) (*Ward, error) {
	w, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if db.ErrNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

func (s *Service) Update(ctx context.Context, w *Ward) error {
	if w.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Update(ctx, w)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Ward, int, error) {
	return s.repo.List(ctx, limit, offset)
}
