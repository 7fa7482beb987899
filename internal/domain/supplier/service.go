package supplier

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medstock/medstock/internal/platform/db"
)

var ErrNotFound = errors.New("supplier not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, sp *Supplier) error {
	if sp.Code == "" {
		return fmt.Errorf("code is required")
	}
	if sp.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Create(ctx, sp)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.ErrNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sp, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Supplier, error) {
	sp, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if db.ErrNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sp, nil
}

func (s *Service) Update(ctx context.Context, sp *Supplier) error {
	if sp.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Update(ctx, sp)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Supplier, int, error) {
	return s.repo.List(ctx, limit, offset)
}
