package movtype

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medstock/medstock/internal/platform/db"
)

var ErrNotFound = errors.New("movement type not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, t *MovementType) error {
	if t.Code == "" {
		return fmt.Errorf("code is required")
	}
	if t.Sign != SignCharge && t.Sign != SignDischarge {
		return fmt.Errorf("sign must be %q or %q", SignCharge, SignDischarge)
	}
	return s.repo.Create(ctx, t)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MovementType, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.ErrNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// GetByCode resolves a movement type for the stock orchestrator.
func (s *Service) GetByCode(ctx context.Context, code string) (*MovementType, error) {
	t, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if db.ErrNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, t *MovementType) error {
	if t.Sign != SignCharge && t.Sign != SignDischarge {
		return fmt.Errorf("sign must be %q or %q", SignCharge, SignDischarge)
	}
	return s.repo.Update(ctx, t)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*MovementType, int, error) {
	return s.repo.List(ctx, limit, offset)
}
