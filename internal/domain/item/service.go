package item

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/medstock/medstock/internal/platform/db"
)

var ErrNotFound = errors.New("item not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, i *Item) error {
	if i.Code == "" {
		return fmt.Errorf("code is required")
	}
	if i.Description == "" {
		return fmt.Errorf("description is required")
	}
	if i.MinQty < 0 || i.InitialQty < 0 {
		return fmt.Errorf("quantities must not be negative")
	}
	if i.PcsPerPkt <= 0 {
		i.PcsPerPkt = 1
	}
	// Running totals start at zero; the ledger is the only writer afterwards.
	i.InQty = 0
	i.OutQty = 0
	return s.repo.Create(ctx, i)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	i, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if db.ErrNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Item, error) {
	i, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if db.ErrNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

// GetByCodeForUpdate reads the item under a row lock. The stock orchestrator
// uses it so that quantity checks and the subsequent aggregate update happen
// against the same, stable row.
func (s *Service) GetByCodeForUpdate(ctx context.Context, code string) (*Item, error) {
	i, err := s.repo.GetByCodeForUpdate(ctx, code)
	if err != nil {
		if db.ErrNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

func (s *Service) Update(ctx context.Context, i *Item) error {
	if i.Description == "" {
		return fmt.Errorf("description is required")
	}
	return s.repo.Update(ctx, i)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Item, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

// IncrementReceived adds qty to the item's received total. It is one of the
// two sanctioned writers of the running totals; everything else must leave
// them alone so they stay reconciled with the ledger.
func (s *Service) IncrementReceived(ctx context.Context, code string, qty int) (*Item, error) {
	i, err := s.repo.AddReceived(ctx, code, qty)
	if err != nil {
		if db.ErrNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

// IncrementIssued adds qty to the item's issued total.
func (s *Service) IncrementIssued(ctx context.Context, code string, qty int) (*Item, error) {
	i, err := s.repo.AddIssued(ctx, code, qty)
	if err != nil {
		if db.ErrNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return i, nil
}
