package item

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, i *Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*Item, error)
	GetByCode(ctx context.Context, code string) (*Item, error)
	// GetByCodeForUpdate reads the item under a row lock so that aggregate
	// updates inside a transaction cannot race concurrent movements.
	GetByCodeForUpdate(ctx context.Context, code string) (*Item, error)
	Update(ctx context.Context, i *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	// AddReceived / AddIssued apply a delta to the running totals and
	// return the updated row. qty may be negative (movement reversal).
	AddReceived(ctx context.Context, code string, qty int) (*Item, error)
	AddIssued(ctx context.Context, code string, qty int) (*Item, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Item, int, error)
}
