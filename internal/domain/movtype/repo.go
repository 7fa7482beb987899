package movtype

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *MovementType) error
	GetByID(ctx context.Context, id uuid.UUID) (*MovementType, error)
	GetByCode(ctx context.Context, code string) (*MovementType, error)
	Update(ctx context.Context, t *MovementType) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*MovementType, int, error)
}
