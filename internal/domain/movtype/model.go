package movtype

import (
	"time"

	"github.com/google/uuid"
)

// Signs a movement type can carry. A charge adds stock to the main store,
// a discharge removes it.
const (
	SignCharge    = "+"
	SignDischarge = "-"
)

// MovementType maps to the movement_type table. The sign decides whether
// movements of this type add to or subtract from stock.
type MovementType struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	Sign        string    `db:"sign" json:"sign"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// IsCharge reports whether movements of this type add stock.
func (t *MovementType) IsCharge() bool { return t.Sign == SignCharge }

// IsDischarge reports whether movements of this type remove stock.
func (t *MovementType) IsDischarge() bool { return t.Sign == SignDischarge }
