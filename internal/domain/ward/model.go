package ward

import (
	"time"

	"github.com/google/uuid"
)

// Ward maps to the ward table. Discharged stock is handed over to a ward,
// which then keeps its own running balance per lot.
type Ward struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
