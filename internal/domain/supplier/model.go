package supplier

import (
	"time"

	"github.com/google/uuid"
)

// Supplier maps to the supplier table. Charge movements record the supplier
// the goods came from.
type Supplier struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
