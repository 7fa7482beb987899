package item

import (
	"time"

	"github.com/google/uuid"
)

// Item maps to the medical_item table: one stock-keeping pharmaceutical
// product. InitialQty, InQty and OutQty are running totals reconciled
// against the movement ledger; only the stock orchestrator may change the
// latter two, through IncrementReceived / IncrementIssued.
type Item struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	Type        string    `db:"type" json:"type"`
	MinQty      int       `db:"min_qty" json:"min_qty"`
	PcsPerPkt   int       `db:"pcs_per_pkt" json:"pcs_per_pkt"`
	InitialQty  int       `db:"initial_qty" json:"initial_qty"`
	InQty       int       `db:"in_qty" json:"in_qty"`
	OutQty      int       `db:"out_qty" json:"out_qty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// TotalQty is the current stock on hand: initial + received - issued.
func (i *Item) TotalQty() int {
	return i.InitialQty + i.InQty - i.OutQty
}

// BelowMinimum reports whether stock on hand has fallen under the reorder
// threshold.
func (i *Item) BelowMinimum() bool {
	return i.TotalQty() < i.MinQty
}
