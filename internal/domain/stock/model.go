// Package stock implements the medical-stock ledger: an append-only table of
// signed movements kept reconciled against the per-item running totals, the
// per-lot remaining quantities and the per-ward holdings derived from it.
package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement is one ledger entry. The quantity is always recorded positive;
// the sign comes from the movement type. Rows are immutable except for the
// reversal path, which removes the most recent one.
type Movement struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ItemCode     string    `db:"item_code" json:"item_code"`
	LotCode      string    `db:"lot_code" json:"lot_code"`
	MovTypeCode  string    `db:"mov_type_code" json:"mov_type_code"`
	WardCode     *string   `db:"ward_code" json:"ward_code,omitempty"`
	SupplierCode *string   `db:"supplier_code" json:"supplier_code,omitempty"`
	Date         time.Time `db:"date" json:"date"`
	Quantity     int       `db:"quantity" json:"quantity"`
	RefNo        string    `db:"ref_no" json:"ref_no"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Lot is a traceable quantity of one item received at one time. The two
// quantity fields are derived from the ledger on read, never stored
// authoritatively.
type Lot struct {
	Code            string           `db:"code" json:"code"`
	ItemCode        string           `db:"item_code" json:"item_code"`
	PreparationDate time.Time        `db:"preparation_date" json:"preparation_date"`
	DueDate         time.Time        `db:"due_date" json:"due_date"`
	Cost            *decimal.Decimal `db:"cost" json:"cost,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`

	MainStoreQty  int `db:"-" json:"main_store_qty"`
	WardsTotalQty int `db:"-" json:"wards_total_qty"`
}

// WardHolding is the running balance of one lot's stock inside one ward.
// InQty counts receipts from the main store, OutQty counts ward consumption.
type WardHolding struct {
	ID       uuid.UUID `db:"id" json:"id"`
	WardCode string    `db:"ward_code" json:"ward_code"`
	ItemCode string    `db:"item_code" json:"item_code"`
	LotCode  string    `db:"lot_code" json:"lot_code"`
	InQty    int       `db:"in_qty" json:"in_qty"`
	OutQty   int       `db:"out_qty" json:"out_qty"`
}

// CurrentQty is the stock currently held by the ward for this lot.
func (w *WardHolding) CurrentQty() int { return w.InQty - w.OutQty }

// Options are the configuration flags consulted by the validation pipeline
// and the allocation engine. They are passed in explicitly rather than read
// from shared mutable state.
type Options struct {
	// AutomaticLotIn lets a charge omit the lot code; the engine generates one.
	AutomaticLotIn bool
	// AutomaticLotOut lets a discharge omit the lot; the engine consumes lots
	// in ascending expiry order, splitting across lots as needed.
	AutomaticLotOut bool
	// LotWithCost makes a unit cost mandatory on charged lots.
	LotWithCost bool
}

// LotInput describes the lot a movement refers to. On charges it may describe
// a lot that does not exist yet.
type LotInput struct {
	Code            string           `json:"code"`
	PreparationDate time.Time        `json:"preparation_date"`
	DueDate         time.Time        `json:"due_date"`
	Cost            *decimal.Decimal `json:"cost,omitempty"`
}

// MovementRequest is the caller's input for one movement line.
type MovementRequest struct {
	ItemCode     string    `json:"item_code"`
	MovTypeCode  string    `json:"mov_type_code"`
	WardCode     *string   `json:"ward_code,omitempty"`
	SupplierCode *string   `json:"supplier_code,omitempty"`
	Date         time.Time `json:"date"`
	Quantity     int       `json:"quantity"`
	RefNo        string    `json:"ref_no"`
	Lot          LotInput  `json:"lot"`
}

// Order selects the listing order for movement queries.
type Order string

const (
	OrderByDate     Order = "date" // date desc, ref_no desc; the default
	OrderByWard     Order = "ward"
	OrderByItemType Order = "item_type"
	OrderByMovType  Order = "mov_type"
)

// Filter restricts movement queries. Zero-valued fields are ignored.
type Filter struct {
	ItemCode    string
	ItemType    string
	WardCode    string
	MovTypeCode string
	LotCode     string
	DateFrom    *time.Time
	DateTo      *time.Time
	LotPrepFrom *time.Time
	LotPrepTo   *time.Time
	LotDueFrom  *time.Time
	LotDueTo    *time.Time
	OrderBy     Order
}
