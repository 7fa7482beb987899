package stock

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medstock/medstock/internal/domain/item"
	"github.com/medstock/medstock/internal/domain/movtype"
	"github.com/medstock/medstock/internal/domain/ward"
)

// MovementRepository is the append-only ledger store.
type MovementRepository interface {
	// Create appends one ledger entry. The referenced lot must exist.
	Create(ctx context.Context, m *Movement) error
	GetByID(ctx context.Context, id uuid.UUID) (*Movement, error)
	// GetByRefNo returns the entries of one transaction, ordered by
	// (date, ref_no).
	GetByRefNo(ctx context.Context, refNo string) ([]*Movement, error)
	RefNoExists(ctx context.Context, refNo string) (bool, error)
	// LastDate returns the date of the most recent entry, or nil when the
	// ledger is empty.
	LastDate(ctx context.Context) (*time.Time, error)
	// Last returns the most recent entry, or nil when the ledger is empty.
	Last(ctx context.Context) (*Movement, error)
	Search(ctx context.Context, f Filter, limit, offset int) ([]*Movement, int, error)
	CountByLot(ctx context.Context, lotCode string) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LotRepository is the batch directory. Remaining quantities are recomputed
// from the ledger on every read rather than trusting a cached column.
type LotRepository interface {
	// Get returns nil without error when the code is unknown.
	Get(ctx context.Context, code string) (*Lot, error)
	Exists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, l *Lot) error
	Delete(ctx context.Context, code string) error
	// ListByItem returns the item's lots ordered by ascending due date.
	// With onlyAvailable set, lots with no remaining main-store quantity
	// are filtered out.
	ListByItem(ctx context.Context, itemCode string, onlyAvailable bool) ([]*Lot, error)
	// MainStoreQty is the signed net of all ledger entries for the lot.
	MainStoreQty(ctx context.Context, code string) (int, error)
	// WardsTotalQty is the stock of this lot currently held across wards.
	WardsTotalQty(ctx context.Context, code string) (int, error)
}

// WardHoldingRepository keeps the per (ward, item, lot) running balances.
type WardHoldingRepository interface {
	Get(ctx context.Context, wardCode, itemCode, lotCode string) (*WardHolding, error)
	// ApplyReceipt upserts the triple, adding qty to the received total.
	ApplyReceipt(ctx context.Context, wardCode, itemCode, lotCode string, qty int) error
	// ApplyIssue adds qty to the issued total. The caller must have checked
	// that the balance stays non-negative; the implementation refuses to
	// write a negative balance regardless.
	ApplyIssue(ctx context.Context, wardCode, itemCode, lotCode string, qty int) error
	// RollbackReceipt subtracts qty from the received total and deletes the
	// row once received equals issued.
	RollbackReceipt(ctx context.Context, wardCode, itemCode, lotCode string, qty int) error
	ListByWard(ctx context.Context, wardCode string) ([]*WardHolding, error)
}

// TxRunner executes fn inside one database transaction; every repository
// call made through the context fn receives joins it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Narrow views of the collaborating catalogs, satisfied by their services.

type ItemCatalog interface {
	GetByCode(ctx context.Context, code string) (*item.Item, error)
	GetByCodeForUpdate(ctx context.Context, code string) (*item.Item, error)
	IncrementReceived(ctx context.Context, code string, qty int) (*item.Item, error)
	IncrementIssued(ctx context.Context, code string, qty int) (*item.Item, error)
}

type WardDirectory interface {
	GetByCode(ctx context.Context, code string) (*ward.Ward, error)
}

type MovTypeCatalog interface {
	GetByCode(ctx context.Context, code string) (*movtype.MovementType, error)
}
