package stock

import (
	"context"
	"fmt"
)

// Allocator picks the lot(s) that satisfy a discharge when the caller has
// not pinned one. Lots are consumed strictly in ascending due-date order,
// splitting the request across lots as needed.
type Allocator struct {
	lots LotRepository
}

func NewAllocator(lots LotRepository) *Allocator {
	return &Allocator{lots: lots}
}

// allocation is one slice of a discharge, consuming qty from one lot.
type allocation struct {
	Lot      *Lot
	Quantity int
}

// Allocate plans a discharge of qty from the item's lots. When the lots
// together cannot cover the request it fails with ErrInsufficientStock and
// plans nothing; partial fulfillment is never returned.
func (a *Allocator) Allocate(ctx context.Context, itemCode string, qty int) ([]allocation, error) {
	lots, err := a.lots.ListByItem(ctx, itemCode, true)
	if err != nil {
		return nil, err
	}

	remaining := qty
	var plan []allocation
	for _, l := range lots {
		if remaining == 0 {
			break
		}
		avail := l.MainStoreQty
		if avail <= 0 {
			continue
		}
		take := avail
		if remaining < take {
			take = remaining
		}
		plan = append(plan, allocation{Lot: l, Quantity: take})
		remaining -= take
	}
	if remaining > 0 {
		return nil, fmt.Errorf("allocate %d of item %s: %w", qty, itemCode, ErrInsufficientStock)
	}
	return plan, nil
}
