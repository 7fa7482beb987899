package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medstock/medstock/internal/domain/item"
	"github.com/medstock/medstock/internal/domain/movtype"
	"github.com/medstock/medstock/internal/domain/ward"
)

// Lot codes share the column width of the legacy paper registers.
const maxLotCodeLen = 50

// Validator runs the business-rule gate ahead of every movement. It collects
// every failure instead of stopping at the first one, so the caller can
// report all problems together.
type Validator struct {
	movements MovementRepository
	lots      LotRepository
	items     ItemCatalog
	wards     WardDirectory
	movTypes  MovTypeCatalog
	opts      Options
}

func NewValidator(movements MovementRepository, lots LotRepository, items ItemCatalog, wards WardDirectory, movTypes MovTypeCatalog, opts Options) *Validator {
	return &Validator{
		movements: movements,
		lots:      lots,
		items:     items,
		wards:     wards,
		movTypes:  movTypes,
		opts:      opts,
	}
}

// resolved carries the rows looked up while validating, so the orchestrator
// does not repeat the reads inside the same transaction.
type resolved struct {
	movType *movtype.MovementType
	item    *item.Item
	lot     *Lot
}

// Validate checks req against every business rule. It returns the resolved
// collaborator rows on success and a ValidationError listing every failure
// otherwise. Non-validation errors (storage failures) are returned as is.
func (v *Validator) Validate(ctx context.Context, req *MovementRequest, requireRefNo bool) (*resolved, error) {
	var msgs []string
	res := &resolved{}

	if req.Date.After(time.Now()) {
		msgs = append(msgs, "movement date is in the future")
	}
	lastDate, err := v.movements.LastDate(ctx)
	if err != nil {
		return nil, err
	}
	if lastDate != nil && req.Date.Before(*lastDate) {
		msgs = append(msgs, "movement date is earlier than the last recorded movement")
	}

	if requireRefNo {
		refNo := strings.TrimSpace(req.RefNo)
		if refNo == "" {
			msgs = append(msgs, "a reference number is required")
		} else {
			inUse, err := v.movements.RefNoExists(ctx, refNo)
			if err != nil {
				return nil, err
			}
			if inUse {
				msgs = append(msgs, fmt.Sprintf("reference number %q is already in use", refNo))
			}
		}
	}

	if req.MovTypeCode == "" {
		msgs = append(msgs, "a movement type is required")
	} else {
		mt, err := v.movTypes.GetByCode(ctx, req.MovTypeCode)
		switch {
		case errors.Is(err, movtype.ErrNotFound):
			msgs = append(msgs, fmt.Sprintf("movement type %q not found", req.MovTypeCode))
		case err != nil:
			return nil, err
		default:
			res.movType = mt
		}
	}

	if mt := res.movType; mt != nil {
		if mt.IsCharge() && deref(req.SupplierCode) == "" {
			msgs = append(msgs, "a supplier is required for charging movements")
		}
		if mt.IsDischarge() {
			if deref(req.WardCode) == "" {
				msgs = append(msgs, "a ward is required for discharging movements")
			} else if _, err := v.wards.GetByCode(ctx, *req.WardCode); err != nil {
				if !errors.Is(err, ward.ErrNotFound) {
					return nil, err
				}
				msgs = append(msgs, fmt.Sprintf("ward %q not found", *req.WardCode))
			}
		}
	}

	if req.Quantity <= 0 {
		msgs = append(msgs, "quantity must be positive")
	}

	if req.ItemCode == "" {
		msgs = append(msgs, "an item is required")
	} else {
		it, err := v.items.GetByCode(ctx, req.ItemCode)
		switch {
		case errors.Is(err, item.ErrNotFound):
			msgs = append(msgs, fmt.Sprintf("item %q not found", req.ItemCode))
		case err != nil:
			return nil, err
		default:
			res.item = it
		}
	}

	lotMsgs, err := v.validateLot(ctx, req, res)
	if err != nil {
		return nil, err
	}
	msgs = append(msgs, lotMsgs...)

	if err := validationFailed(msgs); err != nil {
		return nil, err
	}
	return res, nil
}

func (v *Validator) validateLot(ctx context.Context, req *MovementRequest, res *resolved) ([]string, error) {
	mt := res.movType
	if mt == nil {
		// Without a direction the lot rules cannot be chosen; the missing
		// movement type has already been reported.
		return nil, nil
	}

	code := strings.TrimSpace(req.Lot.Code)
	if code == "" {
		if mt.IsCharge() {
			if !v.opts.AutomaticLotIn {
				return []string{"no lot chosen"}, nil
			}
			// The engine will generate a code; the caller still describes
			// the new lot.
			return v.checkNewLot(req), nil
		}
		if !v.opts.AutomaticLotOut {
			return []string{"no lot chosen"}, nil
		}
		// Automatic allocation picks the lots itself.
		return nil, nil
	}

	var msgs []string
	if len(code) > maxLotCodeLen {
		msgs = append(msgs, fmt.Sprintf("lot code exceeds %d characters", maxLotCodeLen))
	}

	lot, err := v.lots.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	res.lot = lot

	if mt.IsCharge() {
		if lot == nil {
			msgs = append(msgs, v.checkNewLot(req)...)
		} else if res.item != nil && lot.ItemCode != res.item.Code {
			msgs = append(msgs, fmt.Sprintf("lot %q belongs to a different item", code))
		}
		return msgs, nil
	}

	// Discharge against a named lot.
	if lot == nil {
		msgs = append(msgs, fmt.Sprintf("lot %q not found", code))
		return msgs, nil
	}
	if res.item != nil && lot.ItemCode != res.item.Code {
		msgs = append(msgs, fmt.Sprintf("lot %q belongs to a different item", code))
		return msgs, nil
	}
	if !v.opts.AutomaticLotOut && req.Quantity > 0 {
		avail, err := v.lots.MainStoreQty(ctx, code)
		if err != nil {
			return nil, err
		}
		if req.Quantity > avail {
			msgs = append(msgs, fmt.Sprintf("quantity exceeds the available quantity of lot %q", code))
		}
	}
	return msgs, nil
}

// checkNewLot validates the fields a lot must carry before it can be created
// by a charge.
func (v *Validator) checkNewLot(req *MovementRequest) []string {
	var msgs []string
	if req.Lot.PreparationDate.IsZero() {
		msgs = append(msgs, "lot preparation date is required")
	}
	if req.Lot.DueDate.IsZero() {
		msgs = append(msgs, "lot due date is required")
	}
	if !req.Lot.PreparationDate.IsZero() && !req.Lot.DueDate.IsZero() &&
		req.Lot.PreparationDate.After(req.Lot.DueDate) {
		msgs = append(msgs, "lot preparation date is after its due date")
	}
	if v.opts.LotWithCost && (req.Lot.Cost == nil || !req.Lot.Cost.IsPositive()) {
		msgs = append(msgs, "lot cost must be set and positive")
	}
	return msgs
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
