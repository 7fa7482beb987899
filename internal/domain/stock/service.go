package stock

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medstock/medstock/internal/domain/item"
	"github.com/medstock/medstock/internal/domain/movtype"
	"github.com/medstock/medstock/internal/domain/ward"
)

// Attempts at generating an unused lot code before giving up. Collisions on
// a nine-digit random code are rare; repeated collision means the directory
// is in a state worth failing loudly over.
const lotCodeAttempts = 10

// Service is the movement orchestrator. Every public write runs inside one
// database transaction: a failure on any step rolls back everything the call
// did, including earlier lines of a multi-line insert.
type Service struct {
	tx        TxRunner
	movements MovementRepository
	lots      LotRepository
	holdings  WardHoldingRepository
	items     ItemCatalog
	wards     WardDirectory
	movTypes  MovTypeCatalog
	validator *Validator
	allocator *Allocator
	opts      Options
}

func NewService(tx TxRunner, movements MovementRepository, lots LotRepository, holdings WardHoldingRepository, items ItemCatalog, wards WardDirectory, movTypes MovTypeCatalog, opts Options) *Service {
	return &Service{
		tx:        tx,
		movements: movements,
		lots:      lots,
		holdings:  holdings,
		items:     items,
		wards:     wards,
		movTypes:  movTypes,
		validator: NewValidator(movements, lots, items, wards, movTypes, opts),
		allocator: NewAllocator(lots),
		opts:      opts,
	}
}

// NewMovement validates and posts one movement. An automatic discharge may
// split across lots, so more than one ledger entry can come back.
func (s *Service) NewMovement(ctx context.Context, req *MovementRequest) ([]*Movement, error) {
	var posted []*Movement
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		posted, err = s.post(ctx, req, true, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return posted, nil
}

// NewChargingMovements posts a multi-line receipt. With a shared reference
// number the number is checked once and stamped on every line; otherwise each
// line carries and validates its own. The insert is all-or-nothing: the first
// failing line rolls back every line already applied in this call.
func (s *Service) NewChargingMovements(ctx context.Context, reqs []*MovementRequest, sharedRefNo string) ([]*Movement, error) {
	return s.newMultiple(ctx, reqs, sharedRefNo, movtype.SignCharge)
}

// NewDischargingMovements posts a multi-line issue with the same reference
// number and rollback semantics as NewChargingMovements.
func (s *Service) NewDischargingMovements(ctx context.Context, reqs []*MovementRequest, sharedRefNo string) ([]*Movement, error) {
	return s.newMultiple(ctx, reqs, sharedRefNo, movtype.SignDischarge)
}

func (s *Service) newMultiple(ctx context.Context, reqs []*MovementRequest, sharedRefNo string, wantSign string) ([]*Movement, error) {
	if len(reqs) == 0 {
		return nil, validationFailed([]string{"no movements given"})
	}

	var posted []*Movement
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		sharedRefNo = strings.TrimSpace(sharedRefNo)
		perLineRefNo := sharedRefNo == ""
		if !perLineRefNo {
			inUse, err := s.movements.RefNoExists(ctx, sharedRefNo)
			if err != nil {
				return err
			}
			if inUse {
				return fmt.Errorf("reference number %q: %w", sharedRefNo, ErrRefNoInUse)
			}
		}

		for _, req := range reqs {
			if !perLineRefNo {
				req.RefNo = sharedRefNo
			}
			ms, err := s.post(ctx, req, perLineRefNo, wantSign)
			if err != nil {
				return lineError(s.itemDescription(ctx, req.ItemCode), err)
			}
			posted = append(posted, ms...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posted, nil
}

// post validates one request and applies it to the ledger and the aggregates.
// It must run inside a transaction. wantSign, when set, pins the direction
// the movement type must carry.
func (s *Service) post(ctx context.Context, req *MovementRequest, requireRefNo bool, wantSign string) ([]*Movement, error) {
	// Lock the item row up front so the quantity checks, the append and the
	// aggregate update all see the same stable row even under concurrent
	// requests for the same item.
	if req.ItemCode != "" {
		if _, err := s.items.GetByCodeForUpdate(ctx, req.ItemCode); err != nil && !errors.Is(err, item.ErrNotFound) {
			return nil, err
		}
	}

	res, err := s.validator.Validate(ctx, req, requireRefNo)
	if err != nil {
		return nil, err
	}
	if wantSign != "" && res.movType.Sign != wantSign {
		what := "charging"
		if wantSign == movtype.SignDischarge {
			what = "discharging"
		}
		return nil, validationFailed([]string{fmt.Sprintf("movement type %q is not a %s type", res.movType.Code, what)})
	}

	if res.movType.IsCharge() {
		m, err := s.postCharge(ctx, req, res)
		if err != nil {
			return nil, err
		}
		return []*Movement{m}, nil
	}
	return s.postDischarge(ctx, req, res)
}

func (s *Service) postCharge(ctx context.Context, req *MovementRequest, res *resolved) (*Movement, error) {
	lotCode := strings.TrimSpace(req.Lot.Code)
	if lotCode == "" {
		code, err := s.generateLotCode(ctx)
		if err != nil {
			return nil, err
		}
		lotCode = code
	}
	if res.lot == nil {
		lot := &Lot{
			Code:            lotCode,
			ItemCode:        res.item.Code,
			PreparationDate: req.Lot.PreparationDate,
			DueDate:         req.Lot.DueDate,
			Cost:            req.Lot.Cost,
		}
		if err := s.lots.Create(ctx, lot); err != nil {
			return nil, err
		}
		res.lot = lot
	}

	m := s.buildMovement(req, lotCode, req.Quantity)
	if err := s.movements.Create(ctx, m); err != nil {
		return nil, err
	}
	if _, err := s.items.IncrementReceived(ctx, res.item.Code, req.Quantity); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) postDischarge(ctx context.Context, req *MovementRequest, res *resolved) ([]*Movement, error) {
	var plan []allocation
	if res.lot != nil {
		avail, err := s.lots.MainStoreQty(ctx, res.lot.Code)
		if err != nil {
			return nil, err
		}
		if req.Quantity > avail {
			return nil, fmt.Errorf("lot %s holds %d: %w", res.lot.Code, avail, ErrInsufficientStock)
		}
		plan = []allocation{{Lot: res.lot, Quantity: req.Quantity}}
	} else {
		var err error
		plan, err = s.allocator.Allocate(ctx, res.item.Code, req.Quantity)
		if err != nil {
			return nil, err
		}
	}

	out := make([]*Movement, 0, len(plan))
	for _, alloc := range plan {
		m := s.buildMovement(req, alloc.Lot.Code, alloc.Quantity)
		if err := s.movements.Create(ctx, m); err != nil {
			return nil, err
		}
		if _, err := s.items.IncrementIssued(ctx, res.item.Code, alloc.Quantity); err != nil {
			return nil, err
		}
		if err := s.holdings.ApplyReceipt(ctx, *req.WardCode, res.item.Code, alloc.Lot.Code, alloc.Quantity); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Service) buildMovement(req *MovementRequest, lotCode string, qty int) *Movement {
	return &Movement{
		ID:           uuid.New(),
		ItemCode:     req.ItemCode,
		LotCode:      lotCode,
		MovTypeCode:  req.MovTypeCode,
		WardCode:     req.WardCode,
		SupplierCode: req.SupplierCode,
		Date:         req.Date,
		Quantity:     qty,
		RefNo:        strings.TrimSpace(req.RefNo),
	}
}

func (s *Service) generateLotCode(ctx context.Context) (string, error) {
	for i := 0; i < lotCodeAttempts; i++ {
		code := fmt.Sprintf("%09d", rand.Intn(1_000_000_000))
		exists, err := s.lots.Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrLotCodeExhausted
}

// itemDescription is best effort diagnostics for multi-line failures; the
// code stands in when the item cannot be read.
func (s *Service) itemDescription(ctx context.Context, code string) string {
	it, err := s.items.GetByCode(ctx, code)
	if err != nil || it == nil {
		return code
	}
	return it.Description
}

// DeleteLastMovement reverses the most recent ledger entry: the item
// aggregate is decremented back, a discharge's ward receipt is rolled back,
// and the lot is removed once no movement references it anymore. The id must
// name the chronologically last movement; anything else fails with
// ErrNotLastMovement.
func (s *Service) DeleteLastMovement(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		m, err := s.movements.GetByID(ctx, id)
		if err != nil {
			return err
		}
		last, err := s.movements.Last(ctx)
		if err != nil {
			return err
		}
		if last == nil || last.ID != m.ID {
			return ErrNotLastMovement
		}

		mt, err := s.movTypes.GetByCode(ctx, m.MovTypeCode)
		if err != nil {
			return err
		}
		if _, err := s.items.GetByCodeForUpdate(ctx, m.ItemCode); err != nil {
			return err
		}

		if mt.IsCharge() {
			if _, err := s.items.IncrementReceived(ctx, m.ItemCode, -m.Quantity); err != nil {
				return err
			}
		} else {
			if _, err := s.items.IncrementIssued(ctx, m.ItemCode, -m.Quantity); err != nil {
				return err
			}
			if m.WardCode != nil {
				if err := s.holdings.RollbackReceipt(ctx, *m.WardCode, m.ItemCode, m.LotCode, m.Quantity); err != nil {
					return err
				}
			}
		}

		if err := s.movements.Delete(ctx, m.ID); err != nil {
			return err
		}
		n, err := s.movements.CountByLot(ctx, m.LotCode)
		if err != nil {
			return err
		}
		if n == 0 {
			return s.lots.Delete(ctx, m.LotCode)
		}
		return nil
	})
}

// IssueFromWard records consumption of held stock inside a ward. The balance
// must stay non-negative.
func (s *Service) IssueFromWard(ctx context.Context, wardCode, itemCode, lotCode string, qty int) error {
	if qty <= 0 {
		return validationFailed([]string{"quantity must be positive"})
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		h, err := s.holdings.Get(ctx, wardCode, itemCode, lotCode)
		if err != nil {
			return err
		}
		if h == nil || h.CurrentQty() < qty {
			return fmt.Errorf("ward %s holds %d of lot %s: %w", wardCode, heldQty(h), lotCode, ErrInsufficientStock)
		}
		return s.holdings.ApplyIssue(ctx, wardCode, itemCode, lotCode, qty)
	})
}

func heldQty(h *WardHolding) int {
	if h == nil {
		return 0
	}
	return h.CurrentQty()
}

// GetMovements lists ledger entries matching the filter, newest first unless
// the filter selects another order.
func (s *Service) GetMovements(ctx context.Context, f Filter, limit, offset int) ([]*Movement, int, error) {
	return s.movements.Search(ctx, f, limit, offset)
}

// GetMovementsByRefNo returns the lines of one transaction.
func (s *Service) GetMovementsByRefNo(ctx context.Context, refNo string) ([]*Movement, error) {
	ms, err := s.movements.GetByRefNo(ctx, refNo)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, ErrMovementNotFound
	}
	return ms, nil
}

// LastMovementDate returns the date of the most recent entry, nil on an
// empty ledger.
func (s *Service) LastMovementDate(ctx context.Context) (*time.Time, error) {
	return s.movements.LastDate(ctx)
}

// ListLots returns the item's lots with their derived quantities, ordered by
// ascending due date. With onlyAvailable set, depleted lots are left out.
func (s *Service) ListLots(ctx context.Context, itemCode string, onlyAvailable bool) ([]*Lot, error) {
	if _, err := s.items.GetByCode(ctx, itemCode); err != nil {
		return nil, err
	}
	return s.lots.ListByItem(ctx, itemCode, onlyAvailable)
}

// GetLot returns one lot with its derived quantities.
func (s *Service) GetLot(ctx context.Context, code string) (*Lot, error) {
	lot, err := s.lots.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, ErrLotNotFound
	}
	return lot, nil
}

// WardHoldings lists the running balances held by one ward.
func (s *Service) WardHoldings(ctx context.Context, wardCode string) ([]*WardHolding, error) {
	if _, err := s.wards.GetByCode(ctx, wardCode); err != nil {
		if errors.Is(err, ward.ErrNotFound) {
			return nil, ward.ErrNotFound
		}
		return nil, err
	}
	return s.holdings.ListByWard(ctx, wardCode)
}
