package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type lotRepoPG struct{ pool *pgxpool.Pool }

func NewLotRepoPG(pool *pgxpool.Pool) LotRepository {
	return &lotRepoPG{pool: pool}
}

func (r *lotRepoPG) conn(ctx context.Context) queryable { return conn(ctx, r.pool) }

// mainStoreQtyExpr is the signed net of the ledger for one lot: charge
// movements add, discharge movements subtract.
const mainStoreQtyExpr = `COALESCE((
	SELECT SUM(CASE WHEN t.sign = '+' THEN m.quantity ELSE -m.quantity END)
	FROM stock_movement m
	JOIN movement_type t ON t.code = m.mov_type_code
	WHERE m.lot_code = l.code), 0)`

// wardsTotalQtyExpr is the stock of the lot currently held across wards.
const wardsTotalQtyExpr = `COALESCE((
	SELECT SUM(h.in_qty - h.out_qty)
	FROM ward_holding h
	WHERE h.lot_code = l.code), 0)`

const lotCols = `l.code, l.item_code, l.preparation_date, l.due_date, l.cost, l.created_at, ` +
	mainStoreQtyExpr + `, ` + wardsTotalQtyExpr

func scanLot(row pgx.Row) (*Lot, error) {
	var l Lot
	err := row.Scan(&l.Code, &l.ItemCode, &l.PreparationDate, &l.DueDate, &l.Cost, &l.CreatedAt,
		&l.MainStoreQty, &l.WardsTotalQty)
	return &l, err
}

func (r *lotRepoPG) Get(ctx context.Context, code string) (*Lot, error) {
	l, err := scanLot(r.conn(ctx).QueryRow(ctx,
		`SELECT `+lotCols+` FROM stock_lot l WHERE l.code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *lotRepoPG) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_lot WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

func (r *lotRepoPG) Create(ctx context.Context, l *Lot) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO stock_lot (code, item_code, preparation_date, due_date, cost)
		VALUES ($1,$2,$3,$4,$5)`,
		l.Code, l.ItemCode, l.PreparationDate, l.DueDate, l.Cost)
	return err
}

func (r *lotRepoPG) Delete(ctx context.Context, code string) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM stock_lot WHERE code = $1`, code)
	return err
}

func (r *lotRepoPG) ListByItem(ctx context.Context, itemCode string, onlyAvailable bool) ([]*Lot, error) {
	query := `SELECT ` + lotCols + ` FROM stock_lot l WHERE l.item_code = $1 ORDER BY l.due_date, l.code`
	rows, err := r.conn(ctx).Query(ctx, query, itemCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []*Lot
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, err
		}
		if onlyAvailable && l.MainStoreQty <= 0 {
			continue
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

func (r *lotRepoPG) MainStoreQty(ctx context.Context, code string) (int, error) {
	var qty int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+mainStoreQtyExpr+` FROM stock_lot l WHERE l.code = $1`, code).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLotNotFound
		}
		return 0, err
	}
	return qty, nil
}

func (r *lotRepoPG) WardsTotalQty(ctx context.Context, code string) (int, error) {
	var qty int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+wardsTotalQtyExpr+` FROM stock_lot l WHERE l.code = $1`, code).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLotNotFound
		}
		return 0, err
	}
	return qty, nil
}
