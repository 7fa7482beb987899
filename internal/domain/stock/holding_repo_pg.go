package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type holdingRepoPG struct{ pool *pgxpool.Pool }

func NewWardHoldingRepoPG(pool *pgxpool.Pool) WardHoldingRepository {
	return &holdingRepoPG{pool: pool}
}

func (r *holdingRepoPG) conn(ctx context.Context) queryable { return conn(ctx, r.pool) }

const holdingCols = `id, ward_code, item_code, lot_code, in_qty, out_qty`

func scanHolding(row pgx.Row) (*WardHolding, error) {
	var h WardHolding
	err := row.Scan(&h.ID, &h.WardCode, &h.ItemCode, &h.LotCode, &h.InQty, &h.OutQty)
	return &h, err
}

func (r *holdingRepoPG) Get(ctx context.Context, wardCode, itemCode, lotCode string) (*WardHolding, error) {
	h, err := scanHolding(r.conn(ctx).QueryRow(ctx, `
		SELECT `+holdingCols+` FROM ward_holding
		WHERE ward_code = $1 AND item_code = $2 AND lot_code = $3`,
		wardCode, itemCode, lotCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}

func (r *holdingRepoPG) ApplyReceipt(ctx context.Context, wardCode, itemCode, lotCode string, qty int) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ward_holding (id, ward_code, item_code, lot_code, in_qty, out_qty)
		VALUES ($1,$2,$3,$4,$5,0)
		ON CONFLICT (ward_code, item_code, lot_code)
		DO UPDATE SET in_qty = ward_holding.in_qty + EXCLUDED.in_qty`,
		uuid.New(), wardCode, itemCode, lotCode, qty)
	return err
}

func (r *holdingRepoPG) ApplyIssue(ctx context.Context, wardCode, itemCode, lotCode string, qty int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE ward_holding SET out_qty = out_qty + $4
		WHERE ward_code = $1 AND item_code = $2 AND lot_code = $3
		  AND in_qty - out_qty >= $4`,
		wardCode, itemCode, lotCode, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Either the row is missing or the issue would drive the ward
		// balance negative.
		return fmt.Errorf("issue %d of lot %s from ward %s: %w", qty, lotCode, wardCode, ErrInsufficientStock)
	}
	return nil
}

func (r *holdingRepoPG) RollbackReceipt(ctx context.Context, wardCode, itemCode, lotCode string, qty int) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE ward_holding SET in_qty = in_qty - $4
		WHERE ward_code = $1 AND item_code = $2 AND lot_code = $3 AND in_qty - $4 >= out_qty`,
		wardCode, itemCode, lotCode, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rollback receipt of lot %s into ward %s: %w", lotCode, wardCode, ErrInsufficientStock)
	}
	// Depleted rows are removed entirely.
	_, err = r.conn(ctx).Exec(ctx, `
		DELETE FROM ward_holding
		WHERE ward_code = $1 AND item_code = $2 AND lot_code = $3 AND in_qty = out_qty`,
		wardCode, itemCode, lotCode)
	return err
}

func (r *holdingRepoPG) ListByWard(ctx context.Context, wardCode string) ([]*WardHolding, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+holdingCols+` FROM ward_holding
		WHERE ward_code = $1 ORDER BY item_code, lot_code`, wardCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holdings []*WardHolding
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}
