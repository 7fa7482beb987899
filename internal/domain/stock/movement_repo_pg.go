package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type movementRepoPG struct{ pool *pgxpool.Pool }

func NewMovementRepoPG(pool *pgxpool.Pool) MovementRepository {
	return &movementRepoPG{pool: pool}
}

func (r *movementRepoPG) conn(ctx context.Context) queryable { return conn(ctx, r.pool) }

const movCols = `m.id, m.item_code, m.lot_code, m.mov_type_code, m.ward_code, m.supplier_code,
	m.date, m.quantity, m.ref_no, m.created_at`

func scanMovement(row pgx.Row) (*Movement, error) {
	var m Movement
	err := row.Scan(&m.ID, &m.ItemCode, &m.LotCode, &m.MovTypeCode, &m.WardCode, &m.SupplierCode,
		&m.Date, &m.Quantity, &m.RefNo, &m.CreatedAt)
	return &m, err
}

func collectMovements(rows pgx.Rows) ([]*Movement, error) {
	defer rows.Close()
	var movements []*Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func (r *movementRepoPG) Create(ctx context.Context, m *Movement) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO stock_movement (id, item_code, lot_code, mov_type_code, ward_code, supplier_code, date, quantity, ref_no)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.ItemCode, m.LotCode, m.MovTypeCode, m.WardCode, m.SupplierCode, m.Date, m.Quantity, m.RefNo)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23503: foreign_key_violation, the referenced lot is missing
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("append movement for lot %s: %w", m.LotCode, ErrLotNotFound)
		}
		return err
	}
	return nil
}

func (r *movementRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Movement, error) {
	m, err := scanMovement(r.conn(ctx).QueryRow(ctx,
		`SELECT `+movCols+` FROM stock_movement m WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMovementNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *movementRepoPG) GetByRefNo(ctx context.Context, refNo string) ([]*Movement, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+movCols+` FROM stock_movement m WHERE m.ref_no = $1 ORDER BY m.date, m.ref_no`, refNo)
	if err != nil {
		return nil, err
	}
	return collectMovements(rows)
}

func (r *movementRepoPG) RefNoExists(ctx context.Context, refNo string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_movement WHERE ref_no = $1)`, refNo).Scan(&exists)
	return exists, err
}

func (r *movementRepoPG) LastDate(ctx context.Context) (*time.Time, error) {
	var date *time.Time
	err := r.conn(ctx).QueryRow(ctx, `SELECT MAX(date) FROM stock_movement`).Scan(&date)
	if err != nil {
		return nil, err
	}
	return date, nil
}

func (r *movementRepoPG) Last(ctx context.Context) (*Movement, error) {
	m, err := scanMovement(r.conn(ctx).QueryRow(ctx,
		`SELECT `+movCols+` FROM stock_movement m ORDER BY m.date DESC, m.created_at DESC LIMIT 1`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *movementRepoPG) CountByLot(ctx context.Context, lotCode string) (int, error) {
	var count int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM stock_movement WHERE lot_code = $1`, lotCode).Scan(&count)
	return count, err
}

func (r *movementRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM stock_movement WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMovementNotFound
	}
	return nil
}

// Search filters the ledger for reporting. Lot date-range predicates join the
// lot table; item-type predicates join the item catalog.
func (r *movementRepoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Movement, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ItemCode != "" {
		where = append(where, "m.item_code = "+arg(f.ItemCode))
	}
	if f.ItemType != "" {
		where = append(where, "i.type = "+arg(f.ItemType))
	}
	if f.WardCode != "" {
		where = append(where, "m.ward_code = "+arg(f.WardCode))
	}
	if f.MovTypeCode != "" {
		where = append(where, "m.mov_type_code = "+arg(f.MovTypeCode))
	}
	if f.LotCode != "" {
		where = append(where, "m.lot_code = "+arg(f.LotCode))
	}
	if f.DateFrom != nil {
		where = append(where, "m.date >= "+arg(*f.DateFrom))
	}
	if f.DateTo != nil {
		where = append(where, "m.date <= "+arg(*f.DateTo))
	}
	if f.LotPrepFrom != nil {
		where = append(where, "l.preparation_date >= "+arg(*f.LotPrepFrom))
	}
	if f.LotPrepTo != nil {
		where = append(where, "l.preparation_date <= "+arg(*f.LotPrepTo))
	}
	if f.LotDueFrom != nil {
		where = append(where, "l.due_date >= "+arg(*f.LotDueFrom))
	}
	if f.LotDueTo != nil {
		where = append(where, "l.due_date <= "+arg(*f.LotDueTo))
	}

	join := `FROM stock_movement m
		JOIN medical_item i ON i.code = m.item_code
		JOIN stock_lot l ON l.code = m.lot_code`
	clause := strings.Join(where, " AND ")

	var order string
	switch f.OrderBy {
	case OrderByWard:
		order = "m.ward_code NULLS LAST, m.date DESC, m.ref_no DESC"
	case OrderByItemType:
		order = "i.type, m.date DESC, m.ref_no DESC"
	case OrderByMovType:
		order = "m.mov_type_code, m.date DESC, m.ref_no DESC"
	default:
		order = "m.date DESC, m.ref_no DESC"
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", join, clause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY %s LIMIT %s OFFSET %s",
		movCols, join, clause, order, arg(limit), arg(offset))
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	movements, err := collectMovements(rows)
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}
