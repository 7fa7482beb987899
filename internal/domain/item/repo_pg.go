package item

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medstock/medstock/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const cols = `id, code, description, type, min_qty, pcs_per_pkt, initial_qty, in_qty, out_qty, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var i Item
	err := row.Scan(&i.ID, &i.Code, &i.Description, &i.Type, &i.MinQty, &i.PcsPerPkt,
		&i.InitialQty, &i.InQty, &i.OutQty, &i.CreatedAt, &i.UpdatedAt)
	return &i, err
}

func (r *repoPG) Create(ctx context.Context, i *Item) error {
	i.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_item (id, code, description, type, min_qty, pcs_per_pkt, initial_qty, in_qty, out_qty)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		i.ID, i.Code, i.Description, i.Type, i.MinQty, i.PcsPerPkt, i.InitialQty, i.InQty, i.OutQty)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM medical_item WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Item, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM medical_item WHERE code = $1`, code))
}

func (r *repoPG) GetByCodeForUpdate(ctx context.Context, code string) (*Item, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM medical_item WHERE code = $1 FOR UPDATE`, code))
}

func (r *repoPG) Update(ctx context.Context, i *Item) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_item SET code=$2, description=$3, type=$4, min_qty=$5, pcs_per_pkt=$6,
			initial_qty=$7, updated_at=NOW()
		WHERE id = $1`,
		i.ID, i.Code, i.Description, i.Type, i.MinQty, i.PcsPerPkt, i.InitialQty)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_item WHERE id = $1`, id)
	return err
}

func (r *repoPG) AddReceived(ctx context.Context, code string, qty int) (*Item, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx, `
		UPDATE medical_item SET in_qty = in_qty + $2, updated_at=NOW()
		WHERE code = $1
		RETURNING `+cols, code, qty))
}

func (r *repoPG) AddIssued(ctx context.Context, code string, qty int) (*Item, error) {
	return scanItem(r.conn(ctx).QueryRow(ctx, `
		UPDATE medical_item SET out_qty = out_qty + $2, updated_at=NOW()
		WHERE code = $1
		RETURNING `+cols, code, qty))
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Item, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	if code := params["code"]; code != "" {
		args = append(args, code)
		where = append(where, fmt.Sprintf("code = $%d", len(args)))
	}
	if typ := params["type"]; typ != "" {
		args = append(args, typ)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if desc := params["description"]; desc != "" {
		args = append(args, "%"+desc+"%")
		where = append(where, fmt.Sprintf("description ILIKE $%d", len(args)))
	}

	clause := strings.Join(where, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_item WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM medical_item WHERE %s ORDER BY description LIMIT $%d OFFSET $%d`,
			cols, clause, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, i)
	}
	return items, total, rows.Err()
}
