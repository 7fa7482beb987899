package movtype

import (
	"context"

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

const cols = `id, code, description, sign, created_at, updated_at`

func scanType(row pgx.Row) (*MovementType, error) {
	var t MovementType
	err := row.Scan(&t.ID, &t.Code, &t.Description, &t.Sign, &t.CreatedAt, &t.UpdatedAt)
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, t *MovementType) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO movement_type (id, code, description, sign)
		VALUES ($1,$2,$3,$4)`,
		t.ID, t.Code, t.Description, t.Sign)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*MovementType, error) {
	return scanType(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM movement_type WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*MovementType, error) {
	return scanType(r.conn(ctx).QueryRow(ctx, `SELECT `+cols+` FROM movement_type WHERE code = $1`, code))
}

func (r *repoPG) Update(ctx context.Context, t *MovementType) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE movement_type SET code=$2, description=$3, sign=$4, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.Code, t.Description, t.Sign)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM movement_type WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*MovementType, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM movement_type`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+cols+` FROM movement_type ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var types []*MovementType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, 0, err
		}
		types = append(types, t)
	}
	return types, total, rows.Err()
}
