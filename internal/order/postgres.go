package order

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a Postgres-backed order store.
//
// Expected schema:
//
//	CREATE SEQUENCE order_seq;
//	CREATE TABLE orders (
//	    id             TEXT PRIMARY KEY,
//	    user_id        BIGINT NOT NULL,
//	    name           TEXT NOT NULL,
//	    phone          TEXT NOT NULL,
//	    address        TEXT NOT NULL,
//	    items_json     TEXT NOT NULL,
//	    total          BIGINT NOT NULL,
//	    status         TEXT NOT NULL,
//	    payment_method TEXT NOT NULL,
//	    created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
//	CREATE INDEX orders_user_id_idx ON orders (user_id);
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, o Order) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO orders (id, user_id, name, phone, address, items_json, total, status, payment_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.UserID, o.Name, o.Phone, o.Address, o.ItemsJSON, o.Total, string(o.Status), o.PaymentMethod, o.CreatedAt,
	)
	return err
}

func (r *postgresRepository) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	var status string
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, name, phone, address, items_json, total, status, payment_method, created_at
		FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.UserID, &o.Name, &o.Phone, &o.Address, &o.ItemsJSON, &o.Total, &status, &o.PaymentMethod, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	return o, nil
}

func (r *postgresRepository) ByUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, phone, address, items_json, total, status, payment_method, created_at
		FROM orders WHERE user_id = $1 ORDER BY id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.Name, &o.Phone, &o.Address, &o.ItemsJSON, &o.Total, &status, &o.PaymentMethod, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Status = Status(status)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresRepository) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `SELECT nextval('order_seq')`).Scan(&seq)
	return seq, err
}
