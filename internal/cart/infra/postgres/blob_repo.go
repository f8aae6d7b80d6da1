package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dwikikusuma/pizza-cart/internal/cart/app"
)

const schema = `
CREATE TABLE IF NOT EXISTS storefront_blobs (
	blob_key   TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// BlobRepo stores snapshots in Postgres so several storefront processes can
// share one cart.
type BlobRepo struct {
	db *sql.DB
}

func NewBlobRepo(db *sql.DB) *BlobRepo {
	return &BlobRepo{db: db}
}

func (r *BlobRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *BlobRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM storefront_blobs WHERE blob_key = $1`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, app.ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (r *BlobRepo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO storefront_blobs (blob_key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (blob_key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value,
	)
	return err
}
