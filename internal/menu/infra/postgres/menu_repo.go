package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dwikikusuma/pizza-cart/internal/menu/app"
	"github.com/dwikikusuma/pizza-cart/internal/menu/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS menu_items (
	id          BIGINT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	image       TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL,
	price_small NUMERIC(10,2) NOT NULL,
	price_large NUMERIC(10,2) NOT NULL
);
CREATE TABLE IF NOT EXISTS toppings (
	id    BIGINT PRIMARY KEY,
	name  TEXT NOT NULL,
	price NUMERIC(10,2) NOT NULL
)`

// MenuRepo serves the menu from Postgres tables.
type MenuRepo struct {
	db *sql.DB
}

func NewMenuRepo(db *sql.DB) *MenuRepo {
	return &MenuRepo{db: db}
}

func (r *MenuRepo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *MenuRepo) ListMenuItems(ctx context.Context) ([]domain.MenuEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, image, category, price_small::text, price_large::text
		FROM menu_items
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.MenuEntry{}
	for rows.Next() {
		var e domain.MenuEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Image, &e.Category, &e.PriceSmall, &e.PriceLarge); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *MenuRepo) GetMenuItem(ctx context.Context, id int64) (domain.MenuEntry, error) {
	var e domain.MenuEntry
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, image, category, price_small::text, price_large::text
		FROM menu_items
		WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.Description, &e.Image, &e.Category, &e.PriceSmall, &e.PriceLarge)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.MenuEntry{}, app.ErrNotFound
	}
	if err != nil {
		return domain.MenuEntry{}, err
	}
	return e, nil
}

func (r *MenuRepo) ListToppings(ctx context.Context) ([]domain.Topping, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, price::text FROM toppings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Topping{}
	for rows.Next() {
		var t domain.Topping
		if err := rows.Scan(&t.ID, &t.Name, &t.Price); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Seed upserts entries and toppings in one transaction.
func (r *MenuRepo) Seed(ctx context.Context, items []domain.MenuEntry, toppings []domain.Topping) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO menu_items (id, name, description, image, category, price_small, price_large)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				description = EXCLUDED.description,
				image = EXCLUDED.image,
				category = EXCLUDED.category,
				price_small = EXCLUDED.price_small,
				price_large = EXCLUDED.price_large`,
			e.ID, e.Name, e.Description, e.Image, string(e.Category), string(e.PriceSmall), string(e.PriceLarge),
		); err != nil {
			return fmt.Errorf("seed menu item %d: %w", e.ID, err)
		}
	}

	for _, t := range toppings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO toppings (id, name, price)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price`,
			t.ID, t.Name, string(t.Price),
		); err != nil {
			return fmt.Errorf("seed topping %d: %w", t.ID, err)
		}
	}

	return tx.Commit()
}
