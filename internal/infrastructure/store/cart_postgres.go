package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/storefront/internal/domain/cart"
)

// PostgresCartRepository holds the authoritative cart for authenticated
// shoppers: one row per owner, lines as a JSON document. Last write wins
// across devices; a personal cart sees too little contention to justify
// optimistic locking.
type PostgresCartRepository struct {
	db *sql.DB
}

func NewPostgresCartRepository(db *sql.DB) *PostgresCartRepository {
	return &PostgresCartRepository{db: db}
}

func (r *PostgresCartRepository) Get(ctx context.Context, owner string) (*cart.Cart, error) {
	var itemsJSON []byte
	var updatedAt time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT items, updated_at FROM carts WHERE owner = $1
	`, owner).Scan(&itemsJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return &cart.Cart{Owner: owner}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	c := &cart.Cart{Owner: owner, UpdatedAt: updatedAt}
	if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	return c, nil
}

func (r *PostgresCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	itemsJSON, err := json.Marshal(c.Items)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO carts (owner, items, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner) DO UPDATE SET
			items = EXCLUDED.items,
			updated_at = EXCLUDED.updated_at
	`, c.Owner, itemsJSON, time.Now())
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (r *PostgresCartRepository) Delete(ctx context.Context, owner string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE owner = $1`, owner)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
