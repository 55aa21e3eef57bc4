package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/storefront/internal/domain/shipping"
	"github.com/google/uuid"
)

// PostgresAddressRepository reads a user's saved address book. Row-level
// ownership is enforced in the query; the checkout core never re-implements
// the access check.
type PostgresAddressRepository struct {
	db *sql.DB
}

func NewPostgresAddressRepository(db *sql.DB) *PostgresAddressRepository {
	return &PostgresAddressRepository{db: db}
}

func (r *PostgresAddressRepository) Get(ctx context.Context, userID, addressID string) (*shipping.Address, error) {
	var a shipping.Address
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, street, city, COALESCE(state, ''), zip_code, country, is_default
		FROM addresses WHERE id = $1 AND user_id = $2
	`, addressID, userID).Scan(&a.ID, &a.UserID, &a.Street, &a.City, &a.State, &a.ZipCode, &a.Country, &a.IsDefault)
	if err == sql.ErrNoRows {
		return nil, shipping.ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	return &a, nil
}

func (r *PostgresAddressRepository) ListByUser(ctx context.Context, userID string) ([]*shipping.Address, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, street, city, COALESCE(state, ''), zip_code, country, is_default
		FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	var addresses []*shipping.Address
	for rows.Next() {
		var a shipping.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Street, &a.City, &a.State, &a.ZipCode, &a.Country, &a.IsDefault); err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, &a)
	}
	return addresses, rows.Err()
}

func (r *PostgresAddressRepository) Save(ctx context.Context, a *shipping.Address) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO addresses (id, user_id, street, city, state, zip_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			street = EXCLUDED.street,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code,
			country = EXCLUDED.country,
			is_default = EXCLUDED.is_default
	`, a.ID, a.UserID, a.Street, a.City, nullable(a.State), a.ZipCode, a.Country, a.IsDefault)
	if err != nil {
		return fmt.Errorf("save address: %w", err)
	}
	return nil
}
