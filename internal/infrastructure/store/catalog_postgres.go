package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/storefront/internal/domain/catalog"
)

// PostgresCatalogRepository reads the catalog fields the checkout core
// snapshots into cart lines.
type PostgresCatalogRepository struct {
	db *sql.DB
}

func NewPostgresCatalogRepository(db *sql.DB) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{db: db}
}

func (r *PostgresCatalogRepository) Get(ctx context.Context, productID string) (*catalog.Product, error) {
	var p catalog.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(variant_id, ''), name, price, COALESCE(discount_price, 0), COALESCE(image_url, '')
		FROM products WHERE id = $1
	`, productID).Scan(&p.ID, &p.VariantID, &p.Name, &p.Price, &p.DiscountPrice, &p.ImageURL)
	if err == sql.ErrNoRows {
		return nil, catalog.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
