package catalog

import (
	"context"
	"errors"
)

var ErrProductNotFound = errors.New("product not found")

// Product is the slice of catalog data the checkout core needs: enough to
// snapshot a line item and resolve its inventory reference. Browsing,
// search and admin catalog CRUD live elsewhere.
type Product struct {
	ID            string `json:"id"`
	VariantID     string `json:"variant_id,omitempty"`
	Name          string `json:"name"`
	Price         int64  `json:"price"`
	DiscountPrice int64  `json:"discount_price,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
}

// Repository reads products from the remote data store.
type Repository interface {
	Get(ctx context.Context, productID string) (*Product, error)
}
