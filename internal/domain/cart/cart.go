package cart

import (
	"time"
)

// ProductSnapshot freezes catalog data at the moment an item enters a cart.
// Order items carry the same snapshot so later catalog edits never alter
// historical records.
type ProductSnapshot struct {
	Name          string `json:"name"`
	UnitPrice     int64  `json:"unit_price"`
	DiscountPrice int64  `json:"discount_price,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
}

// EffectiveUnitPrice returns the discounted price when one is set.
func (s ProductSnapshot) EffectiveUnitPrice() int64 {
	if s.DiscountPrice > 0 {
		return s.DiscountPrice
	}
	return s.UnitPrice
}

// Key is the merge/dedup identity of a line item. Adding the same key twice
// increments quantity instead of appending a second line.
type Key struct {
	ProductID string
	VariantID string
	Size      string
	Color     string
}

// LineItem is one product+variant+options+quantity entry in a cart.
type LineItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Snapshot  ProductSnapshot `json:"snapshot"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Key returns the merge identity of the line.
func (li LineItem) Key() Key {
	return Key{ProductID: li.ProductID, VariantID: li.VariantID, Size: li.Size, Color: li.Color}
}

// Cart is the ordered collection of line items for one shopper.
type Cart struct {
	Owner     string     `json:"owner"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ItemCount sums quantities across lines.
func (c *Cart) ItemCount() int {
	var n int
	for _, li := range c.Items {
		n += li.Quantity
	}
	return n
}

// Find returns the index of the line with the given identity, or -1.
func (c *Cart) Find(key Key) int {
	for i, li := range c.Items {
		if li.Key() == key {
			return i
		}
	}
	return -1
}

// Contains reports whether a line with the given identity exists.
func (c *Cart) Contains(key Key) bool {
	return c.Find(key) >= 0
}

// FindByID returns the index of the line with the given line-item ID, or -1.
func (c *Cart) FindByID(itemID string) int {
	for i, li := range c.Items {
		if li.ID == itemID {
			return i
		}
	}
	return -1
}
