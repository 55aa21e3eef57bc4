package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/storefront/internal/domain/order"
)

// PostgresOrderRepository persists orders and their lines. Monetary columns
// are written once at creation and never updated; UpdateStatus touches only
// status and updated_at.
type PostgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

func (r *PostgresOrderRepository) CreateOrder(ctx context.Context, o *order.Order) error {
	shippingJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}
	billingJSON, err := json.Marshal(o.BillingAddress)
	if err != nil {
		return fmt.Errorf("encode billing address: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, status, payment_status,
			subtotal, tax, shipping, discount, total,
			shipping_address, billing_address, payment_method_ref,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, o.ID, o.UserID, o.Status, o.PaymentStatus,
		o.Subtotal, o.Tax, o.Shipping, o.Discount, o.Total,
		shippingJSON, billingJSON, o.PaymentMethodRef,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *PostgresOrderRepository) CreateItems(ctx context.Context, items []order.Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin items tx: %w", err)
	}
	defer tx.Rollback()

	for _, it := range items {
		snapshotJSON, err := json.Marshal(it.Snapshot)
		if err != nil {
			return fmt.Errorf("encode item snapshot: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, variant_id, snapshot,
				quantity, size, color, unit_price, total_price
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, it.OrderID, it.ProductID, nullable(it.VariantID), snapshotJSON,
			it.Quantity, nullable(it.Size), nullable(it.Color), it.UnitPrice, it.TotalPrice)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PostgresOrderRepository) Get(ctx context.Context, orderID string) (*order.Order, error) {
	var o order.Order
	var shippingJSON, billingJSON []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, payment_status,
		       subtotal, tax, shipping, discount, total,
		       shipping_address, billing_address, payment_method_ref,
		       created_at, updated_at
		FROM orders WHERE id = $1
	`, orderID).Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Discount, &o.Total,
		&shippingJSON, &billingJSON, &o.PaymentMethodRef,
		&o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if err := json.Unmarshal(billingJSON, &o.BillingAddress); err != nil {
		return nil, fmt.Errorf("decode billing address: %w", err)
	}
	return &o, nil
}

func (r *PostgresOrderRepository) Items(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, COALESCE(variant_id, ''), snapshot,
		       quantity, COALESCE(size, ''), COALESCE(color, ''), unit_price, total_price
		FROM order_items WHERE order_id = $1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var it order.Item
		var snapshotJSON []byte
		if err := rows.Scan(&it.OrderID, &it.ProductID, &it.VariantID, &snapshotJSON,
			&it.Quantity, &it.Size, &it.Color, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if err := json.Unmarshal(snapshotJSON, &it.Snapshot); err != nil {
			return nil, fmt.Errorf("decode item snapshot: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PostgresOrderRepository) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, status, payment_status,
		       subtotal, tax, shipping, discount, total,
		       shipping_address, billing_address, payment_method_ref,
		       created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		var o order.Order
		var shippingJSON, billingJSON []byte
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentStatus,
			&o.Subtotal, &o.Tax, &o.Shipping, &o.Discount, &o.Total,
			&shippingJSON, &billingJSON, &o.PaymentMethodRef,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
		if err := json.Unmarshal(billingJSON, &o.BillingAddress); err != nil {
			return nil, fmt.Errorf("decode billing address: %w", err)
		}
		orders = append(orders, &o)
	}
	return orders, rows.Err()
}

func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, orderID string, status order.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1
	`, orderID, status, time.Now())
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
