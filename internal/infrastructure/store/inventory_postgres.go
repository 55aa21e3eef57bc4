package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/storefront/internal/domain/inventory"
)

// PostgresInventoryStore reads and decrements stock counts. The decrement is
// one conditional UPDATE so two concurrent checkouts racing for the last
// unit serialize at the row: exactly one succeeds, the other is rejected
// without the count ever going negative.
type PostgresInventoryStore struct {
	db *sql.DB
}

func NewPostgresInventoryStore(db *sql.DB) *PostgresInventoryStore {
	return &PostgresInventoryStore{db: db}
}

func (s *PostgresInventoryStore) Stock(ctx context.Context, ref inventory.Ref) (int, error) {
	var stock int
	err := s.db.QueryRowContext(ctx, `
		SELECT stock FROM inventory WHERE id = $1
	`, ref.ID()).Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, inventory.ErrNotTracked
	}
	if err != nil {
		return 0, fmt.Errorf("read stock: %w", err)
	}
	return stock, nil
}

func (s *PostgresInventoryStore) Decrement(ctx context.Context, ref inventory.Ref, qty int) error {
	if qty <= 0 {
		return inventory.ErrInvalidQuantity
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE inventory SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`, ref.ID(), qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if n == 0 {
		// Either the row is missing or stock < qty; report what remains.
		available, err := s.Stock(ctx, ref)
		if err != nil {
			return err
		}
		return &inventory.InsufficientStockError{
			Ref:       ref,
			Requested: qty,
			Available: available,
		}
	}
	return nil
}
