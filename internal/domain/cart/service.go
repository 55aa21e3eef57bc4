package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/example/storefront/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service reconciles a shopper's cart between the guest (Redis) and
// authenticated (Postgres) representations. Every mutation against the
// authenticated repository is followed by a fresh authoritative read rather
// than an optimistic local patch, so the returned cart can never drift from
// what the store holds. Concurrent mutation from multiple devices resolves
// last-write-wins at the repository.
type Service struct {
	users  Repository
	guests Repository
	logger zerolog.Logger
}

func NewService(users, guests Repository, logger zerolog.Logger) *Service {
	return &Service{
		users:  users,
		guests: guests,
		logger: logger.With().Str("component", "cart").Logger(),
	}
}

func (s *Service) repo(sess Session) Repository {
	if sess.Authenticated() {
		return s.users
	}
	return s.guests
}

// Get returns the current cart for the session, empty if none exists.
func (s *Service) Get(ctx context.Context, sess Session) (*Cart, error) {
	if sess.Owner() == "" {
		return nil, ErrEmptySession
	}
	return s.repo(sess).Get(ctx, sess.Owner())
}

// Add merges a product into the cart. If a line with the same identity key
// (product, variant, size, color) already exists its quantity is
// incremented, otherwise a new line is appended.
func (s *Service) Add(ctx context.Context, sess Session, p *catalog.Product, size, color string, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.Get(ctx, sess)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	key := Key{ProductID: p.ID, VariantID: p.VariantID, Size: size, Color: color}
	if i := c.Find(key); i >= 0 {
		c.Items[i].Quantity += qty
		c.Items[i].UpdatedAt = now
	} else {
		c.Items = append(c.Items, LineItem{
			ID:        uuid.New().String(),
			ProductID: p.ID,
			VariantID: p.VariantID,
			Snapshot: ProductSnapshot{
				Name:          p.Name,
				UnitPrice:     p.Price,
				DiscountPrice: p.DiscountPrice,
				ImageURL:      p.ImageURL,
			},
			Quantity:  qty,
			Size:      size,
			Color:     color,
			AddedAt:   now,
			UpdatedAt: now,
		})
	}

	return s.persist(ctx, sess, c)
}

// UpdateQuantity sets a line's quantity. Zero or negative is defined as
// removal.
func (s *Service) UpdateQuantity(ctx context.Context, sess Session, itemID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return s.Remove(ctx, sess, itemID)
	}

	c, err := s.Get(ctx, sess)
	if err != nil {
		return nil, err
	}

	i := c.FindByID(itemID)
	if i < 0 {
		return nil, ErrItemNotFound
	}
	c.Items[i].Quantity = qty
	c.Items[i].UpdatedAt = time.Now()

	return s.persist(ctx, sess, c)
}

// Remove drops a line from the cart.
func (s *Service) Remove(ctx context.Context, sess Session, itemID string) (*Cart, error) {
	c, err := s.Get(ctx, sess)
	if err != nil {
		return nil, err
	}

	i := c.FindByID(itemID)
	if i < 0 {
		return nil, ErrItemNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)

	return s.persist(ctx, sess, c)
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, sess Session) error {
	if sess.Owner() == "" {
		return ErrEmptySession
	}
	if err := s.repo(sess).Delete(ctx, sess.Owner()); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ItemCount returns the summed quantity across lines.
func (s *Service) ItemCount(ctx context.Context, sess Session) (int, error) {
	c, err := s.Get(ctx, sess)
	if err != nil {
		return 0, err
	}
	return c.ItemCount(), nil
}

// Contains reports whether the cart holds a line with the given identity.
func (s *Service) Contains(ctx context.Context, sess Session, key Key) (bool, error) {
	c, err := s.Get(ctx, sess)
	if err != nil {
		return false, err
	}
	return c.Contains(key), nil
}

// MergeOnSignIn runs when a guest session becomes authenticated. The remote
// persisted cart is authoritative and replaces the guest cart outright; the
// guest copy is discarded, not merged line by line.
func (s *Service) MergeOnSignIn(ctx context.Context, guestID, userID string) (*Cart, error) {
	if guestID != "" {
		if err := s.guests.Delete(ctx, guestID); err != nil {
			s.logger.Warn().Err(err).Str("guest_id", guestID).Msg("failed to drop guest cart on sign-in")
		}
	}
	return s.users.Get(ctx, userID)
}

// ClearOnSignOut drops the local guest state entirely so no prior session's
// cart silently carries over.
func (s *Service) ClearOnSignOut(ctx context.Context, guestID string) error {
	if guestID == "" {
		return nil
	}
	return s.guests.Delete(ctx, guestID)
}

// persist saves the cart then re-reads it from the repository so the caller
// sees the authoritative state.
func (s *Service) persist(ctx context.Context, sess Session, c *Cart) (*Cart, error) {
	c.Owner = sess.Owner()
	c.UpdatedAt = time.Now()
	repo := s.repo(sess)
	if err := repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return repo.Get(ctx, sess.Owner())
}
