package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/storefront/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

// RedisCartRepository is the ephemeral store for anonymous shoppers. Carts
// are JSON blobs under cart:guest:<sessionID> with a TTL, refreshed on
// every write. Signing out deletes the key outright.
type RedisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCartRepository(client *redis.Client, ttl time.Duration) *RedisCartRepository {
	return &RedisCartRepository{client: client, ttl: ttl}
}

func guestKey(owner string) string {
	return "cart:guest:" + owner
}

func (r *RedisCartRepository) Get(ctx context.Context, owner string) (*cart.Cart, error) {
	data, err := r.client.Get(ctx, guestKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &cart.Cart{Owner: owner}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get guest cart: %w", err)
	}

	var c cart.Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode guest cart: %w", err)
	}
	return &c, nil
}

func (r *RedisCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode guest cart: %w", err)
	}
	if err := r.client.Set(ctx, guestKey(c.Owner), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save guest cart: %w", err)
	}
	return nil
}

func (r *RedisCartRepository) Delete(ctx context.Context, owner string) error {
	if err := r.client.Del(ctx, guestKey(owner)).Err(); err != nil {
		return fmt.Errorf("delete guest cart: %w", err)
	}
	return nil
}
