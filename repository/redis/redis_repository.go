package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	redisclient "github.com/roastline/storefront/cmd/redis"
	"github.com/roastline/storefront/model"
)

// Repository is the cart storage port. Carts live in Redis keyed by user id,
// serialized as a JSON item list.
type Repository interface {
	GetCart(ctx context.Context, userID string) ([]model.CartItem, error)
	SaveCart(ctx context.Context, userID string, items []model.CartItem, ttl time.Duration) error
	DeleteCart(ctx context.Context, userID string) error
}

type redis struct {
}

// NewRepository returns a Redis Repository implementation
func NewRepository() Repository {
	return &redis{}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

func (r *redis) GetCart(ctx context.Context, userID string) ([]model.CartItem, error) {
	client := redisclient.Get()
	if client == nil {
		return nil, nil
	}
	val, err := client.Get(ctx, cartKey(userID)).Result()
	if err != nil {
		if err == goredis.Nil {
			return []model.CartItem{}, nil
		}
		return nil, err
	}

	var items []model.CartItem
	if err := json.Unmarshal([]byte(val), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *redis) SaveCart(ctx context.Context, userID string, items []model.CartItem, ttl time.Duration) error {
	client := redisclient.Get()
	if client == nil {
		return nil
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return client.Set(ctx, cartKey(userID), payload, ttl).Err()
}

func (r *redis) DeleteCart(ctx context.Context, userID string) error {
	client := redisclient.Get()
	if client == nil {
		return nil
	}
	return client.Del(ctx, cartKey(userID)).Err()
}
