package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Key format for a user's cart snapshot.
const keyCart = "cart:%s"

// opTimeout bounds every cache round trip so a slow store never hangs
// the checkout flow; the edge falls back to its local copy instead.
const opTimeout = 5 * time.Second

// Item is one cart line. The snapshot is a convenience copy for the UI;
// nothing in it is trusted when an order commits.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Store persists per-user cart snapshots.
type Store interface {
	// Save overwrites the user's cart snapshot.
	Save(ctx context.Context, userID string, items []Item) error

	// Load returns the user's cart snapshot, or an empty cart when none
	// was saved.
	Load(ctx context.Context, userID string) ([]Item, error)
}

// redisStore implements Store on Redis with a TTL per snapshot.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisClient creates a Redis client for the given address.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// NewStore creates a Redis-backed cart store.
func NewStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "cart-store").Logger(),
	}
}

// Save overwrites the user's cart snapshot.
func (s *redisStore) Save(ctx context.Context, userID string, items []Item) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	body, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	key := fmt.Sprintf(keyCart, userID)
	if err := s.client.Set(ctx, key, body, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to save cart")
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	s.logger.Debug().Str("user_id", userID).Int("item_count", len(items)).Msg("cart saved")
	return nil
}

// Load returns the user's cart snapshot, or an empty cart when none was saved.
func (s *redisStore) Load(ctx context.Context, userID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	key := fmt.Sprintf(keyCart, userID)
	body, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []Item{}, nil
		}
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to load cart")
		return nil, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	var items []Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return items, nil
}
