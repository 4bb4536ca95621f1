package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/domain"
	"github.com/llmndev/perfume-storefront/internal/domains/wishlist/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps each wishlist in two keys: a hash of product id to item
// JSON and a sorted set ordering product ids by the time they were added.
type Repository struct {
	client goredis.UniversalClient
	prefix string
}

// NewRepository wires a Redis-backed repository. Caller manages the client lifecycle.
func NewRepository(client goredis.UniversalClient) *Repository {
	return &Repository{client: client, prefix: "wishlist"}
}

type itemPayload struct {
	Name     string    `json:"name"`
	Price    float64   `json:"price"`
	ImageURL string    `json:"imageUrl,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
}

func (r *Repository) Add(ctx context.Context, userID int64, item domain.Item) (bool, error) {
	if err := r.ensureClient(); err != nil {
		return false, err
	}
	raw, err := json.Marshal(itemPayload{Name: item.Name, Price: item.Price, ImageURL: item.ImageURL, AddedAt: item.AddedAt})
	if err != nil {
		return false, fmt.Errorf("encode wishlist item: %w", err)
	}
	field := strconv.FormatInt(item.ProductID, 10)
	var inserted *goredis.BoolCmd
	_, err = r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		inserted = pipe.HSetNX(ctx, r.itemsKey(userID), field, raw)
		pipe.ZAddNX(ctx, r.orderKey(userID), goredis.Z{Score: float64(item.AddedAt.UnixNano()), Member: field})
		return nil
	})
	if err != nil {
		return false, err
	}
	return inserted.Val(), nil
}

func (r *Repository) Remove(ctx context.Context, userID, productID int64) (bool, error) {
	if err := r.ensureClient(); err != nil {
		return false, err
	}
	field := strconv.FormatInt(productID, 10)
	var deleted *goredis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		deleted = pipe.HDel(ctx, r.itemsKey(userID), field)
		pipe.ZRem(ctx, r.orderKey(userID), field)
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted.Val() > 0, nil
}

// toggleScript flips membership server side so concurrent toggles cannot both add
// or both remove. KEYS: items hash, order zset. ARGV: field, payload, score.
var toggleScript = goredis.NewScript(`
if redis.call('HDEL', KEYS[1], ARGV[1]) == 1 then
	redis.call('ZREM', KEYS[2], ARGV[1])
	return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])
return 1
`)

func (r *Repository) Toggle(ctx context.Context, userID int64, item domain.Item) (bool, error) {
	if err := r.ensureClient(); err != nil {
		return false, err
	}
	raw, err := json.Marshal(itemPayload{Name: item.Name, Price: item.Price, ImageURL: item.ImageURL, AddedAt: item.AddedAt})
	if err != nil {
		return false, fmt.Errorf("encode wishlist item: %w", err)
	}
	field := strconv.FormatInt(item.ProductID, 10)
	added, err := toggleScript.Run(ctx, r.client,
		[]string{r.itemsKey(userID), r.orderKey(userID)},
		field, string(raw), item.AddedAt.UnixNano(),
	).Int()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

func (r *Repository) List(ctx context.Context, userID int64) ([]domain.Item, error) {
	if err := r.ensureClient(); err != nil {
		return nil, err
	}
	fields, err := r.client.ZRange(ctx, r.orderKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return []domain.Item{}, nil
	}
	values, err := r.client.HMGet(ctx, r.itemsKey(userID), fields...).Result()
	if err != nil {
		return nil, err
	}
	items := make([]domain.Item, 0, len(fields))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// order entry without a payload; skipped until the next write repairs it
			continue
		}
		item, err := decodeItem(fields[i], raw)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) Contains(ctx context.Context, userID int64, productIDs []int64) (map[int64]bool, error) {
	if err := r.ensureClient(); err != nil {
		return nil, err
	}
	present := make(map[int64]bool, len(productIDs))
	if len(productIDs) == 0 {
		return present, nil
	}
	fields := make([]string, len(productIDs))
	for i, id := range productIDs {
		fields[i] = strconv.FormatInt(id, 10)
	}
	values, err := r.client.HMGet(ctx, r.itemsKey(userID), fields...).Result()
	if err != nil {
		return nil, err
	}
	for i, id := range productIDs {
		present[id] = values[i] != nil
	}
	return present, nil
}

func (r *Repository) Clear(ctx context.Context, userID int64) error {
	if err := r.ensureClient(); err != nil {
		return err
	}
	return r.client.Del(ctx, r.itemsKey(userID), r.orderKey(userID)).Err()
}

func (r *Repository) itemsKey(userID int64) string {
	return fmt.Sprintf("%s:%d:items", r.prefix, userID)
}

func (r *Repository) orderKey(userID int64) string {
	return fmt.Sprintf("%s:%d:order", r.prefix, userID)
}

func (r *Repository) ensureClient() error {
	if r == nil || r.client == nil {
		return errors.New("redis wishlist repository not configured")
	}
	return nil
}

func decodeItem(field, raw string) (domain.Item, error) {
	productID, err := strconv.ParseInt(field, 10, 64)
	if err != nil {
		return domain.Item{}, fmt.Errorf("decode wishlist product id %q: %w", field, err)
	}
	var payload itemPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return domain.Item{}, fmt.Errorf("decode wishlist item %d: %w", productID, err)
	}
	return domain.Item{
		ProductID: productID,
		Name:      payload.Name,
		Price:     payload.Price,
		ImageURL:  payload.ImageURL,
		AddedAt:   payload.AddedAt,
	}, nil
}
