package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/catalog/internal/core/domain"
)

const (
	priceKeyPrefix        = "price:"
	DefaultChannel        = "catalog:prices"
	DefaultIdempotencyTTL = 24 * time.Hour
)

// publishOnceScript claims the idempotency key and publishes in one step, so
// a change is either claimed and published or neither.
var publishOnceScript = redis.NewScript(`
local key = KEYS[1]
local ttl = tonumber(ARGV[1])
local channel = ARGV[2]
local payload = ARGV[3]

if redis.call('SET', key, 1, 'NX', 'EX', ttl) then
	redis.call('PUBLISH', channel, payload)
	return 1
end

return 0
`)

type RedisAdapter struct {
	client  *redis.Client
	channel string
	ttl     time.Duration
}

func NewRedisAdapter(client *redis.Client, channel string, ttl time.Duration) *RedisAdapter {
	if channel == "" {
		channel = DefaultChannel
	}
	if ttl < time.Second {
		ttl = DefaultIdempotencyTTL
	}
	return &RedisAdapter{client: client, channel: channel, ttl: ttl}
}

func (r *RedisAdapter) Publish(ctx context.Context, change domain.PriceChange) (bool, error) {
	payload, err := json.Marshal(change)
	if err != nil {
		return false, fmt.Errorf("encode price change: %w", err)
	}

	result, err := publishOnceScript.Run(ctx, r.client,
		[]string{PriceKey(change)}, int(r.ttl/time.Second), r.channel, payload).Int()
	if err != nil {
		return false, fmt.Errorf("publish price change: %w", err)
	}

	return result == 1, nil
}

// Subscribe listens on the adapter's channel.
func (r *RedisAdapter) Subscribe(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, r.channel)
}

func (r *RedisAdapter) Channel() string {
	return r.channel
}

// PriceKey is the idempotency key for one version of an item's price.
func PriceKey(change domain.PriceChange) string {
	return priceKeyPrefix + change.ItemID.String() + ":" + strconv.FormatUint(change.Version, 10)
}
