package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openmkt/marketplace/internal/core/domain"
)

const (
	idempotencyKeyPrefix = "idempotency:"
	idempotencyKeyTTL    = 24 * time.Hour

	volumeKey    = "metrics:volume"
	royaltiesKey = "metrics:royalties"
	feesKey      = "metrics:fees"
)

// recordTotalsScript bumps the three aggregate counters in one round trip
// so readers never observe a half-applied purchase.
var recordTotalsScript = redis.NewScript(`
redis.call('INCRBY', KEYS[1], ARGV[1])
redis.call('INCRBY', KEYS[2], ARGV[2])
redis.call('INCRBY', KEYS[3], ARGV[3])
return 1
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, idempotencyKeyPrefix+key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) Record(ctx context.Context, volume, royalty, fee int64) error {
	keys := []string{volumeKey, royaltiesKey, feesKey}
	return recordTotalsScript.Run(ctx, r.client, keys, volume, royalty, fee).Err()
}

func (r *RedisAdapter) Totals(ctx context.Context) (domain.MetricsTotals, error) {
	values, err := r.client.MGet(ctx, volumeKey, royaltiesKey, feesKey).Result()
	if err != nil {
		return domain.MetricsTotals{}, err
	}

	counters := make([]int64, 3)
	for i, value := range values {
		s, ok := value.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return domain.MetricsTotals{}, fmt.Errorf("parse counter %q: %w", s, err)
		}
		counters[i] = n
	}

	return domain.MetricsTotals{
		Volume:    counters[0],
		Royalties: counters[1],
		Fees:      counters[2],
	}, nil
}
