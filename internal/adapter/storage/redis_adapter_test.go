package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func getRedisAdapter(t *testing.T) (*RedisAdapter, *redis.Client) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	return NewRedisAdapter(client), client
}

func TestRedis_SetIdempotency(t *testing.T) {
	adapter, client := getRedisAdapter(t)
	defer client.Close()

	ctx := context.Background()
	key := "test-" + uuid.New().String()
	defer client.Del(ctx, idempotencyKeyPrefix+key)

	ok, err := adapter.SetIdempotency(ctx, key)
	if err != nil {
		t.Fatalf("SetIdempotency failed: %v", err)
	}
	if !ok {
		t.Error("first set should succeed")
	}

	ok, err = adapter.SetIdempotency(ctx, key)
	if err != nil {
		t.Fatalf("SetIdempotency failed: %v", err)
	}
	if ok {
		t.Error("second set should report existing key")
	}
}

func TestRedis_RecordAndTotals(t *testing.T) {
	adapter, client := getRedisAdapter(t)
	defer client.Close()

	ctx := context.Background()
	client.Del(ctx, volumeKey, royaltiesKey, feesKey)
	defer client.Del(ctx, volumeKey, royaltiesKey, feesKey)

	if err := adapter.Record(ctx, 1000, 100, 50); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := adapter.Record(ctx, 500, 0, 25); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	totals, err := adapter.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}
	if totals.Volume != 1500 || totals.Royalties != 100 || totals.Fees != 75 {
		t.Errorf("totals = %+v, want {1500 100 75}", totals)
	}
}

func TestRedis_TotalsEmpty(t *testing.T) {
	adapter, client := getRedisAdapter(t)
	defer client.Close()

	ctx := context.Background()
	client.Del(ctx, volumeKey, royaltiesKey, feesKey)

	totals, err := adapter.Totals(ctx)
	if err != nil {
		t.Fatalf("Totals failed: %v", err)
	}
	if totals.Volume != 0 || totals.Royalties != 0 || totals.Fees != 0 {
		t.Errorf("totals = %+v, want zeros", totals)
	}
}
