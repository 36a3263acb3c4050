package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmkt/marketplace/internal/core/domain"
	"github.com/openmkt/marketplace/internal/port"
)

func TestMemoryAdapter_CommitAppliesAllWrites(t *testing.T) {
	store := NewMemoryAdapter()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(tx port.MarketTx) error {
		require.NoError(t, tx.PutAsset(ctx, &domain.Asset{ID: "a1", Owner: "alice"}))
		require.NoError(t, tx.PutListing(ctx, &domain.Listing{AssetID: "a1", Price: 100, Seller: "alice", Active: true}))
		require.NoError(t, tx.Credit(ctx, "alice", 500))
		return nil
	})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(tx port.MarketTx) error {
		asset, err := tx.GetAsset(ctx, "a1")
		require.NoError(t, err)
		require.NotNil(t, asset)
		assert.Equal(t, "alice", asset.Owner)

		listing, err := tx.GetListing(ctx, "a1")
		require.NoError(t, err)
		require.NotNil(t, listing)
		assert.Equal(t, int64(100), listing.Price)

		balance, err := tx.Balance(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(500), balance)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryAdapter_ErrorRollsBackEverything(t *testing.T) {
	store := NewMemoryAdapter()
	ctx := context.Background()

	require.NoError(t, store.WithinTx(ctx, func(tx port.MarketTx) error {
		return tx.Credit(ctx, "bob", 100)
	}))

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx port.MarketTx) error {
		require.NoError(t, tx.PutAsset(ctx, &domain.Asset{ID: "a1", Owner: "alice"}))
		require.NoError(t, tx.Transfer(ctx, 50, "bob", "alice"))
		require.NoError(t, tx.AppendTrade(ctx, &domain.Trade{ID: "t1", AssetID: "a1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing staged in the failed transaction is visible.
	require.NoError(t, store.WithinTx(ctx, func(tx port.MarketTx) error {
		asset, err := tx.GetAsset(ctx, "a1")
		require.NoError(t, err)
		assert.Nil(t, asset)

		balance, err := tx.Balance(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(100), balance)

		trades, err := tx.TradesByAsset(ctx, "a1")
		require.NoError(t, err)
		assert.Empty(t, trades)
		return nil
	}))
}

func TestMemoryAdapter_ReadsSeeStagedWrites(t *testing.T) {
	store := NewMemoryAdapter()
	ctx := context.Background()

	require.NoError(t, store.WithinTx(ctx, func(tx port.MarketTx) error {
		require.NoError(t, tx.PutAsset(ctx, &domain.Asset{ID: "a1", Owner: "alice"}))

		asset, err := tx.GetAsset(ctx, "a1")
		require.NoError(t, err)
		require.NotNil(t, asset)
		assert.Equal(t, "alice", asset.Owner)

		asset.Owner = "bob"
		require.NoError(t, tx.PutAsset(ctx, asset))

		again, err := tx.GetAsset(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "bob", again.Owner)
		return nil
	}))
}

func TestMemoryAdapter_TransferChecksBalance(t *testing.T) {
	store := NewMemoryAdapter()
	ctx := context.Background()

	require.NoError(t, store.WithinTx(ctx, func(tx port.MarketTx) error {
		return tx.Credit(ctx, "bob", 30)
	}))

	err := store.WithinTx(ctx, func(tx port.MarketTx) error {
		return tx.Transfer(ctx, 31, "bob", "alice")
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	require.NoError(t, store.WithinTx(ctx, func(tx port.MarketTx) error {
		if err := tx.Transfer(ctx, 30, "bob", "alice"); err != nil {
			return err
		}
		// Zero-amount transfers are no-ops.
		return tx.Transfer(ctx, 0, "bob", "alice")
	}))

	require.NoError(t, store.WithinTx(ctx, func(tx port.MarketTx) error {
		bob, _ := tx.Balance(ctx, "bob")
		alice, _ := tx.Balance(ctx, "alice")
		assert.Equal(t, int64(0), bob)
		assert.Equal(t, int64(30), alice)
		return nil
	}))
}

func TestMemoryMetrics(t *testing.T) {
	metrics := NewMemoryMetrics()
	ctx := context.Background()

	require.NoError(t, metrics.Record(ctx, 1000, 100, 50))
	require.NoError(t, metrics.Record(ctx, 500, 0, 25))

	totals, err := metrics.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.MetricsTotals{Volume: 1500, Royalties: 100, Fees: 75}, totals)
}

func TestMemoryCache_SetIdempotency(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	ok, err := cache.SetIdempotency(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.SetIdempotency(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}
