package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/openmkt/marketplace/internal/core/domain"
	"github.com/openmkt/marketplace/internal/port"
)

// MemoryAdapter is an in-memory MarketStore. Writes made inside a
// transaction are staged in an overlay and only folded into the base maps
// on commit, so a failed transaction leaves no trace. A single mutex
// serializes transactions, which is the execution model the core assumes.
type MemoryAdapter struct {
	mu        sync.Mutex
	assets    map[domain.AssetID]domain.Asset
	royalties map[domain.AssetID]domain.RoyaltyRecord
	listings  map[domain.AssetID]domain.Listing
	metadata  map[domain.AssetID]domain.Metadata
	balances  map[string]int64
	trades    []domain.Trade
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		assets:    make(map[domain.AssetID]domain.Asset),
		royalties: make(map[domain.AssetID]domain.RoyaltyRecord),
		listings:  make(map[domain.AssetID]domain.Listing),
		metadata:  make(map[domain.AssetID]domain.Metadata),
		balances:  make(map[string]int64),
	}
}

func (m *MemoryAdapter) WithinTx(ctx context.Context, fn func(tx port.MarketTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memoryTx{
		store:     m,
		assets:    make(map[domain.AssetID]domain.Asset),
		royalties: make(map[domain.AssetID]domain.RoyaltyRecord),
		listings:  make(map[domain.AssetID]domain.Listing),
		metadata:  make(map[domain.AssetID]domain.Metadata),
		balances:  make(map[string]int64),
	}

	if err := fn(tx); err != nil {
		return err
	}

	tx.apply()
	return nil
}

type memoryTx struct {
	store     *MemoryAdapter
	assets    map[domain.AssetID]domain.Asset
	royalties map[domain.AssetID]domain.RoyaltyRecord
	listings  map[domain.AssetID]domain.Listing
	metadata  map[domain.AssetID]domain.Metadata
	balances  map[string]int64
	trades    []domain.Trade
}

func (t *memoryTx) apply() {
	for id, asset := range t.assets {
		t.store.assets[id] = asset
	}
	for id, record := range t.royalties {
		t.store.royalties[id] = record
	}
	for id, listing := range t.listings {
		t.store.listings[id] = listing
	}
	for id, md := range t.metadata {
		t.store.metadata[id] = md
	}
	for account, balance := range t.balances {
		t.store.balances[account] = balance
	}
	t.store.trades = append(t.store.trades, t.trades...)
}

func (t *memoryTx) GetAsset(ctx context.Context, id domain.AssetID) (*domain.Asset, error) {
	if asset, ok := t.assets[id]; ok {
		return &asset, nil
	}
	if asset, ok := t.store.assets[id]; ok {
		return &asset, nil
	}
	return nil, nil
}

func (t *memoryTx) PutAsset(ctx context.Context, asset *domain.Asset) error {
	t.assets[asset.ID] = *asset
	return nil
}

func (t *memoryTx) GetRoyalty(ctx context.Context, id domain.AssetID) (*domain.RoyaltyRecord, error) {
	if record, ok := t.royalties[id]; ok {
		return &record, nil
	}
	if record, ok := t.store.royalties[id]; ok {
		return &record, nil
	}
	return nil, nil
}

func (t *memoryTx) PutRoyalty(ctx context.Context, record *domain.RoyaltyRecord) error {
	t.royalties[record.AssetID] = *record
	return nil
}

func (t *memoryTx) GetListing(ctx context.Context, id domain.AssetID) (*domain.Listing, error) {
	if listing, ok := t.listings[id]; ok {
		return &listing, nil
	}
	if listing, ok := t.store.listings[id]; ok {
		return &listing, nil
	}
	return nil, nil
}

func (t *memoryTx) PutListing(ctx context.Context, listing *domain.Listing) error {
	t.listings[listing.AssetID] = *listing
	return nil
}

func (t *memoryTx) GetMetadata(ctx context.Context, id domain.AssetID) (*domain.Metadata, error) {
	if md, ok := t.metadata[id]; ok {
		return &md, nil
	}
	if md, ok := t.store.metadata[id]; ok {
		return &md, nil
	}
	return nil, nil
}

func (t *memoryTx) PutMetadata(ctx context.Context, metadata *domain.Metadata) error {
	t.metadata[metadata.AssetID] = *metadata
	return nil
}

func (t *memoryTx) balance(account string) int64 {
	if balance, ok := t.balances[account]; ok {
		return balance
	}
	return t.store.balances[account]
}

func (t *memoryTx) Balance(ctx context.Context, account string) (int64, error) {
	return t.balance(account), nil
}

func (t *memoryTx) Credit(ctx context.Context, account string, amount int64) error {
	t.balances[account] = t.balance(account) + amount
	return nil
}

func (t *memoryTx) Transfer(ctx context.Context, amount int64, from, to string) error {
	if amount == 0 {
		return nil
	}
	if t.balance(from) < amount {
		return domain.ErrInsufficientBalance
	}
	t.balances[from] = t.balance(from) - amount
	t.balances[to] = t.balance(to) + amount
	return nil
}

func (t *memoryTx) AppendTrade(ctx context.Context, trade *domain.Trade) error {
	t.trades = append(t.trades, *trade)
	return nil
}

func (t *memoryTx) TradesByAsset(ctx context.Context, id domain.AssetID) ([]domain.Trade, error) {
	var trades []domain.Trade
	for _, trade := range t.store.trades {
		if trade.AssetID == id {
			trades = append(trades, trade)
		}
	}
	for _, trade := range t.trades {
		if trade.AssetID == id {
			trades = append(trades, trade)
		}
	}
	return trades, nil
}

// MemoryCache is an in-memory idempotency key set.
type MemoryCache struct {
	mu   sync.Mutex
	keys map[string]bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{keys: make(map[string]bool)}
}

func (c *MemoryCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.keys[key] {
		return false, nil
	}
	c.keys[key] = true
	return true, nil
}

// MemoryMetrics is an in-memory aggregate accumulator.
type MemoryMetrics struct {
	volume    atomic.Int64
	royalties atomic.Int64
	fees      atomic.Int64
}

func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{}
}

func (m *MemoryMetrics) Record(ctx context.Context, volume, royalty, fee int64) error {
	m.volume.Add(volume)
	m.royalties.Add(royalty)
	m.fees.Add(fee)
	return nil
}

func (m *MemoryMetrics) Totals(ctx context.Context) (domain.MetricsTotals, error) {
	return domain.MetricsTotals{
		Volume:    m.volume.Load(),
		Royalties: m.royalties.Load(),
		Fees:      m.fees.Load(),
	}, nil
}
