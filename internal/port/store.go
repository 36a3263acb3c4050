package port

import (
	"context"

	"github.com/openmkt/marketplace/internal/core/domain"
)

// MarketTx is one unit of work over the registries and the value ledger.
// Everything done through a MarketTx is applied atomically by WithinTx:
// either the whole transaction commits or none of it is visible.
//
// Get methods return (nil, nil) when the record does not exist.
type MarketTx interface {
	GetAsset(ctx context.Context, id domain.AssetID) (*domain.Asset, error)
	PutAsset(ctx context.Context, asset *domain.Asset) error

	GetRoyalty(ctx context.Context, id domain.AssetID) (*domain.RoyaltyRecord, error)
	PutRoyalty(ctx context.Context, record *domain.RoyaltyRecord) error

	GetListing(ctx context.Context, id domain.AssetID) (*domain.Listing, error)
	PutListing(ctx context.Context, listing *domain.Listing) error

	GetMetadata(ctx context.Context, id domain.AssetID) (*domain.Metadata, error)
	PutMetadata(ctx context.Context, metadata *domain.Metadata) error

	// Balance reports the account's ledger balance; unknown accounts are 0.
	Balance(ctx context.Context, account string) (int64, error)

	// Credit adds funds to an account, creating it if needed.
	Credit(ctx context.Context, account string, amount int64) error

	// Transfer moves amount from one account to another. It fails with
	// domain.ErrInsufficientBalance without side effects if the source
	// cannot cover it.
	Transfer(ctx context.Context, amount int64, from, to string) error

	AppendTrade(ctx context.Context, trade *domain.Trade) error
	TradesByAsset(ctx context.Context, id domain.AssetID) ([]domain.Trade, error)
}

// MarketStore runs a function inside a transaction. A non-nil error from fn
// rolls everything back and is returned unchanged.
type MarketStore interface {
	WithinTx(ctx context.Context, fn func(tx MarketTx) error) error
}
