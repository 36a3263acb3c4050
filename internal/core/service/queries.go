package service

import (
	"context"
	"fmt"

	"github.com/openmkt/marketplace/internal/core/domain"
	"github.com/openmkt/marketplace/internal/port"
)

// Read-only query surface. Each query validates the identifier before any
// lookup, so a malformed id reports ErrInvalidAssetID rather than a
// not-found condition.

func (s *MarketService) GetAsset(ctx context.Context, id domain.AssetID) (*domain.Asset, error) {
	if err := s.idRules.Validate(id); err != nil {
		return nil, err
	}

	var asset *domain.Asset
	err := s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		var err error
		asset, err = tx.GetAsset(ctx, id)
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *MarketService) GetOwner(ctx context.Context, id domain.AssetID) (string, error) {
	asset, err := s.GetAsset(ctx, id)
	if err != nil {
		return "", err
	}
	return asset.Owner, nil
}

// IsOwner reports whether caller currently owns the asset.
func (s *MarketService) IsOwner(ctx context.Context, id domain.AssetID, caller string) (bool, error) {
	owner, err := s.GetOwner(ctx, id)
	if err != nil {
		return false, err
	}
	return owner == caller, nil
}

func (s *MarketService) GetListing(ctx context.Context, id domain.AssetID) (*domain.Listing, error) {
	if err := s.idRules.Validate(id); err != nil {
		return nil, err
	}

	var listing *domain.Listing
	err := s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		var err error
		listing, err = tx.GetListing(ctx, id)
		if err != nil {
			return fmt.Errorf("load listing: %w", err)
		}
		if listing == nil {
			return domain.ErrNotListed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *MarketService) GetRoyalty(ctx context.Context, id domain.AssetID) (*domain.RoyaltyRecord, error) {
	if err := s.idRules.Validate(id); err != nil {
		return nil, err
	}

	var record *domain.RoyaltyRecord
	err := s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		var err error
		record, err = tx.GetRoyalty(ctx, id)
		if err != nil {
			return fmt.Errorf("load royalty: %w", err)
		}
		if record == nil {
			return domain.ErrAssetNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *MarketService) GetMetadata(ctx context.Context, id domain.AssetID) (*domain.Metadata, error) {
	if err := s.idRules.Validate(id); err != nil {
		return nil, err
	}

	var md *domain.Metadata
	err := s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		asset, err := tx.GetAsset(ctx, id)
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}
		md, err = tx.GetMetadata(ctx, id)
		if err != nil {
			return fmt.Errorf("load metadata: %w", err)
		}
		if md == nil {
			return domain.ErrMetadataNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return md, nil
}

func (s *MarketService) TradesByAsset(ctx context.Context, id domain.AssetID) ([]domain.Trade, error) {
	if err := s.idRules.Validate(id); err != nil {
		return nil, err
	}

	var trades []domain.Trade
	err := s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		var err error
		trades, err = tx.TradesByAsset(ctx, id)
		return err
	})
	return trades, err
}

func (s *MarketService) MetricsTotals(ctx context.Context) (domain.MetricsTotals, error) {
	return s.metrics.Totals(ctx)
}
