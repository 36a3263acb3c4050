package service

import (
	"context"
	"fmt"
	"time"

	"github.com/openmkt/marketplace/internal/core/domain"
	"github.com/openmkt/marketplace/internal/port"
)

type MintParams struct {
	ID          domain.AssetID
	Owner       string
	Creator     string // defaults to Owner
	RoyaltyRate int    // percent, 0..domain.MaxRoyaltyRate
	Metadata    *domain.Metadata
	Origin      *domain.BridgeOrigin // set by ImportBridged only
}

// Mint creates an asset and its permanent royalty record. Every
// precondition is checked before the transaction writes anything, so a
// failed mint leaves no asset, royalty or metadata behind.
func (s *MarketService) Mint(ctx context.Context, params MintParams) (*domain.Asset, error) {
	if err := s.idRules.Validate(params.ID); err != nil {
		return nil, err
	}
	if params.Owner == "" {
		return nil, domain.ErrNotAuthorized
	}
	if err := domain.ValidateRoyaltyRate(params.RoyaltyRate); err != nil {
		return nil, err
	}
	if params.Metadata != nil {
		params.Metadata.AssetID = params.ID
		if err := params.Metadata.Validate(); err != nil {
			return nil, err
		}
	}

	creator := params.Creator
	if creator == "" {
		creator = params.Owner
	}

	var minted *domain.Asset
	err := s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		existing, err := tx.GetAsset(ctx, params.ID)
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}
		if existing != nil {
			return domain.ErrAssetAlreadyExists
		}

		now := time.Now()
		asset := &domain.Asset{
			ID:        params.ID,
			Owner:     params.Owner,
			Origin:    params.Origin,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.PutAsset(ctx, asset); err != nil {
			return fmt.Errorf("store asset: %w", err)
		}

		record := &domain.RoyaltyRecord{
			AssetID: params.ID,
			Creator: creator,
			Rate:    params.RoyaltyRate,
		}
		if err := tx.PutRoyalty(ctx, record); err != nil {
			return fmt.Errorf("store royalty: %w", err)
		}

		if params.Metadata != nil {
			if err := tx.PutMetadata(ctx, params.Metadata); err != nil {
				return fmt.Errorf("store metadata: %w", err)
			}
		}

		minted = asset
		return nil
	})
	if err != nil {
		return nil, err
	}

	return minted, nil
}

// ImportBridged mints an asset established on another chain. Once the
// origin fields validate, it is a normal mint carrying an origin
// annotation.
func (s *MarketService) ImportBridged(ctx context.Context, params MintParams) (*domain.Asset, error) {
	if params.Origin == nil {
		return nil, domain.ErrInvalidChain
	}
	if err := params.Origin.Validate(); err != nil {
		return nil, err
	}
	return s.Mint(ctx, params)
}

// TransferAsset reassigns ownership directly, outside of any sale.
func (s *MarketService) TransferAsset(ctx context.Context, id domain.AssetID, from, to string) error {
	if err := s.idRules.Validate(id); err != nil {
		return err
	}
	if to == "" {
		return domain.ErrNotAuthorized
	}

	return s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		asset, err := tx.GetAsset(ctx, id)
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}
		if asset.Owner != from {
			return domain.ErrOwnershipMismatch
		}

		asset.Owner = to
		asset.UpdatedAt = time.Now()
		return tx.PutAsset(ctx, asset)
	})
}
