package service

import (
	"context"
	"fmt"
	"time"

	"github.com/openmkt/marketplace/internal/core/domain"
	"github.com/openmkt/marketplace/internal/port"
)

// List puts an asset up for sale. Only the current owner may list, the
// price must be positive, and an asset with an active listing cannot be
// listed again.
func (s *MarketService) List(ctx context.Context, id domain.AssetID, seller string, price int64) error {
	if err := s.idRules.Validate(id); err != nil {
		return err
	}
	if price <= 0 {
		return domain.ErrInvalidPrice
	}

	return s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		asset, err := tx.GetAsset(ctx, id)
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}
		if asset.Owner != seller {
			return domain.ErrNotAuthorized
		}

		listing, err := tx.GetListing(ctx, id)
		if err != nil {
			return fmt.Errorf("load listing: %w", err)
		}
		if listing != nil && listing.Active {
			return domain.ErrAlreadyListed
		}

		return tx.PutListing(ctx, &domain.Listing{
			AssetID:   id,
			Price:     price,
			Seller:    seller,
			Active:    true,
			UpdatedAt: time.Now(),
		})
	})
}

// Delist withdraws an active listing. The cleared row keeps the delisting
// caller in the seller field, with price zeroed and active false.
func (s *MarketService) Delist(ctx context.Context, id domain.AssetID, caller string) error {
	if err := s.idRules.Validate(id); err != nil {
		return err
	}

	return s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		asset, err := tx.GetAsset(ctx, id)
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}
		if asset.Owner != caller {
			return domain.ErrNotAuthorized
		}

		listing, err := tx.GetListing(ctx, id)
		if err != nil {
			return fmt.Errorf("load listing: %w", err)
		}
		if listing == nil || !listing.Active {
			return domain.ErrNotListed
		}

		return tx.PutListing(ctx, &domain.Listing{
			AssetID:   id,
			Price:     0,
			Seller:    caller,
			Active:    false,
			UpdatedAt: time.Now(),
		})
	})
}
