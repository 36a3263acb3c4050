package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/openmkt/marketplace/internal/core/domain"
	"github.com/openmkt/marketplace/internal/port"
)

// Purchase settles a sale: it splits the listing price into marketplace
// fee, creator royalty and seller proceeds, moves the three amounts from
// the buyer, reassigns ownership and clears the listing, all inside one
// store transaction. The split uses floor division for fee and royalty and
// gives the subtraction remainder to the seller, so the three parts always
// sum to the price.
//
// requestID is optional; when present, a replayed ID fails with
// ErrDuplicateRequest before any settlement work happens.
func (s *MarketService) Purchase(ctx context.Context, id domain.AssetID, buyer, requestID string) (*domain.Trade, error) {
	if err := s.idRules.Validate(id); err != nil {
		return nil, err
	}
	if buyer == "" {
		return nil, domain.ErrNotAuthorized
	}

	if requestID != "" {
		ok, err := s.cache.SetIdempotency(ctx, "purchase:"+requestID)
		if err != nil {
			return nil, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return nil, domain.ErrDuplicateRequest
		}
	}

	var trade domain.Trade
	err := s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		asset, err := tx.GetAsset(ctx, id)
		if err != nil {
			return fmt.Errorf("load asset: %w", err)
		}
		if asset == nil {
			return domain.ErrAssetNotFound
		}

		listing, err := tx.GetListing(ctx, id)
		if err != nil {
			return fmt.Errorf("load listing: %w", err)
		}
		if listing == nil || !listing.Active {
			return domain.ErrNotListed
		}

		royalty, err := tx.GetRoyalty(ctx, id)
		if err != nil {
			return fmt.Errorf("load royalty: %w", err)
		}
		if royalty == nil {
			return domain.ErrAssetNotFound
		}

		balance, err := tx.Balance(ctx, buyer)
		if err != nil {
			return fmt.Errorf("load balance: %w", err)
		}
		if balance < listing.Price {
			return domain.ErrInsufficientBalance
		}

		split := domain.ComputeSplit(listing.Price, royalty.Rate)

		if err := tx.Transfer(ctx, split.Fee, buyer, s.adminAccount); err != nil {
			return fmt.Errorf("fee transfer: %w", err)
		}
		if err := tx.Transfer(ctx, split.Royalty, buyer, royalty.Creator); err != nil {
			return fmt.Errorf("royalty transfer: %w", err)
		}
		if err := tx.Transfer(ctx, split.SellerProceeds, buyer, asset.Owner); err != nil {
			return fmt.Errorf("proceeds transfer: %w", err)
		}

		seller := asset.Owner
		now := time.Now()

		asset.Owner = buyer
		asset.UpdatedAt = now
		if err := tx.PutAsset(ctx, asset); err != nil {
			return fmt.Errorf("transfer ownership: %w", err)
		}

		// Cleared listing keeps the buyer in the seller field, matching
		// the delist convention.
		if err := tx.PutListing(ctx, &domain.Listing{
			AssetID:   id,
			Price:     0,
			Seller:    buyer,
			Active:    false,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("clear listing: %w", err)
		}

		trade = domain.Trade{
			ID:             uuid.New().String(),
			AssetID:        id,
			Seller:         seller,
			Buyer:          buyer,
			Price:          listing.Price,
			Fee:            split.Fee,
			Royalty:        split.Royalty,
			SellerProceeds: split.SellerProceeds,
			CreatedAt:      now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The purchase is committed; metrics and history are reporting-only
	// and must not unwind it.
	if err := s.metrics.Record(ctx, trade.Price, trade.Royalty, trade.Fee); err != nil {
		s.logger.Error().Err(err).Str("trade_id", trade.ID).Msg("failed to record metrics")
	}

	s.tradeQueue <- trade

	return &trade, nil
}
