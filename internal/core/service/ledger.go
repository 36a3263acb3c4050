package service

import (
	"context"

	"github.com/openmkt/marketplace/internal/core/domain"
	"github.com/openmkt/marketplace/internal/port"
)

// Deposit funds an account on the value ledger.
func (s *MarketService) Deposit(ctx context.Context, account string, amount int64) error {
	if account == "" {
		return domain.ErrNotAuthorized
	}
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}

	return s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		return tx.Credit(ctx, account, amount)
	})
}

// Balance reports an account's ledger balance; unknown accounts are 0.
func (s *MarketService) Balance(ctx context.Context, account string) (int64, error) {
	if account == "" {
		return 0, domain.ErrNotAuthorized
	}

	var balance int64
	err := s.store.WithinTx(ctx, func(tx port.MarketTx) error {
		var err error
		balance, err = tx.Balance(ctx, account)
		return err
	})
	return balance, err
}
