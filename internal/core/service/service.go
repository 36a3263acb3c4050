package service

import (
	"github.com/rs/zerolog"

	"github.com/openmkt/marketplace/internal/core/domain"
	"github.com/openmkt/marketplace/internal/port"
)

// MarketService holds the asset, royalty and listing registries plus the
// settlement engine. All state lives behind the store; every public
// operation is one store transaction.
type MarketService struct {
	store   port.MarketStore
	cache   port.CacheRepository
	metrics port.MetricsRepository
	logger  zerolog.Logger

	adminAccount string
	idRules      domain.IDRules

	tradeQueue chan domain.Trade
}

type Options struct {
	// AdminAccount receives the marketplace fee on every settlement.
	AdminAccount string
	IDRules      domain.IDRules
	QueueSize    int
}

func NewMarketService(store port.MarketStore, cache port.CacheRepository, metrics port.MetricsRepository, logger zerolog.Logger, opts Options) *MarketService {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.AdminAccount == "" {
		opts.AdminAccount = "marketplace-admin"
	}
	if opts.IDRules == (domain.IDRules{}) {
		opts.IDRules = domain.DefaultIDRules()
	}

	return &MarketService{
		store:        store,
		cache:        cache,
		metrics:      metrics,
		logger:       logger,
		adminAccount: opts.AdminAccount,
		idRules:      opts.IDRules,
		tradeQueue:   make(chan domain.Trade, opts.QueueSize),
	}
}

// TradeEvents exposes settled trades for the history workers.
func (s *MarketService) TradeEvents() <-chan domain.Trade {
	return s.tradeQueue
}

func (s *MarketService) Close() {
	close(s.tradeQueue)
}
