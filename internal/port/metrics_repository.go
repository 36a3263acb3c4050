package port

import (
	"context"

	"github.com/openmkt/marketplace/internal/core/domain"
)

// MetricsRepository accumulates marketplace aggregates. It is injected into
// the settlement engine and only written after a purchase has committed.
type MetricsRepository interface {
	Record(ctx context.Context, volume, royalty, fee int64) error
	Totals(ctx context.Context) (domain.MetricsTotals, error)
}
