package domain

import "time"

// Trade is the append-only record of one settled purchase.
type Trade struct {
	ID             string
	AssetID        AssetID
	Seller         string
	Buyer          string
	Price          int64
	Fee            int64
	Royalty        int64
	SellerProceeds int64
	CreatedAt      time.Time
}

// MetricsTotals are the running marketplace aggregates. They only ever
// grow, and only on settled purchases.
type MetricsTotals struct {
	Volume    int64
	Royalties int64
	Fees      int64
}
