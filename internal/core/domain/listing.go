package domain

import "time"

// Listing is a standing offer to sell one asset. At most one listing row
// exists per asset; the Active flag drives the lifecycle
// Absent -> Active -> Inactive -> Active -> ...
//
// When a listing is cleared (delist or sale) the row is kept with price 0,
// active false, and Seller set to the account that caused the clear: the
// delisting owner or the buyer.
type Listing struct {
	AssetID   AssetID
	Price     int64
	Seller    string
	Active    bool
	UpdatedAt time.Time
}
