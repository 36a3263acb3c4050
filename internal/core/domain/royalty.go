package domain

const (
	// FeeRate is the marketplace fee, in percent of the sale price.
	FeeRate = 5
	// MaxRoyaltyRate caps the per-asset creator royalty, in percent.
	MaxRoyaltyRate = 20
)

// RoyaltyRecord fixes the creator and royalty rate for one asset. It is
// written once at mint time and never updated.
type RoyaltyRecord struct {
	AssetID AssetID
	Creator string
	Rate    int // percent, 0..MaxRoyaltyRate
}

func ValidateRoyaltyRate(rate int) error {
	if rate < 0 || rate > MaxRoyaltyRate {
		return ErrInvalidRoyalty
	}
	return nil
}

// Split is the three-way division of a sale price. Fee and Royalty use
// integer floor division; SellerProceeds is the remainder, so the three
// parts always sum to the price exactly.
type Split struct {
	Fee            int64
	Royalty        int64
	SellerProceeds int64
}

func ComputeSplit(price int64, royaltyRate int) Split {
	fee := price * FeeRate / 100
	royalty := price * int64(royaltyRate) / 100
	return Split{
		Fee:            fee,
		Royalty:        royalty,
		SellerProceeds: price - fee - royalty,
	}
}
