package domain

import (
	"strconv"
	"time"
)

// AssetID is an opaque key naming one non-fungible asset. Depending on
// deployment it is either a bounded string or the decimal form of a bounded
// positive integer; IDRules decides which.
type AssetID string

type IDMode string

const (
	IDModeString  IDMode = "string"
	IDModeNumeric IDMode = "numeric"
)

// IDRules validates asset identifiers before any registry lookup.
type IDRules struct {
	Mode       IDMode
	MaxLength  int   // string mode: maximum identifier length
	MaxNumeric int64 // numeric mode: identifiers are 1..MaxNumeric
}

func DefaultIDRules() IDRules {
	return IDRules{Mode: IDModeString, MaxLength: 100, MaxNumeric: 1_000_000}
}

func (r IDRules) Validate(id AssetID) error {
	if id == "" {
		return ErrInvalidAssetID
	}
	switch r.Mode {
	case IDModeNumeric:
		n, err := strconv.ParseInt(string(id), 10, 64)
		if err != nil || n < 1 || n > r.MaxNumeric {
			return ErrInvalidAssetID
		}
	default:
		if len(id) > r.MaxLength {
			return ErrInvalidAssetID
		}
	}
	return nil
}

// BridgeOrigin records where a bridged asset came from.
type BridgeOrigin struct {
	Chain      string
	ExternalID string
}

const (
	MaxChainNameLength  = 32
	MaxExternalIDLength = 100
)

func (o BridgeOrigin) Validate() error {
	if o.Chain == "" || len(o.Chain) > MaxChainNameLength {
		return ErrInvalidChain
	}
	if o.ExternalID == "" || len(o.ExternalID) > MaxExternalIDLength {
		return ErrInvalidExternalID
	}
	return nil
}

type Asset struct {
	ID        AssetID
	Owner     string
	Origin    *BridgeOrigin // nil unless minted through the bridge
	CreatedAt time.Time
	UpdatedAt time.Time
}
