package domain

import "errors"

// Every error below is a permanent rejection of the requested operation.
// The first failing precondition short-circuits before any state changes,
// so callers never observe a partial result alongside one of these.
var (
	ErrInvalidAssetID      = errors.New("invalid asset identifier")
	ErrAssetAlreadyExists  = errors.New("asset already exists")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrOwnershipMismatch   = errors.New("ownership mismatch")
	ErrNotAuthorized       = errors.New("not authorized")
	ErrInvalidRoyalty      = errors.New("invalid royalty rate")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrAlreadyListed       = errors.New("asset already listed")
	ErrNotListed           = errors.New("asset not listed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateRequest    = errors.New("duplicate request")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidMetadata     = errors.New("invalid metadata")
	ErrMetadataNotFound    = errors.New("metadata not found")
	ErrInvalidChain        = errors.New("invalid chain name")
	ErrInvalidExternalID   = errors.New("invalid external id")
)
