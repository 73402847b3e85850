package segsieve

import "github.com/arloliu/segsieve/types"

// Sentinel errors re-exported from the types package so callers can match
// them with errors.Is without importing types.
var (
	ErrInvalidConfig       = types.ErrInvalidConfig
	ErrInvalidRange        = types.ErrInvalidRange
	ErrInvalidGroup        = types.ErrInvalidGroup
	ErrInvalidCacheLevel   = types.ErrInvalidCacheLevel
	ErrTransportRequired   = types.ErrTransportRequired
	ErrCacheSourceRequired = types.ErrCacheSourceRequired
	ErrResourceExhausted   = types.ErrResourceExhausted
	ErrTransferIntegrity   = types.ErrTransferIntegrity
	ErrTransportClosed     = types.ErrTransportClosed
	ErrUnknownPeer         = types.ErrUnknownPeer
)
