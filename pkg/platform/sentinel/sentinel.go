package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrAlreadyFinalized: decision slot already consumed (write-once violated)
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: service or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyFinalized = errors.New("already finalized")
	ErrInvalidState     = errors.New("invalid state")
	ErrUnavailable      = errors.New("unavailable")
)
