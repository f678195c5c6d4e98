package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Registry clients, cache stores and
// other infrastructure layers return these (optionally wrapped) so the
// transformers can translate them into per-record decisions.
//
// These represent factual states about upstream resources, not validation
// failures:
// - ErrNotFound: the upstream explicitly reports the entity does not exist
// - ErrUnavailable: network/service failure reaching an upstream or backing store
// - ErrInvalidState: entity or payload in a shape the pipeline cannot use
//
// NotFound and Unavailable are deliberately distinct: callers fall back the
// same way but the two are counted and logged separately.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
