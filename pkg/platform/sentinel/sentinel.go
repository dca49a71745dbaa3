package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Record stores and external
// adapters return these (optionally wrapped); engines translate them into
// domain errors or neutral fallbacks.
//
// - ErrNotFound: record does not exist in the store
// - ErrConflict: concurrent write lost an ordering race
// - ErrExpired: token or trusted-device window has lapsed
// - ErrInvalidState: stored value outside its closed set
// - ErrUnavailable: store or provider temporarily unreachable
// - ErrQueueFull: async buffer cannot accept more work
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrQueueFull    = errors.New("queue full")
)
