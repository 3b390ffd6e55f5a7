package services

import "errors"

// Error taxonomy for the progression engine. NotFound and InvalidAmount abort
// the triggering action's transaction; duplicate earned-badge inserts are
// absorbed at the call site and never surface as errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidAmount = errors.New("point amount must be positive")
	ErrRewardGrant   = errors.New("reward grant failed")
)
