package model

import "errors"

// Failure categories for unit-level operations. Every failure leaves state
// untouched; callers match with errors.Is and show the wrapped reason.
var (
	ErrInvalidTarget    = errors.New("invalid target")
	ErrOnCooldown       = errors.New("ability on cooldown")
	ErrAlreadyUsed      = errors.New("already used this turn")
	ErrInvalidItemIndex = errors.New("invalid item index")
	ErrNotFound         = errors.New("not found")
)
