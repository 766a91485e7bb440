package models

import "errors"

// Ошибки инвариантов кошелька.
var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientFunds   = errors.New("insufficient available balance")
	ErrInsufficientPending = errors.New("insufficient pending balance")
)
