package transaction

import "errors"

// Expected business outcomes. Callers match them with errors.Is; descriptive
// variants wrap one of these.
var (
	// ErrNotFound covers both a missing transaction and one the caller may not
	// act on, so other users' transactions are never revealed.
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid transaction state")
	ErrTransactionLocked = errors.New("transaction locked")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrSelfTrade         = errors.New("cannot buy your own card")
	ErrValidation        = errors.New("validation failed")
)
