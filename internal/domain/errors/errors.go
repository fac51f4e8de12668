package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCompetitionClosed  = errors.New("competition closed")
	ErrSoldOut            = errors.New("competition sold out")
	ErrInvalidQuantity    = errors.New("invalid ticket quantity")
	ErrEmailRequired      = errors.New("billing email required")
	ErrProviderRejected   = errors.New("payment rejected by provider")
)
