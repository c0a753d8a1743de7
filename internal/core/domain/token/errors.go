package token

import "errors"

var (
	ErrTokenDoesNotExist    = errors.New("token does not exist")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenPurposeMismatch = errors.New("token purpose mismatch")
	// ErrTokenAlreadyExists signals a value collision on insert. With the
	// generator's entropy it is effectively never observed; the issuer
	// retries internally.
	ErrTokenAlreadyExists = errors.New("token already exists")
	ErrStorageUnavailable = errors.New("token storage unavailable")
)
