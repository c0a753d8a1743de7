package token

import (
	"fmt"
	e "herbarium/internal/core/domain/errors"
	"herbarium/internal/core/domain/user"
	"time"
)

// Value is an opaque single-use credential authorizing one sensitive
// account action. Values are generated with at least 128 bits of
// cryptographic entropy and are never reused while live.
type Value string

func (v Value) String() string {
	return "***"
}

type Purpose string

const (
	EmailVerification Purpose = "email_verification"
	PasswordReset     Purpose = "password_reset"
)

// Validity periods are fixed per purpose.
const (
	EmailVerificationTTL = 48 * time.Hour
	PasswordResetTTL     = 24 * time.Hour
)

func (p Purpose) TTL() time.Duration {
	switch p {
	case EmailVerification:
		return EmailVerificationTTL
	case PasswordReset:
		return PasswordResetTTL
	}
	panic(e.NewInvalidStateError(fmt.Sprintf("unknown token purpose %q", string(p))))
}

func (p Purpose) IsValid() bool {
	return p == EmailVerification || p == PasswordReset
}

// Token is an immutable record of one pending authorization. It is created
// by the issue service and destroyed either by a successful consume or by
// expiry-driven removal.
type Token struct {
	Value     Value
	UserID    user.ID
	Purpose   Purpose
	CreatedAt time.Time
	ExpiresAt time.Time
}

func New(value Value, userID user.ID, purpose Purpose, createdAt time.Time) Token {
	return Token{
		Value:     value,
		UserID:    userID,
		Purpose:   purpose,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(purpose.TTL()),
	}
}

func (t Token) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
