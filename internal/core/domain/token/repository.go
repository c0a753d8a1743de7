package token

import (
	"context"
	"herbarium/internal/core/domain/user"
	"time"
)

type CreateInput struct {
	Value     Value
	UserID    user.ID
	Purpose   Purpose
	CreatedAt time.Time
}

type Repository interface {
	// Create inserts a new record, failing with ErrTokenAlreadyExists on a
	// value collision.
	Create(ctx context.Context, input CreateInput) (Token, error)
	GetByValue(ctx context.Context, value Value) (Token, error)
	// Consume atomically looks the record up by value, verifies the purpose
	// matches and the record has not expired, and deletes it. For a given
	// value, concurrent calls observe at most one success; the rest get
	// ErrTokenDoesNotExist. An expired record is removed and reported as
	// ErrTokenExpired; a live record under a different purpose is left
	// intact and reported as ErrTokenPurposeMismatch.
	Consume(ctx context.Context, value Value, purpose Purpose, now time.Time) (Token, error)
	// DeleteExpired removes records with expires_at before now. It is an
	// optimization only; Consume always re-checks expiry.
	DeleteExpired(ctx context.Context, now time.Time) (count int64, err error)
}
