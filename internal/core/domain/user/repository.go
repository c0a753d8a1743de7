package user

import (
	"context"
	c "herbarium/internal/core/domain/common"
	"time"
)

type CreateUserInput struct {
	Email        c.Email
	PasswordHash PasswordHash
	CreatedAt    time.Time
}

type Repository interface {
	Create(ctx context.Context, input CreateUserInput) (User, error)
	GetByID(ctx context.Context, id ID) (User, error)
	GetByEmail(ctx context.Context, email c.Email) (User, error)
	// MarkEmailVerified sets both the verified and the activated timestamps.
	// The transition is idempotent; a second call leaves the original
	// timestamps in place.
	MarkEmailVerified(ctx context.Context, id ID, at time.Time) (User, error)
	SetPassword(ctx context.Context, id ID, password PasswordHash) error
}
