package token

import (
	"context"
	c "herbarium/internal/core/domain/common"
)

type SendInput struct {
	Purpose Purpose
	Email   c.Email
	Token   Value
	BaseURL string
}

// Sender delivers the token link to the account's contact address.
// Implementations are expected to be cheap to call from the issue path;
// actual delivery may happen out of band.
type Sender interface {
	SendToken(ctx context.Context, input SendInput) error
}
