package deleteexpiredtokens

import (
	"context"
	e "herbarium/internal/core/domain/errors"
	"herbarium/internal/core/domain/logging"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/services"
	"time"
)

// Periodic sweep of expired records. Purely an optimization: consumption
// re-checks expiry, so the sweep never races a consume incorrectly.
type Input struct{}

type Result struct {
	DeletedCount int64
}

type service struct {
	log             logging.Logger
	tokenRepository token.Repository
	now             func() time.Time
}

func New(
	log logging.Logger,
	tokenRepository token.Repository,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if tokenRepository == nil {
		panic(e.NewNilArgumentError("tokenRepository"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{log: log, tokenRepository: tokenRepository, now: now}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	count, err := s.tokenRepository.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.Error(ctx, "Could not delete expired tokens.", logging.Entry("err", err))
		return result, err
	}
	if count > 0 {
		s.log.Info(ctx, "Expired tokens have been deleted.", logging.Entry("count", count))
	}
	return Result{DeletedCount: count}, nil
}
