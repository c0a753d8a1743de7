package verifyemail

import (
	"context"
	"errors"
	e "herbarium/internal/core/domain/errors"
	"herbarium/internal/core/domain/logging"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	"herbarium/internal/core/services"
	"time"
)

type Input struct {
	Token token.Value
}

type Result struct {
	User user.User
}

type service struct {
	log             logging.Logger
	tokenRepository token.Repository
	userRepository  user.Repository
	now             func() time.Time
}

func New(
	log logging.Logger,
	tokenRepository token.Repository,
	userRepository user.Repository,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if tokenRepository == nil {
		panic(e.NewNilArgumentError("tokenRepository"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:             log,
		tokenRepository: tokenRepository,
		userRepository:  userRepository,
		now:             now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	t, err := s.tokenRepository.Consume(ctx, input.Token, token.EmailVerification, s.now())
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, token.ErrTokenDoesNotExist) ||
		errors.Is(err, token.ErrTokenExpired) ||
		errors.Is(err, token.ErrTokenPurposeMismatch) {
		s.log.Info(ctx, "Email verification token rejected.", logging.Entry("reason", err))
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not consume email verification token.",
			logging.Entry("err", err),
		)
		return result, err
	}

	u, err := s.userRepository.MarkEmailVerified(ctx, t.UserID, s.now())
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		s.log.Info(
			ctx,
			"Account no longer exists for a consumed verification token.",
			logging.Entry("userID", t.UserID),
		)
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not mark user email verified.",
			logging.Entry("userID", t.UserID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(
		ctx,
		"User email has been verified, account activated.",
		logging.Entry("userID", u.ID),
	)
	return Result{User: u}, nil
}
