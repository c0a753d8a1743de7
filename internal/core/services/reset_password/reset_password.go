package resetpassword

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
	Token       token.Value
	NewPassword user.RawPassword
}

type Result struct {
	UserID user.ID
}

type service struct {
	log             logging.Logger
	tokenRepository token.Repository
	userRepository  user.Repository
	passwordHasher  user.PasswordHasher
	now             func() time.Time
}

func New(
	log logging.Logger,
	tokenRepository token.Repository,
	userRepository user.Repository,
	passwordHasher user.PasswordHasher,
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
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:             log,
		tokenRepository: tokenRepository,
		userRepository:  userRepository,
		passwordHasher:  passwordHasher,
		now:             now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	t, err := s.tokenRepository.Consume(ctx, input.Token, token.PasswordReset, s.now())
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, token.ErrTokenDoesNotExist) ||
		errors.Is(err, token.ErrTokenExpired) ||
		errors.Is(err, token.ErrTokenPurposeMismatch) {
		s.log.Info(ctx, "Password reset token rejected.", logging.Entry("reason", err))
		return result, err
	}
	if err != nil {
		s.log.Error(ctx, "Could not consume password reset token.", logging.Entry("err", err))
		return result, err
	}

	newPasswordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		s.log.Error(ctx, "Could not hash new password.", logging.Entry("err", err))
		return result, err
	}

	err = s.userRepository.SetPassword(ctx, t.UserID, newPasswordHash)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		s.log.Info(
			ctx,
			"Could not update password, user does not exist.",
			logging.Entry("userID", t.UserID),
		)
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not update user password.",
			logging.Entry("userID", t.UserID),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(ctx, "New password has been successfully set.", logging.Entry("userID", t.UserID))
	return Result{UserID: t.UserID}, nil
}
