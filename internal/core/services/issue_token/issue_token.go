package issuetoken

import (
	"context"
	"errors"
	"fmt"
	c "herbarium/internal/core/domain/common"
	e "herbarium/internal/core/domain/errors"
	"herbarium/internal/core/domain/logging"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	"herbarium/internal/core/services"
	"time"
)

// Value collisions are effectively impossible with the generator's entropy,
// but the store reports them as retryable, so retry a couple of times before
// giving up.
const createAttempts = 3

type Input struct {
	Email   c.Email
	Purpose token.Purpose
	BaseURL string
}

func (i Input) GetRateLimitKey() string {
	return fmt.Sprintf("issue-token::%s::%s", i.Purpose, i.Email)
}

type Result struct {
	Token token.Token
	User  user.User
}

type service struct {
	log             logging.Logger
	userRepository  user.Repository
	tokenRepository token.Repository
	valueGenerator  token.ValueGenerator
	now             func() time.Time
}

func New(
	log logging.Logger,
	userRepository user.Repository,
	tokenRepository token.Repository,
	valueGenerator token.ValueGenerator,
	now func() time.Time,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if userRepository == nil {
		panic(e.NewNilArgumentError("userRepository"))
	}
	if tokenRepository == nil {
		panic(e.NewNilArgumentError("tokenRepository"))
	}
	if valueGenerator == nil {
		panic(e.NewNilArgumentError("valueGenerator"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:             log,
		userRepository:  userRepository,
		tokenRepository: tokenRepository,
		valueGenerator:  valueGenerator,
		now:             now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	if !input.Purpose.IsValid() {
		return result, e.NewInvalidStateError(fmt.Sprintf("invalid token purpose %q", string(input.Purpose)))
	}

	u, err := s.userRepository.GetByEmail(ctx, input.Email)
	if errors.Is(err, context.Canceled) {
		return result, err
	}
	if errors.Is(err, user.ErrUserDoesNotExist) {
		s.log.Info(ctx, "User not found for token issuance.", logging.Entry("email", input.Email))
		return result, err
	}
	if err != nil {
		s.log.Error(
			ctx,
			"Could not get user for token issuance.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
		return result, err
	}

	var t token.Token
	for attempt := 1; ; attempt++ {
		t, err = s.tokenRepository.Create(ctx, token.CreateInput{
			Value:     s.valueGenerator.GenerateTokenValue(),
			UserID:    u.ID,
			Purpose:   input.Purpose,
			CreatedAt: s.now(),
		})
		if err == nil {
			break
		}
		if errors.Is(err, token.ErrTokenAlreadyExists) && attempt < createAttempts {
			s.log.Warning(
				ctx,
				"Token value collision, retrying with a fresh value.",
				logging.Entry("userID", u.ID),
				logging.Entry("purpose", input.Purpose),
				logging.Entry("attempt", attempt),
			)
			continue
		}
		s.log.Error(
			ctx,
			"Could not persist token.",
			logging.Entry("userID", u.ID),
			logging.Entry("purpose", input.Purpose),
			logging.Entry("err", err),
		)
		return result, err
	}

	s.log.Info(
		ctx,
		"Token has been issued.",
		logging.Entry("userID", u.ID),
		logging.Entry("purpose", t.Purpose),
		logging.Entry("expiresAt", t.ExpiresAt),
	)
	return Result{Token: t, User: u}, nil
}
