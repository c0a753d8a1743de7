package verifyemail

import (
	"context"
	"errors"
	c "herbarium/internal/core/domain/common"
	"herbarium/internal/core/domain/logging"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	"herbarium/internal/core/services"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	EMAIL       = "test@test.test"
	TOKEN_VALUE = "test-token-value"
)

var Now time.Time = time.Date(2023, 2, 11, 15, 30, 30, 0, time.UTC)

type testSuite struct {
	suite.Suite
	Logger          *logging.FakeLogger
	TokenRepository *token.FakeRepository
	UserRepository  *user.FakeRepository
	Service         services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.TokenRepository = token.NewFakeRepository()
	suite.UserRepository = user.NewFakeRepository()
	suite.Service = New(
		suite.Logger,
		suite.TokenRepository,
		suite.UserRepository,
		func() time.Time { return Now },
	)
}

func TestVerifyEmailService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestSuccessUserVerifiedAndActivated() {
	u := s.createUser()
	s.issueToken(u.ID, token.EmailVerification, Now)

	result, err := s.Service.Run(context.Background(), Input{Token: token.Value(TOKEN_VALUE)})
	s.Nil(err)
	s.Equal(u.ID, result.User.ID)
	s.True(result.User.IsEmailVerified())
	s.True(result.User.IsActive())

	stored, err := s.UserRepository.GetByID(context.Background(), u.ID)
	s.Nil(err)
	s.True(stored.IsEmailVerified())
	s.True(stored.IsActive())
}

func (s *testSuite) TestTokenConsumedExactlyOnce() {
	u := s.createUser()
	s.issueToken(u.ID, token.EmailVerification, Now)

	_, err := s.Service.Run(context.Background(), Input{Token: token.Value(TOKEN_VALUE)})
	s.Nil(err)

	_, err = s.Service.Run(context.Background(), Input{Token: token.Value(TOKEN_VALUE)})
	s.True(errors.Is(err, token.ErrTokenDoesNotExist))
}

func (s *testSuite) TestTokenNeverIssued() {
	s.createUser()

	_, err := s.Service.Run(context.Background(), Input{Token: token.Value("never-issued")})
	s.True(errors.Is(err, token.ErrTokenDoesNotExist))
}

func (s *testSuite) TestTokenExpired() {
	u := s.createUser()
	s.issueToken(u.ID, token.EmailVerification, Now.Add(-token.EmailVerificationTTL-time.Second))

	_, err := s.Service.Run(context.Background(), Input{Token: token.Value(TOKEN_VALUE)})
	s.True(errors.Is(err, token.ErrTokenExpired))

	// The expired record is gone; a retry reports plain absence.
	_, err = s.Service.Run(context.Background(), Input{Token: token.Value(TOKEN_VALUE)})
	s.True(errors.Is(err, token.ErrTokenDoesNotExist))

	stored, err := s.UserRepository.GetByID(context.Background(), u.ID)
	s.Nil(err)
	s.False(stored.IsEmailVerified())
	s.False(stored.IsActive())
}

func (s *testSuite) TestPurposeMismatchLeavesTokenLive() {
	u := s.createUser()
	s.issueToken(u.ID, token.PasswordReset, Now)

	_, err := s.Service.Run(context.Background(), Input{Token: token.Value(TOKEN_VALUE)})
	s.True(errors.Is(err, token.ErrTokenPurposeMismatch))

	// Still consumable under the right purpose.
	t, err := s.TokenRepository.Consume(
		context.Background(),
		token.Value(TOKEN_VALUE),
		token.PasswordReset,
		Now,
	)
	s.Nil(err)
	s.Equal(u.ID, t.UserID)
}

func (s *testSuite) TestConcurrentValidationHasSingleWinner() {
	u := s.createUser()
	s.issueToken(u.ID, token.EmailVerification, Now)

	concurrency := 20
	errs := make([]error, concurrency)
	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		i := i
		go func() {
			defer wg.Done()
			_, errs[i] = s.Service.Run(context.Background(), Input{Token: token.Value(TOKEN_VALUE)})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			s.True(errors.Is(err, token.ErrTokenDoesNotExist))
		}
	}
	s.Equal(1, succeeded)
}

func (s *testSuite) TestVerificationIsIdempotentForAlreadyVerifiedUser() {
	u := s.createUser()
	verifiedAt := Now.Add(-time.Hour)
	_, err := s.UserRepository.MarkEmailVerified(context.Background(), u.ID, verifiedAt)
	s.Nil(err)

	s.issueToken(u.ID, token.EmailVerification, Now)
	result, err := s.Service.Run(context.Background(), Input{Token: token.Value(TOKEN_VALUE)})
	s.Nil(err)
	s.Equal(verifiedAt, result.User.EmailVerifiedAt.Value)
}

func (s *testSuite) createUser() user.User {
	s.T().Helper()
	u, err := s.UserRepository.Create(
		context.Background(),
		user.CreateUserInput{
			Email:        c.NewEmail(EMAIL),
			PasswordHash: user.PasswordHash("test-password-hash"),
			CreatedAt:    Now,
		},
	)
	if err != nil {
		s.FailNow(err.Error())
	}
	return u
}

func (s *testSuite) issueToken(userID user.ID, purpose token.Purpose, createdAt time.Time) token.Token {
	s.T().Helper()
	t, err := s.TokenRepository.Create(
		context.Background(),
		token.CreateInput{
			Value:     token.Value(TOKEN_VALUE),
			UserID:    userID,
			Purpose:   purpose,
			CreatedAt: createdAt,
		},
	)
	if err != nil {
		s.FailNow(err.Error())
	}
	return t
}
