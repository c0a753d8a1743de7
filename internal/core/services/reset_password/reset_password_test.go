package resetpassword

import (
	"context"
	"errors"
	c "herbarium/internal/core/domain/common"
	"herbarium/internal/core/domain/logging"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	"herbarium/internal/core/services"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

const (
	EMAIL        = "test@test.test"
	TOKEN_VALUE  = "test-token-value"
	NEW_PASSWORD = "new-password"
)

var Now time.Time = time.Date(2023, 2, 11, 15, 30, 30, 0, time.UTC)

type testSuite struct {
	suite.Suite
	Logger          *logging.FakeLogger
	TokenRepository *token.FakeRepository
	UserRepository  *user.FakeRepository
	PasswordHasher  *user.FakePasswordHasher
	Service         services.Service[Input, Result]
}

func (suite *testSuite) SetupTest() {
	suite.Logger = logging.NewFakeLogger()
	suite.TokenRepository = token.NewFakeRepository()
	suite.UserRepository = user.NewFakeRepository()
	suite.PasswordHasher = user.NewFakePasswordHasher()
	suite.Service = New(
		suite.Logger,
		suite.TokenRepository,
		suite.UserRepository,
		suite.PasswordHasher,
		func() time.Time { return Now },
	)
}

func TestResetPasswordService(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestSuccessPasswordUpdated() {
	u := s.createUser()
	s.issueToken(u.ID, token.PasswordReset, Now)

	result, err := s.Service.Run(
		context.Background(),
		Input{Token: token.Value(TOKEN_VALUE), NewPassword: user.RawPassword(NEW_PASSWORD)},
	)
	s.Nil(err)
	s.Equal(u.ID, result.UserID)

	stored, err := s.UserRepository.GetByID(context.Background(), u.ID)
	s.Nil(err)
	s.True(s.PasswordHasher.ValidatePassword(user.RawPassword(NEW_PASSWORD), stored.PasswordHash))
	// Reset performs no verification transition.
	s.False(stored.IsEmailVerified())
	s.False(stored.IsActive())
}

func (s *testSuite) TestTokenIsSingleUse() {
	u := s.createUser()
	s.issueToken(u.ID, token.PasswordReset, Now)

	_, err := s.Service.Run(
		context.Background(),
		Input{Token: token.Value(TOKEN_VALUE), NewPassword: user.RawPassword(NEW_PASSWORD)},
	)
	s.Nil(err)

	_, err = s.Service.Run(
		context.Background(),
		Input{Token: token.Value(TOKEN_VALUE), NewPassword: user.RawPassword("another-password")},
	)
	s.True(errors.Is(err, token.ErrTokenDoesNotExist))

	stored, err := s.UserRepository.GetByID(context.Background(), u.ID)
	s.Nil(err)
	s.True(s.PasswordHasher.ValidatePassword(user.RawPassword(NEW_PASSWORD), stored.PasswordHash))
}

func (s *testSuite) TestTokenExpired() {
	u := s.createUser()
	s.issueToken(u.ID, token.PasswordReset, Now.Add(-token.PasswordResetTTL-time.Second))

	_, err := s.Service.Run(
		context.Background(),
		Input{Token: token.Value(TOKEN_VALUE), NewPassword: user.RawPassword(NEW_PASSWORD)},
	)
	s.True(errors.Is(err, token.ErrTokenExpired))

	stored, err := s.UserRepository.GetByID(context.Background(), u.ID)
	s.Nil(err)
	s.False(s.PasswordHasher.ValidatePassword(user.RawPassword(NEW_PASSWORD), stored.PasswordHash))
}

func (s *testSuite) TestVerificationTokenRejected() {
	u := s.createUser()
	s.issueToken(u.ID, token.EmailVerification, Now)

	_, err := s.Service.Run(
		context.Background(),
		Input{Token: token.Value(TOKEN_VALUE), NewPassword: user.RawPassword(NEW_PASSWORD)},
	)
	s.True(errors.Is(err, token.ErrTokenPurposeMismatch))
	s.Equal(1, s.TokenRepository.TokenCount())
}

func (s *testSuite) createUser() user.User {
	s.T().Helper()
	hash, err := s.PasswordHasher.HashPassword(user.RawPassword("old-password"))
	if err != nil {
		s.FailNow(err.Error())
	}
	u, err := s.UserRepository.Create(
		context.Background(),
		user.CreateUserInput{
			Email:        c.NewEmail(EMAIL),
			PasswordHash: hash,
			CreatedAt:    Now,
		},
	)
	if err != nil {
		s.FailNow(err.Error())
	}
	return u
}

func (s *testSuite) issueToken(userID user.ID, purpose token.Purpose, createdAt time.Time) {
	s.T().Helper()
	_, err := s.TokenRepository.Create(
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
}
