package issuetoken

import (
	"context"
	"errors"
	c "herbarium/internal/core/domain/common"
	"herbarium/internal/core/domain/logging"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenSentAfterIssuance(t *testing.T) {
	logger := logging.NewFakeLogger()
	userRepository := user.NewFakeRepository()
	tokenRepository := token.NewFakeRepository()
	sender := token.NewFakeSender()
	_, err := userRepository.Create(context.Background(), user.CreateUserInput{
		Email:     c.NewEmail(EMAIL),
		CreatedAt: Now,
	})
	require.Nil(t, err)

	service := NewWithTokenSending(
		logger,
		sender,
		New(
			logger,
			userRepository,
			tokenRepository,
			token.NewFakeValueGenerator(TOKEN_VALUE),
			func() time.Time { return Now },
		),
	)

	result, err := service.Run(
		context.Background(),
		Input{Email: c.NewEmail(EMAIL), Purpose: token.PasswordReset, BaseURL: BASE_URL},
	)

	assert := require.New(t)
	assert.Nil(err)
	assert.Equal(1, sender.SentCount())
	sent := sender.LastSent()
	assert.Equal(token.PasswordReset, sent.Purpose)
	assert.Equal(c.NewEmail(EMAIL), sent.Email)
	assert.Equal(result.Token.Value, sent.Token)
	assert.Equal(BASE_URL, sent.BaseURL)
}

func TestSenderErrorDoesNotFailIssuance(t *testing.T) {
	logger := logging.NewFakeLogger()
	userRepository := user.NewFakeRepository()
	tokenRepository := token.NewFakeRepository()
	sender := token.NewFakeSender()
	sender.ReturnError = true
	_, err := userRepository.Create(context.Background(), user.CreateUserInput{
		Email:     c.NewEmail(EMAIL),
		CreatedAt: Now,
	})
	require.Nil(t, err)

	service := NewWithTokenSending(
		logger,
		sender,
		New(
			logger,
			userRepository,
			tokenRepository,
			token.NewFakeValueGenerator(TOKEN_VALUE),
			func() time.Time { return Now },
		),
	)

	result, err := service.Run(
		context.Background(),
		Input{Email: c.NewEmail(EMAIL), Purpose: token.EmailVerification, BaseURL: BASE_URL},
	)

	assert := require.New(t)
	assert.Nil(err)
	assert.Equal(token.Value(TOKEN_VALUE), result.Token.Value)
	assert.Equal(1, tokenRepository.TokenCount())
}

func TestTokenNotSentWhenIssuanceFails(t *testing.T) {
	logger := logging.NewFakeLogger()
	userRepository := user.NewFakeRepository()
	tokenRepository := token.NewFakeRepository()
	sender := token.NewFakeSender()

	service := NewWithTokenSending(
		logger,
		sender,
		New(
			logger,
			userRepository,
			tokenRepository,
			token.NewFakeValueGenerator(TOKEN_VALUE),
			func() time.Time { return Now },
		),
	)

	_, err := service.Run(
		context.Background(),
		Input{Email: c.NewEmail(EMAIL), Purpose: token.EmailVerification, BaseURL: BASE_URL},
	)

	assert := require.New(t)
	assert.True(errors.Is(err, user.ErrUserDoesNotExist))
	assert.Equal(0, sender.SentCount())
}
