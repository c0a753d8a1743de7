package token

import (
	"context"
	"herbarium/internal/core/domain/user"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var Now time.Time = time.Date(2023, 2, 11, 15, 30, 30, 0, time.UTC)

func TestExpiresAtFollowsPurposeTTL(t *testing.T) {
	cases := []struct {
		id       string
		purpose  Purpose
		expected time.Duration
	}{
		{id: "email-verification", purpose: EmailVerification, expected: 48 * time.Hour},
		{id: "password-reset", purpose: PasswordReset, expected: 24 * time.Hour},
	}
	for _, c := range cases {
		t.Run(c.id, func(t *testing.T) {
			tok := New(Value("test"), user.ID(1), c.purpose, Now)

			assert := require.New(t)
			assert.Equal(c.expected, tok.ExpiresAt.Sub(tok.CreatedAt))
			assert.True(tok.ExpiresAt.After(tok.CreatedAt))
		})
	}
}

func TestIsExpired(t *testing.T) {
	tok := New(Value("test"), user.ID(1), PasswordReset, Now)

	assert := require.New(t)
	assert.False(tok.IsExpired(Now))
	assert.False(tok.IsExpired(tok.ExpiresAt))
	assert.True(tok.IsExpired(tok.ExpiresAt.Add(time.Second)))
}

func TestValueIsMaskedWhenFormatted(t *testing.T) {
	require.Equal(t, "***", Value("super-secret").String())
}

func TestFakeRepositoryConsumeIsSingleUse(t *testing.T) {
	repo := NewFakeRepository()
	_, err := repo.Create(context.Background(), CreateInput{
		Value:     Value("test"),
		UserID:    user.ID(1),
		Purpose:   EmailVerification,
		CreatedAt: Now,
	})
	require.Nil(t, err)

	concurrency := 50
	errs := make([]error, concurrency)
	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		i := i
		go func() {
			defer wg.Done()
			_, errs[i] = repo.Consume(context.Background(), Value("test"), EmailVerification, Now)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrTokenDoesNotExist)
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 0, repo.TokenCount())
}
