package ratelimiting

import (
	"context"
	"errors"
	"herbarium/internal/core/domain/logging"
	ratelimiter "herbarium/internal/core/domain/rate_limiter"
	"herbarium/internal/core/services"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeInput struct{}

func (i fakeInput) GetRateLimitKey() string {
	return "test-key"
}

type fakeService struct {
	wasCalled bool
}

func (s *fakeService) Run(ctx context.Context, input fakeInput) (struct{}, error) {
	s.wasCalled = true
	return struct{}{}, nil
}

func TestInnerServiceCalledWhenAllowed(t *testing.T) {
	inner := &fakeService{}
	var service services.Service[fakeInput, struct{}] = WithRateLimiting[fakeInput, struct{}](
		logging.NewFakeLogger(),
		ratelimiter.NewFakeRateLimiter(true),
		ratelimiter.Limit{Value: 3, Interval: ratelimiter.Hour},
		inner,
	)

	_, err := service.Run(context.Background(), fakeInput{})

	require.Nil(t, err)
	require.True(t, inner.wasCalled)
}

func TestInnerServiceNotCalledWhenLimitExceeded(t *testing.T) {
	inner := &fakeService{}
	var service services.Service[fakeInput, struct{}] = WithRateLimiting[fakeInput, struct{}](
		logging.NewFakeLogger(),
		ratelimiter.NewFakeRateLimiter(false),
		ratelimiter.Limit{Value: 3, Interval: ratelimiter.Hour},
		inner,
	)

	_, err := service.Run(context.Background(), fakeInput{})

	require.True(t, errors.Is(err, ratelimiter.ErrRateLimitExceeded))
	require.False(t, inner.wasCalled)
}
