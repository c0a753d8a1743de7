package token

import (
	"context"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v9"
	"github.com/stretchr/testify/suite"
)

const (
	TOKEN       = token.Value("dGVzdC10b2tlbi12YWx1ZQ")
	OTHER_TOKEN = token.Value("b3RoZXItdG9rZW4tdmFsdWU")
	USER_ID     = user.ID(42)
)

var Now = time.Now().UTC().Truncate(time.Millisecond)

type testSuite struct {
	suite.Suite
	server *miniredis.Miniredis
	repo   *RedisRepository
}

func (suite *testSuite) SetupTest() {
	suite.server = miniredis.RunT(suite.T())
	client := redis.NewClient(&redis.Options{Addr: suite.server.Addr()})
	suite.repo = NewRedisRepository(client)
}

func TestRedisTokenRepository(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) TestCreate() {
	t, err := s.repo.Create(
		context.Background(),
		token.CreateInput{
			Value:     TOKEN,
			UserID:    USER_ID,
			Purpose:   token.PasswordReset,
			CreatedAt: Now,
		},
	)

	s.Nil(err)
	s.Equal(TOKEN, t.Value)
	s.Equal(USER_ID, t.UserID)
	s.Equal(token.PasswordReset, t.Purpose)
	s.True(t.ExpiresAt.Equal(Now.Add(token.PasswordResetTTL)))

	got, err := s.repo.GetByValue(context.Background(), TOKEN)
	s.Nil(err)
	s.Equal(TOKEN, got.Value)
	s.Equal(USER_ID, got.UserID)
	s.True(got.CreatedAt.Equal(t.CreatedAt))
	s.True(got.ExpiresAt.Equal(t.ExpiresAt))
}

func (s *testSuite) TestCreateDuplicateValue() {
	s.createToken(TOKEN, token.EmailVerification, Now)

	_, err := s.repo.Create(
		context.Background(),
		token.CreateInput{
			Value:     TOKEN,
			UserID:    USER_ID,
			Purpose:   token.PasswordReset,
			CreatedAt: Now,
		},
	)

	s.ErrorIs(err, token.ErrTokenAlreadyExists)
}

func (s *testSuite) TestGetByValueNotFound() {
	_, err := s.repo.GetByValue(context.Background(), TOKEN)
	s.ErrorIs(err, token.ErrTokenDoesNotExist)
}

func (s *testSuite) TestConsumeSuccess() {
	s.createToken(TOKEN, token.EmailVerification, Now)

	t, err := s.repo.Consume(context.Background(), TOKEN, token.EmailVerification, Now.Add(time.Hour))

	s.Nil(err)
	s.Equal(TOKEN, t.Value)
	s.Equal(USER_ID, t.UserID)
	s.Equal(token.EmailVerification, t.Purpose)

	_, err = s.repo.GetByValue(context.Background(), TOKEN)
	s.ErrorIs(err, token.ErrTokenDoesNotExist)
}

func (s *testSuite) TestConsumeTwice() {
	s.createToken(TOKEN, token.EmailVerification, Now)

	_, err := s.repo.Consume(context.Background(), TOKEN, token.EmailVerification, Now)
	s.Nil(err)

	_, err = s.repo.Consume(context.Background(), TOKEN, token.EmailVerification, Now)
	s.ErrorIs(err, token.ErrTokenDoesNotExist)
}

func (s *testSuite) TestConsumeNeverIssued() {
	_, err := s.repo.Consume(context.Background(), TOKEN, token.EmailVerification, Now)
	s.ErrorIs(err, token.ErrTokenDoesNotExist)
}

func (s *testSuite) TestConsumeExpired() {
	s.createToken(TOKEN, token.EmailVerification, Now)
	afterExpiry := Now.Add(token.EmailVerificationTTL + time.Second)

	_, err := s.repo.Consume(context.Background(), TOKEN, token.EmailVerification, afterExpiry)
	s.ErrorIs(err, token.ErrTokenExpired)

	_, err = s.repo.Consume(context.Background(), TOKEN, token.EmailVerification, afterExpiry)
	s.ErrorIs(err, token.ErrTokenDoesNotExist)
}

func (s *testSuite) TestConsumePurposeMismatch() {
	s.createToken(TOKEN, token.EmailVerification, Now)

	_, err := s.repo.Consume(context.Background(), TOKEN, token.PasswordReset, Now)
	s.ErrorIs(err, token.ErrTokenPurposeMismatch)

	t, err := s.repo.Consume(context.Background(), TOKEN, token.EmailVerification, Now)
	s.Nil(err)
	s.Equal(TOKEN, t.Value)
}

func (s *testSuite) TestRecordEvictedByServer() {
	s.createToken(TOKEN, token.EmailVerification, Now)

	s.server.FastForward(token.EmailVerificationTTL + time.Second)

	_, err := s.repo.GetByValue(context.Background(), TOKEN)
	s.ErrorIs(err, token.ErrTokenDoesNotExist)
}

func (s *testSuite) TestDeleteExpired() {
	// A record whose key expiry was lost: the hash is present with a past
	// deadline but carries no TTL.
	expiresAt := Now.Add(-time.Hour).UnixMilli()
	s.server.HSet(
		"token:"+string(TOKEN),
		"user_id", "42",
		"purpose", string(token.EmailVerification),
		"created_at", strconv.FormatInt(Now.Add(-2*time.Hour).UnixMilli(), 10),
		"expires_at", strconv.FormatInt(expiresAt, 10),
	)
	s.createToken(OTHER_TOKEN, token.PasswordReset, Now)

	count, err := s.repo.DeleteExpired(context.Background(), Now)

	s.Nil(err)
	s.Equal(int64(1), count)
	_, err = s.repo.GetByValue(context.Background(), OTHER_TOKEN)
	s.Nil(err)
}

func (s *testSuite) createToken(value token.Value, purpose token.Purpose, createdAt time.Time) token.Token {
	s.T().Helper()
	t, err := s.repo.Create(
		context.Background(),
		token.CreateInput{
			Value:     value,
			UserID:    USER_ID,
			Purpose:   purpose,
			CreatedAt: createdAt,
		},
	)
	s.Nil(err)
	return t
}
