package token

import (
	"context"
	"fmt"
	e "herbarium/internal/core/domain/errors"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	"strconv"
	"time"

	"github.com/go-redis/redis/v9"
)

const keyPrefix = "token:"

// consumeScript performs the check-and-delete as a single server-side step,
// so concurrent consumers of the same value cannot both win. Timestamps are
// unix milliseconds. Returns the record fields on success, or a negative
// status code: -1 not found, -2 expired (record deleted), -3 purpose mismatch
// (record left intact).
var consumeScript = redis.NewScript(`
local key = KEYS[1]
local record = redis.call('HMGET', key, 'user_id', 'purpose', 'created_at', 'expires_at')
if not record[1] then
    return -1
end
if tonumber(record[4]) < tonumber(ARGV[2]) then
    redis.call('DEL', key)
    return -2
end
if record[2] ~= ARGV[1] then
    return -3
end
redis.call('DEL', key)
return record
`)

// createScript inserts the record only if the key is absent and sets its
// expiry to the record's own deadline.
var createScript = redis.NewScript(`
local key = KEYS[1]
if redis.call('EXISTS', key) == 1 then
    return 0
end
redis.call('HSET', key, 'user_id', ARGV[1], 'purpose', ARGV[2], 'created_at', ARGV[3], 'expires_at', ARGV[4])
redis.call('PEXPIREAT', key, tonumber(ARGV[4]))
return 1
`)

type RedisRepository struct {
	client redis.UniversalClient
}

func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	if client == nil {
		panic(e.NewNilArgumentError("client"))
	}
	return &RedisRepository{client: client}
}

func (r *RedisRepository) Create(ctx context.Context, input token.CreateInput) (t token.Token, err error) {
	t = token.New(input.Value, input.UserID, input.Purpose, input.CreatedAt)
	created, err := createScript.Run(
		ctx,
		r.client,
		[]string{recordKey(t.Value)},
		int64(t.UserID),
		string(t.Purpose),
		t.CreatedAt.UnixMilli(),
		t.ExpiresAt.UnixMilli(),
	).Int()
	if err != nil {
		return token.Token{}, fmt.Errorf("%w: %v", token.ErrStorageUnavailable, err)
	}
	if created == 0 {
		return token.Token{}, token.ErrTokenAlreadyExists
	}
	return t, nil
}

func (r *RedisRepository) GetByValue(ctx context.Context, value token.Value) (t token.Token, err error) {
	fields, err := r.client.HMGet(
		ctx,
		recordKey(value),
		"user_id", "purpose", "created_at", "expires_at",
	).Result()
	if err != nil {
		return t, fmt.Errorf("%w: %v", token.ErrStorageUnavailable, err)
	}
	if fields[0] == nil {
		return t, token.ErrTokenDoesNotExist
	}
	return decodeRecord(value, fields)
}

func (r *RedisRepository) Consume(
	ctx context.Context,
	value token.Value,
	purpose token.Purpose,
	now time.Time,
) (t token.Token, err error) {
	result, err := consumeScript.Run(
		ctx,
		r.client,
		[]string{recordKey(value)},
		string(purpose),
		now.UnixMilli(),
	).Result()
	if err != nil {
		return t, fmt.Errorf("%w: %v", token.ErrStorageUnavailable, err)
	}

	switch v := result.(type) {
	case int64:
		switch v {
		case -1:
			return t, token.ErrTokenDoesNotExist
		case -2:
			return t, token.ErrTokenExpired
		case -3:
			return t, token.ErrTokenPurposeMismatch
		}
		return t, fmt.Errorf("%w: unexpected consume status %d", token.ErrStorageUnavailable, v)
	case []interface{}:
		return decodeRecord(value, v)
	}
	return t, fmt.Errorf("%w: unexpected consume reply %v", token.ErrStorageUnavailable, result)
}

// DeleteExpired walks the keyspace and drops records past their deadline.
// Redis evicts them on its own via PEXPIREAT, so this only matters for
// records whose key expiry was lost (e.g. after a RESTORE without TTL).
func (r *RedisRepository) DeleteExpired(ctx context.Context, now time.Time) (count int64, err error) {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		expiresAt, err := r.client.HGet(ctx, key, "expires_at").Int64()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return count, fmt.Errorf("%w: %v", token.ErrStorageUnavailable, err)
		}
		if expiresAt >= now.UnixMilli() {
			continue
		}
		deleted, err := r.client.Del(ctx, key).Result()
		if err != nil {
			return count, fmt.Errorf("%w: %v", token.ErrStorageUnavailable, err)
		}
		count += deleted
	}
	if err := iter.Err(); err != nil {
		return count, fmt.Errorf("%w: %v", token.ErrStorageUnavailable, err)
	}
	return count, nil
}

func recordKey(value token.Value) string {
	return keyPrefix + string(value)
}

func decodeRecord(value token.Value, fields []interface{}) (t token.Token, err error) {
	if len(fields) != 4 {
		return t, fmt.Errorf("%w: malformed record for %s", token.ErrStorageUnavailable, value)
	}
	userID, err := strconv.ParseInt(fmt.Sprint(fields[0]), 10, 64)
	if err != nil {
		return t, fmt.Errorf("%w: malformed user_id: %v", token.ErrStorageUnavailable, err)
	}
	createdAt, err := strconv.ParseInt(fmt.Sprint(fields[2]), 10, 64)
	if err != nil {
		return t, fmt.Errorf("%w: malformed created_at: %v", token.ErrStorageUnavailable, err)
	}
	expiresAt, err := strconv.ParseInt(fmt.Sprint(fields[3]), 10, 64)
	if err != nil {
		return t, fmt.Errorf("%w: malformed expires_at: %v", token.ErrStorageUnavailable, err)
	}
	t.Value = value
	t.UserID = user.ID(userID)
	t.Purpose = token.Purpose(fmt.Sprint(fields[1]))
	t.CreatedAt = time.UnixMilli(createdAt).UTC()
	t.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	return t, nil
}
