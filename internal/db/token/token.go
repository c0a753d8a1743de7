package token

import (
	"context"
	"errors"
	"fmt"
	e "herbarium/internal/core/domain/errors"
	"herbarium/internal/core/domain/token"
	"herbarium/internal/core/domain/user"
	"herbarium/internal/db"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

const PG_UNIQUE_CONSTRAINT_ERR_CODE = "23505"

type PgxRepository struct {
	db db.DBTX
}

func NewPgxRepository(db db.DBTX) *PgxRepository {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxRepository{db: db}
}

func (r *PgxRepository) Create(ctx context.Context, input token.CreateInput) (t token.Token, err error) {
	t = token.New(input.Value, input.UserID, input.Purpose, input.CreatedAt)
	_, err = r.db.Exec(
		ctx,
		`INSERT INTO token (value, user_id, purpose, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		string(t.Value),
		int64(t.UserID),
		string(t.Purpose),
		t.CreatedAt,
		t.ExpiresAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == PG_UNIQUE_CONSTRAINT_ERR_CODE {
		return token.Token{}, token.ErrTokenAlreadyExists
	}
	if err != nil {
		return token.Token{}, fmt.Errorf("%w: %v", token.ErrStorageUnavailable, err)
	}
	return t, nil
}

func (r *PgxRepository) GetByValue(ctx context.Context, value token.Value) (t token.Token, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT value, user_id, purpose, created_at, expires_at
		 FROM token WHERE value = $1`,
		string(value),
	)
	t, err = decodeToken(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, token.ErrTokenDoesNotExist
	}
	if err != nil {
		return t, fmt.Errorf("%w: %v", token.ErrStorageUnavailable, err)
	}
	return t, nil
}

// Consume is a single conditional DELETE, so the row lock makes concurrent
// calls serialize and exactly one of them gets the returned record. The
// follow-up classification below only refines the error for the losers.
func (r *PgxRepository) Consume(
	ctx context.Context,
	value token.Value,
	purpose token.Purpose,
	now time.Time,
) (t token.Token, err error) {
	row := r.db.QueryRow(
		ctx,
		`DELETE FROM token
		 WHERE value = $1 AND purpose = $2 AND expires_at >= $3
		 RETURNING value, user_id, purpose, created_at, expires_at`,
		string(value),
		string(purpose),
		now,
	)
	t, err = decodeToken(row)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return token.Token{}, fmt.Errorf("%w: %v", token.ErrStorageUnavailable, err)
	}

	remaining, err := r.GetByValue(ctx, value)
	if err != nil {
		// Covers never-issued, already consumed, and swept records alike.
		return token.Token{}, err
	}
	if remaining.IsExpired(now) {
		// Lazy removal; a concurrent delete of the same record is a no-op.
		_, err = r.db.Exec(
			ctx,
			`DELETE FROM token WHERE value = $1 AND expires_at < $2`,
			string(value),
			now,
		)
		if err != nil {
			return token.Token{}, fmt.Errorf("%w: %v", token.ErrStorageUnavailable, err)
		}
		return token.Token{}, token.ErrTokenExpired
	}
	return token.Token{}, token.ErrTokenPurposeMismatch
}

func (r *PgxRepository) DeleteExpired(ctx context.Context, now time.Time) (count int64, err error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM token WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", token.ErrStorageUnavailable, err)
	}
	return tag.RowsAffected(), nil
}

func decodeToken(row pgx.Row) (t token.Token, err error) {
	var value, purpose string
	var userID int64
	err = row.Scan(&value, &userID, &purpose, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		return t, err
	}
	t.Value = token.Value(value)
	t.UserID = user.ID(userID)
	t.Purpose = token.Purpose(purpose)
	return t, nil
}
