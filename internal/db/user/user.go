package user

import (
	"context"
	"database/sql"
	"errors"
	c "herbarium/internal/core/domain/common"
	e "herbarium/internal/core/domain/errors"
	"herbarium/internal/core/domain/user"
	"herbarium/internal/db"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

const PG_UNIQUE_CONSTRAINT_ERR_CODE = "23505"
const EMAIL_CONSTRAINT_NAME = "user_email_idx"

type PgxRepository struct {
	db db.DBTX
}

func NewPgxRepository(db db.DBTX) *PgxRepository {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxRepository{db: db}
}

func (r *PgxRepository) Create(ctx context.Context, input user.CreateUserInput) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO "user" (email, password_hash, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, password_hash, created_at, email_verified_at, activated_at`,
		string(input.Email),
		string(input.PasswordHash),
		input.CreatedAt,
	)
	u, err = decodeUser(row)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgErr.Code == PG_UNIQUE_CONSTRAINT_ERR_CODE &&
		pgErr.ConstraintName == EMAIL_CONSTRAINT_NAME {
		return u, user.ErrEmailAlreadyExists
	}
	if err != nil {
		return u, err
	}
	return u, nil
}

func (r *PgxRepository) GetByID(ctx context.Context, id user.ID) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT id, email, password_hash, created_at, email_verified_at, activated_at
		 FROM "user" WHERE id = $1`,
		int64(id),
	)
	u, err = decodeUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	return u, err
}

func (r *PgxRepository) GetByEmail(ctx context.Context, email c.Email) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`SELECT id, email, password_hash, created_at, email_verified_at, activated_at
		 FROM "user" WHERE email = $1`,
		string(email),
	)
	u, err = decodeUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	return u, err
}

// COALESCE keeps the transition idempotent: the first verification wins and
// later calls leave the original timestamps in place.
func (r *PgxRepository) MarkEmailVerified(ctx context.Context, id user.ID, at time.Time) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`UPDATE "user"
		 SET email_verified_at = COALESCE(email_verified_at, $2),
		     activated_at = COALESCE(activated_at, $2)
		 WHERE id = $1
		 RETURNING id, email, password_hash, created_at, email_verified_at, activated_at`,
		int64(id),
		at,
	)
	u, err = decodeUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	return u, err
}

func (r *PgxRepository) SetPassword(ctx context.Context, id user.ID, password user.PasswordHash) error {
	tag, err := r.db.Exec(
		ctx,
		`UPDATE "user" SET password_hash = $2 WHERE id = $1`,
		int64(id),
		string(password),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserDoesNotExist
	}
	return nil
}

func decodeUser(row pgx.Row) (u user.User, err error) {
	var id int64
	var email, passwordHash string
	var emailVerifiedAt, activatedAt sql.NullTime
	err = row.Scan(&id, &email, &passwordHash, &u.CreatedAt, &emailVerifiedAt, &activatedAt)
	if err != nil {
		return u, err
	}
	u.ID = user.ID(id)
	u.Email = c.Email(email)
	u.PasswordHash = user.PasswordHash(passwordHash)
	u.EmailVerifiedAt = c.NewOptional(emailVerifiedAt.Time, emailVerifiedAt.Valid)
	u.ActivatedAt = c.NewOptional(activatedAt.Time, activatedAt.Valid)
	return u, nil
}
