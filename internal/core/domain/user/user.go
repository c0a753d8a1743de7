package user

import (
	c "herbarium/internal/core/domain/common"
	"time"
)

type ID int64

type PasswordHash string

func (p PasswordHash) String() string {
	return "***"
}

type RawPassword string

func (p RawPassword) String() string {
	return "***"
}

// User is the partial account view this subsystem needs: identity, contact
// address, and the verified/active state driven by token consumption.
type User struct {
	ID              ID
	Email           c.Email
	PasswordHash    PasswordHash
	CreatedAt       time.Time
	EmailVerifiedAt c.Optional[time.Time]
	ActivatedAt     c.Optional[time.Time]
}

func (u *User) IsEmailVerified() bool {
	return u.EmailVerifiedAt.IsPresent
}

func (u *User) IsActive() bool {
	return u.ActivatedAt.IsPresent
}
