package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/avyure/go_workout_backend/internal/domain"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrAuthorizationExists = errors.New("authorization already exists")
	ErrInvalidCredentials  = errors.New("email or password is invalid")
	ErrUnauthorized        = errors.New("unauthorized")
)

const (
	EventCreated  = "user.created"
	EventNewLogin = "user.login"
	EventLogout   = "user.logout"
)

type Authorizer interface {
	Hash(password string) string
	Authorize(u *User, password string, dev Device) (Authorization, error)
}

type Device struct {
	Browser   string `diff:"browser"`
	OS        string `diff:"os"`
	IPAddress string `diff:"ip_address"`
	Model     string `diff:"model"`
}

type Authorization struct {
	Identifier string     `diff:"-"`
	CreatedAt  time.Time  `diff:"-"`
	ValidUntil time.Time  `diff:"valid_until"`
	LogoutAt   *time.Time `diff:"logout_at"`
	Device     Device     `diff:"-"`
}

type User struct {
	domain.Aggregate `diff:"-"`
	UserID           string          `diff:"-"`
	Email            string          `diff:"email"`
	PasswordHash     string          `diff:"password_hash"`
	CreatedAt        time.Time       `diff:"-"`
	UpdatedAt        time.Time       `diff:"updated_at"`
	Authorizations   []Authorization `diff:"-"`
}

func NewUser(userID, email, password string, hasher Authorizer) *User {
	now := time.Now().UTC()
	u := &User{
		UserID:       userID,
		Email:        email,
		PasswordHash: hasher.Hash(password),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	u.PushEvent(CreatedEvent{
		At:     u.CreatedAt,
		UserID: u.UserID,
		Email:  u.Email,
	})
	return u
}

func (u *User) Authorize(a Authorizer, password string, dev Device) (Authorization, error) {
	auth, err := a.Authorize(u, password, dev)
	if err != nil {
		return Authorization{}, err
	}

	u.Authorizations = append(u.Authorizations, auth)

	u.PushEvent(LoginEvent{
		At:         time.Now().UTC(),
		UserID:     u.UserID,
		Identifier: auth.Identifier,
		Device:     auth.Device,
	})

	return auth, nil
}

func (u *User) Logout(identifier string) error {
	var auth *Authorization

	for i, a := range u.Authorizations {
		if a.Identifier == identifier {
			auth = &u.Authorizations[i]
		}
	}
	if auth == nil {
		return fmt.Errorf("%w: provided identifier not found", ErrUnauthorized)
	}

	if auth.LogoutAt != nil {
		return fmt.Errorf("%w: authorization already closed", ErrUnauthorized)
	}

	now := time.Now().UTC()
	auth.LogoutAt = &now

	u.PushEvent(LogoutEvent{
		At:         now,
		UserID:     u.UserID,
		Identifier: auth.Identifier,
	})

	return nil
}

type CreatedEvent struct {
	At     time.Time
	UserID string
	Email  string
}

func (e CreatedEvent) Type() string {
	return EventCreated
}

func (e CreatedEvent) PublishedAt() time.Time {
	return e.At
}

type LoginEvent struct {
	At         time.Time
	UserID     string
	Identifier string
	Device     Device
}

func (e LoginEvent) Type() string {
	return EventNewLogin
}

func (e LoginEvent) PublishedAt() time.Time {
	return e.At
}

type LogoutEvent struct {
	At         time.Time
	UserID     string
	Identifier string
}

func (e LogoutEvent) Type() string {
	return EventLogout
}

func (e LogoutEvent) PublishedAt() time.Time {
	return e.At
}
