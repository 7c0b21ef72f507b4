package auth_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avyure/go_workout_backend/internal/app/auth"
	"github.com/avyure/go_workout_backend/internal/domain/user"
)

func newAuthorizer() *auth.Authorizer {
	return &auth.Authorizer{
		Cost:             bcrypt.MinCost,
		Secret:           "test-secret",
		AccessTokenTTL:   time.Minute,
		AuthorizationTTL: time.Hour,
	}
}

func TestAuthorizeRoundTrip(t *testing.T) {
	authorizer := newAuthorizer()
	password := gofakeit.Password(true, true, true, false, false, 12)
	u := user.NewUser(gofakeit.UUID(), gofakeit.Email(), password, authorizer)

	dev := user.Device{
		Browser:   "firefox",
		OS:        "linux",
		IPAddress: gofakeit.IPv4Address(),
	}

	a, err := u.Authorize(authorizer, password, dev)
	require.NoError(t, err)
	assert.NotEmpty(t, a.Identifier)
	assert.Equal(t, dev, a.Device)
	assert.True(t, a.ValidUntil.After(a.CreatedAt))
	assert.Nil(t, a.LogoutAt)
}

func TestAuthorizeRejectsWrongPassword(t *testing.T) {
	authorizer := newAuthorizer()
	u := user.NewUser(gofakeit.UUID(), gofakeit.Email(), "correct horse", authorizer)

	_, err := u.Authorize(authorizer, "battery staple", user.Device{})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	authorizer := newAuthorizer()
	u := user.NewUser(gofakeit.UUID(), gofakeit.Email(), "password", authorizer)

	a, err := u.Authorize(authorizer, "password", user.Device{})
	require.NoError(t, err)

	token, err := authorizer.GenerateAccessToken(u, &a)
	require.NoError(t, err)

	data, err := authorizer.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.UserID, data.UserID)
	assert.Equal(t, a.Identifier, data.Authorization)
}

func TestValidateAccessTokenExpired(t *testing.T) {
	authorizer := newAuthorizer()
	authorizer.AccessTokenTTL = -time.Minute

	u := user.NewUser(gofakeit.UUID(), gofakeit.Email(), "password", authorizer)
	a, err := u.Authorize(authorizer, "password", user.Device{})
	require.NoError(t, err)

	token, err := authorizer.GenerateAccessToken(u, &a)
	require.NoError(t, err)

	_, err = authorizer.ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrAccessTokenExpired)
	assert.ErrorIs(t, err, auth.ErrAccessTokenInvalid)
}

func TestValidateAccessTokenGarbage(t *testing.T) {
	authorizer := newAuthorizer()

	_, err := authorizer.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, auth.ErrAccessTokenInvalid)
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	authorizer := newAuthorizer()
	u := user.NewUser(gofakeit.UUID(), gofakeit.Email(), "password", authorizer)
	a, err := u.Authorize(authorizer, "password", user.Device{})
	require.NoError(t, err)

	token, err := authorizer.GenerateAccessToken(u, &a)
	require.NoError(t, err)

	other := newAuthorizer()
	other.Secret = "another-secret"

	_, err = other.ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrAccessTokenInvalid)
}

func TestLogoutClosesAuthorization(t *testing.T) {
	authorizer := newAuthorizer()
	u := user.NewUser(gofakeit.UUID(), gofakeit.Email(), "password", authorizer)
	a, err := u.Authorize(authorizer, "password", user.Device{})
	require.NoError(t, err)

	require.NoError(t, u.Logout(a.Identifier))
	require.NotNil(t, u.Authorizations[0].LogoutAt)

	err = u.Logout(a.Identifier)
	assert.ErrorIs(t, err, user.ErrUnauthorized)
}
