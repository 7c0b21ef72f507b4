package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avyure/go_workout_backend/internal/adapter/api"
	"github.com/avyure/go_workout_backend/internal/app/auth"
	"github.com/avyure/go_workout_backend/internal/domain/user"
)

func mintToken(t *testing.T, authorizer *auth.Authorizer) (string, string) {
	t.Helper()

	u := user.NewUser(gofakeit.UUID(), gofakeit.Email(), "password", authorizer)
	a, err := u.Authorize(authorizer, "password", user.Device{})
	require.NoError(t, err)

	token, err := authorizer.GenerateAccessToken(u, &a)
	require.NoError(t, err)
	return token, u.UserID
}

func runLoginRequired(authorizer *auth.Authorizer, header string) (*httptest.ResponseRecorder, *auth.AccessTokenData) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *auth.AccessTokenData
	handler := api.LoginRequired(authorizer)(func(c echo.Context) error {
		seen, _ = c.Get(api.KeyCurrentUser).(*auth.AccessTokenData)
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, seen
}

func TestLoginRequiredAcceptsValidToken(t *testing.T) {
	authorizer := &auth.Authorizer{
		Cost:             bcrypt.MinCost,
		Secret:           "test-secret",
		AccessTokenTTL:   time.Minute,
		AuthorizationTTL: time.Hour,
	}
	token, userID := mintToken(t, authorizer)

	rec, seen := runLoginRequired(authorizer, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, userID, seen.UserID)
}

func TestLoginRequiredRejectsMissingHeader(t *testing.T) {
	authorizer := &auth.Authorizer{Secret: "test-secret"}

	rec, seen := runLoginRequired(authorizer, "")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Nil(t, seen)
}

func TestLoginRequiredRejectsNonBearerScheme(t *testing.T) {
	authorizer := &auth.Authorizer{Secret: "test-secret"}

	rec, seen := runLoginRequired(authorizer, "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Nil(t, seen)
}

func TestLoginRequiredRejectsForgedToken(t *testing.T) {
	authorizer := &auth.Authorizer{
		Cost:             bcrypt.MinCost,
		Secret:           "test-secret",
		AccessTokenTTL:   time.Minute,
		AuthorizationTTL: time.Hour,
	}
	forger := &auth.Authorizer{
		Cost:             bcrypt.MinCost,
		Secret:           "other-secret",
		AccessTokenTTL:   time.Minute,
		AuthorizationTTL: time.Hour,
	}
	token, _ := mintToken(t, forger)

	rec, seen := runLoginRequired(authorizer, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}
