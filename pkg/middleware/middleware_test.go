package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/account-service/internal/domain/users"
	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/martinmanurung/account-service/pkg/constant"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver map[string]users.User

func (s stubResolver) Resolve(_ context.Context, token string) (*users.User, error) {
	u, ok := s[token]
	if !ok {
		return nil, apperror.InvalidToken("unknown", nil)
	}
	return &u, nil
}

var resolver = stubResolver{
	"user-token":  {ID: "u-1", Role: users.RoleUser},
	"admin-token": {ID: "u-2", Role: users.RoleAdmin},
}

func serve(t *testing.T, header string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		user, ok := GetUser(c)
		require.True(t, ok)
		return c.String(http.StatusOK, user.ID)
	}, mws...)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid", header: "Bearer user-token", status: http.StatusOK, body: "u-1"},
		{name: "lowercase scheme", header: "bearer admin-token", status: http.StatusOK, body: "u-2"},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer   ", status: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.header, Authenticate(resolver))
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	gate := []echo.MiddlewareFunc{Authenticate(resolver), RequireRole(users.RoleModerator, users.RoleAdmin)}

	rec := serve(t, "Bearer user-token", gate...)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(t, "Bearer admin-token", gate...)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDPropagatesLogger(t *testing.T) {
	e := echo.New()
	e.Use(RequestID())
	e.GET("/", func(c echo.Context) error {
		assert.NotEqual(t, zerolog.Disabled, zerolog.Ctx(c.Request().Context()).GetLevel())
		assert.NotNil(t, GetLogger(c))
		return c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constant.HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(constant.HeaderRequestID))
	assert.Equal(t, "req-123", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get(constant.HeaderRequestID), 36)
}
