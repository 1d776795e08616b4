package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/account-service/internal/domain/users"
	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/martinmanurung/account-service/pkg/constant"
	"github.com/martinmanurung/account-service/pkg/response"
)

// Resolver turns an access token into the user it was issued to.
type Resolver interface {
	Resolve(ctx context.Context, accessToken string) (*users.User, error)
}

// Authenticate requires a bearer access token and stores the resolved user
// in the echo context.
func Authenticate(resolver Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger := GetLogger(c)

			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return response.FromError(c, apperror.InvalidToken("missing bearer token", nil))
			}

			user, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				logger.Warn().Err(err).Msg("Authentication failed")
				return response.FromError(c, err)
			}

			c.Set(string(constant.CtxKeyUser), user)
			return next(c)
		}
	}
}

// RequireRole admits callers whose role is one of roles. It must run after
// Authenticate.
func RequireRole(roles ...users.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := GetUser(c)
			if !ok {
				return response.FromError(c, apperror.InvalidToken("missing caller", nil))
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return response.FromError(c, apperror.MethodNotAllowed(user.ID))
		}
	}
}

// GetUser returns the caller stored by Authenticate.
func GetUser(c echo.Context) (*users.User, bool) {
	user, ok := c.Get(string(constant.CtxKeyUser)).(*users.User)
	return user, ok && user != nil
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
