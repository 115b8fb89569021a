package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apierr "github.com/ziotom78/instrumentdb/pkg/api/types/errors"
)

// UsernameKey is the echo context key the middleware stores the verified
// username under.
const UsernameKey = "instrumentdb-username"

// Middleware rejects requests without a valid bearer token.
func Middleware(issuer *Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				return apierr.Unauthorized(
					"pass a token as: Authorization: Bearer <token>",
					errors.New("no bearer token"),
				)
			}

			username, err := issuer.Verify(token)
			if err != nil {
				return apierr.Unauthorized("token rejected", err)
			}
			c.Set(UsernameKey, username)
			return next(c)
		}
	}
}

// RequireGroup rejects authenticated users outside the group. It runs
// after Middleware, which stores the username.
func RequireGroup(registry *Registry, group string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, _ := c.Get(UsernameKey).(string)
			if !registry.InGroup(username, group) {
				return apierr.NewErrorMessage(
					http.StatusForbidden, "forbidden",
					apierr.WithAdvice("this operation needs the "+group+" group"),
				)
			}
			return next(c)
		}
	}
}
