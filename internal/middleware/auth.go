// Package middleware provides reusable HTTP middleware: the cookie auth
// gate, role enforcement, Redis response caching and rate limiting.
package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clothica/backend/internal/model"
	"github.com/clothica/backend/internal/session"
	"github.com/clothica/backend/internal/utils"
)

// SessionSource and UserSource are the lookups the auth gate performs.
// Repository types satisfy them; tests use fakes.
type SessionSource interface {
	GetByID(ctx context.Context, id uint64) (model.Session, error)
}

type UserSource interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Authenticate resolves the acting user from the auth cookies. It verifies
// the access JWT explicitly, checks that the referenced session still exists
// and carries the same access token, and loads the user. On success the
// sanitized user lands in the context under "user" (plus "user_id"/"role");
// every gap is a 401.
func Authenticate(secret string, sessions SessionSource, users UserSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			access := session.ReadCookie(c, session.CookieAccess)
			if access == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			userID, _, err := utils.ParseAccessToken(secret, access)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid access token"})
			}

			sid, err := strconv.ParseUint(session.ReadCookie(c, session.CookieSession), 10, 64)
			if err != nil || sid == 0 {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session not found"})
			}
			ctx := c.Request().Context()
			s, err := sessions.GetByID(ctx, sid)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session not found"})
			}
			if s.UserID != userID || s.AccessHash != utils.HashToken(access) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session not found"})
			}

			u, err := users.GetByID(ctx, userID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "user not found"})
			}

			c.Set("user", u.Public())
			c.Set("user_id", u.ID)
			c.Set("role", u.Role)
			return next(c)
		}
	}
}

// CurrentUser pulls the authenticated user out of the context. The boolean
// is false on routes that skipped the auth gate.
func CurrentUser(c echo.Context) (model.PublicUser, bool) {
	u, ok := c.Get("user").(model.PublicUser)
	return u, ok
}
