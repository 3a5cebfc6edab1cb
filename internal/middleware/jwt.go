package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-sales/internal/utils"
)

// Context keys under which JWTAuth stores the authenticated identity.
// Handlers read these back with c.Get(); the values are already typed
// (uint64, string, bool) so no downstream assertion on claim maps is
// needed.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxIsAdmin  = "is_admin"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the typed identity claims into the request context.
// The secret must match the one used when issuing tokens.  Requests
// without a valid token are rejected with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxUsername, claims.Username)
			c.Set(CtxIsAdmin, claims.IsAdmin)
			return next(c)
		}
	}
}

// UserID returns the authenticated user's id from the request context.
// It is zero when JWTAuth did not run.
func UserID(c echo.Context) uint64 {
	id, _ := c.Get(CtxUserID).(uint64)
	return id
}

// IsAdmin reports whether the authenticated user carries the admin flag.
func IsAdmin(c echo.Context) bool {
	admin, _ := c.Get(CtxIsAdmin).(bool)
	return admin
}

// RequireAdmin aborts the request with 403 Forbidden unless the
// authenticated user is an administrator.  It assumes JWTAuth ran
// earlier in the chain.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAdmin(c) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "admin privileges required"})
			}
			return next(c)
		}
	}
}
