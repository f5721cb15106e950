package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/curiocodex/curiocodex/store"
)

// userContextKey is the echo context key holding the authenticated user.
// State is carried per-request through the context, never through
// package-level variables.
const userContextKey = "auth/user"

// Middleware resolves the Authorization bearer token into a user and
// injects it into the request context. Requests without a valid session
// are rejected with 401.
func Middleware(st *store.Store, sessions SessionStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]any{"error": "authentication required"})
			}

			ctx := c.Request().Context()
			session, err := sessions.Get(ctx, token)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]any{"error": "internal server error"})
			}
			if session == nil {
				return c.JSON(http.StatusUnauthorized, map[string]any{"error": "invalid or expired session"})
			}

			user, err := st.GetUser(ctx, &store.FindUser{ID: &session.UserID})
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]any{"error": "internal server error"})
			}
			if user == nil {
				// The account is gone but the session outlived it.
				return c.JSON(http.StatusUnauthorized, map[string]any{"error": "invalid or expired session"})
			}

			c.Set(userContextKey, user)
			c.Set(tokenContextKey, token)
			return next(c)
		}
	}
}

const tokenContextKey = "auth/token"

// UserFromContext returns the authenticated user, or nil outside the
// middleware.
func UserFromContext(c echo.Context) *store.User {
	user, _ := c.Get(userContextKey).(*store.User)
	return user
}

// TokenFromContext returns the session token for the current request.
func TokenFromContext(c echo.Context) string {
	token, _ := c.Get(tokenContextKey).(string)
	return token
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
