package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cityhealth/clinic-api/internal/core/session"
)

// sessionContextKey is the echo context key holding the resolved *session.Session.
const sessionContextKey = "session"

// RequireSession gates the programmatic API entry points: it resolves the
// session cookie, verifies the token, and injects the session into context.
// Requests without a valid session get a 401 envelope; a present-but-invalid
// token additionally instructs the client to drop it.
func RequireSession(reader *session.Reader, cookieName string, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return unauthorized(c)
			}

			sess, err := reader.Read(cookie.Value)
			if err != nil {
				c.SetCookie(session.ExpiredCookie(cookieName, secure))
				return unauthorized(c)
			}

			c.Set(sessionContextKey, sess)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]any{
		"ok": false,
		"error": map[string]string{
			"code":    "UNAUTHORIZED",
			"message": "authentication required",
		},
	})
}

// SessionFromContext returns the session injected by RequireSession, or nil.
func SessionFromContext(c echo.Context) *session.Session {
	sess, _ := c.Get(sessionContextKey).(*session.Session)
	return sess
}
