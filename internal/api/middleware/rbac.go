package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cityhealth/clinic-api/internal/core/domain"
)

// RBAC enforces role-based access control on API entry points. It must run
// after RequireSession.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := SessionFromContext(c)
			if sess == nil {
				return unauthorized(c)
			}
			if _, ok := allowed[sess.Role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]any{
					"ok": false,
					"error": map[string]string{
						"code":    "FORBIDDEN",
						"message": "insufficient role",
					},
				})
			}
			return next(c)
		}
	}
}
