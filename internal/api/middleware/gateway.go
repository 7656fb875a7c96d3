package middleware

import (
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cityhealth/clinic-api/internal/api/metrics"
	"github.com/cityhealth/clinic-api/internal/core/domain"
	"github.com/cityhealth/clinic-api/internal/core/ports"
	"github.com/cityhealth/clinic-api/internal/core/session"
)

const (
	loginPath  = "/login"
	deniedPath = "/denied"
)

// publicPaths need no session at all (exact match).
var publicPaths = map[string]struct{}{
	"/":       {},
	loginPath: {},
}

// openPrefixes are sub-trees not gated by the navigation gateway: the
// programmatic API (gated per-route by RequireSession/RBAC), infrastructure
// endpoints, and static assets.
var openPrefixes = []string{
	"/api/",
	"/health",
	"/metrics",
	"/swagger",
	"/assets/",
	"/static/",
}

// staticExtensions short-circuit asset requests that live outside the asset
// prefixes (favicons, manifests).
var staticExtensions = map[string]struct{}{
	".css": {}, ".js": {}, ".map": {}, ".ico": {}, ".png": {}, ".jpg": {},
	".svg": {}, ".webp": {}, ".woff": {}, ".woff2": {}, ".txt": {},
}

// GatewayConfig wires the access gateway.
type GatewayConfig struct {
	Reader     *session.Reader
	CookieName string
	Secure     bool
	// Security receives denial events; optional.
	Security ports.SecurityRecorder
}

// Gateway is the navigation access control for every request. It never
// returns an error past its boundary: each request resolves to allow,
// redirect-to-login (clearing a stale cookie when present), or
// redirect-to-denied.
//
// Evaluation order: public exact paths, open sub-trees and static assets,
// the denied page itself, then session-required paths with the per-role
// prefix allowlist (ADMIN matches every prefix).
func Gateway(cfg GatewayConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := c.Request().URL.Path

			if _, ok := publicPaths[p]; ok {
				return allow(c, next)
			}
			for _, prefix := range openPrefixes {
				if p == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(p, prefix) {
					return allow(c, next)
				}
			}
			if _, ok := staticExtensions[path.Ext(p)]; ok {
				return allow(c, next)
			}
			if p == deniedPath {
				return allow(c, next)
			}

			cookie, err := c.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				return redirectToLogin(c, false, cfg)
			}

			sess, err := cfg.Reader.Read(cookie.Value)
			if err != nil {
				// Stale or forged token: drop it along with the redirect.
				return redirectToLogin(c, true, cfg)
			}

			if domain.PathIsRoleScoped(p) && !domain.RoleAllowsPath(sess.Role, p) {
				metrics.GatewayDecisionsTotal.WithLabelValues("denied_redirect").Inc()
				recordDenial(cfg, c, sess, p)
				return c.Redirect(http.StatusFound, deniedPath)
			}

			return allow(c, next)
		}
	}
}

func allow(c echo.Context, next echo.HandlerFunc) error {
	metrics.GatewayDecisionsTotal.WithLabelValues("allow").Inc()
	return next(c)
}

func redirectToLogin(c echo.Context, clearCookie bool, cfg GatewayConfig) error {
	if clearCookie {
		c.SetCookie(session.ExpiredCookie(cfg.CookieName, cfg.Secure))
	}
	metrics.GatewayDecisionsTotal.WithLabelValues("login_redirect").Inc()
	return c.Redirect(http.StatusFound, loginPath)
}

func recordDenial(cfg GatewayConfig, c echo.Context, sess *session.Session, p string) {
	if cfg.Security == nil {
		return
	}
	cfg.Security.Enqueue(ports.SecurityEventInput{
		Kind:     ports.SecurityGatewayDenied,
		Subject:  sess.SubjectID,
		Role:     string(sess.Role),
		Path:     p,
		RemoteIP: c.RealIP(),
		At:       time.Now().UTC(),
	})
}
