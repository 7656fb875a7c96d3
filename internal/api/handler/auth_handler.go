package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cityhealth/clinic-api/internal/api/metrics"
	"github.com/cityhealth/clinic-api/internal/core/domain"
	"github.com/cityhealth/clinic-api/internal/core/ports"
	"github.com/cityhealth/clinic-api/internal/core/session"
)

// CookieSettings carries the session cookie policy shared by login and logout.
type CookieSettings struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type AuthHandler struct {
	authService ports.AuthService
	cookie      CookieSettings
	security    ports.SecurityRecorder
}

func NewAuthHandler(authService ports.AuthService, cookie CookieSettings, security ports.SecurityRecorder) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie, security: security}
}

// Login authenticates a staff member and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      401   {object}  envelope
// @Failure      429   {object}  envelope
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		h.recordFailure(c, req.Email, err)
		return respondDomainError(c, err)
	}

	c.SetCookie(session.NewCookie(h.cookie.Name, result.Token, h.cookie.TTL, h.cookie.Secure))
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return respondOK(c, http.StatusOK, loginResponse{RedirectTo: result.RedirectTo})
}

// Logout destroys the client-held session token. Destruction is best-effort;
// the response always redirects to /login.
//
// @Summary      Logout
// @Tags         auth
// @Success      302
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(session.ExpiredCookie(h.cookie.Name, h.cookie.Secure))
	return c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) recordFailure(c echo.Context, email string, err error) {
	kind := ports.SecurityLoginFailed
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	case errors.Is(err, domain.ErrTooManyAttempts):
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		kind = ports.SecurityLoginThrottled
	default:
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return
	}

	if h.security == nil {
		return
	}
	h.security.Enqueue(ports.SecurityEventInput{
		Kind:     kind,
		Subject:  email,
		Path:     c.Path(),
		RemoteIP: c.RealIP(),
		At:       time.Now().UTC(),
	})
}
