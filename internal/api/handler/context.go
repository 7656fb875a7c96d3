package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cityhealth/clinic-api/internal/api/middleware"
	"github.com/cityhealth/clinic-api/internal/core/domain"
	"github.com/cityhealth/clinic-api/internal/core/ports"
)

// ctxActor extracts the authenticated actor injected by RequireSession and
// performs a fast-fail check before any service call: a session without a
// facility is structurally valid but operationally unusable — reject with 401.
func ctxActor(c echo.Context) (ports.Actor, error) {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return ports.Actor{}, respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
	}
	if sess.FacilityID == "" && sess.Role != domain.RoleAdmin {
		return ports.Actor{}, respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "session missing facility", nil)
	}
	return ports.Actor{
		ID:         sess.SubjectID,
		Name:       sess.Name,
		Role:       sess.Role,
		FacilityID: sess.FacilityID,
	}, nil
}

// respondOK writes the {ok:true,data} envelope.
func respondOK(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{OK: true, Data: data})
}

// respondError writes the {ok:false,error} envelope and returns nil so the
// response is considered handled.
func respondError(c echo.Context, status int, code, message string, fieldErrors map[string]string) error {
	return c.JSON(status, envelope{OK: false, Error: &apiError{
		Code:        code,
		Message:     message,
		FieldErrors: fieldErrors,
	}})
}

// respondDomainError maps known domain errors to envelope codes; anything
// unrecognised propagates to the central error handler as a generic 500.
func respondDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrEncounterNotFound), errors.Is(err, domain.ErrPatientNotFound):
		return respondError(c, http.StatusNotFound, "NOT_FOUND", "not found", nil)
	case errors.Is(err, domain.ErrEncounterExists):
		return respondError(c, http.StatusConflict, "ENCOUNTER_EXISTS", "an encounter already exists for this patient today", nil)
	case errors.Is(err, domain.ErrForbidden):
		return respondError(c, http.StatusForbidden, "FORBIDDEN", "insufficient role", nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", nil)
	case errors.Is(err, domain.ErrTooManyAttempts):
		return respondError(c, http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "too many failed attempts, try again later", nil)
	case errors.Is(err, domain.ErrSessionIssue):
		return respondError(c, http.StatusInternalServerError, "SESSION_ERROR", "could not establish session", nil)
	}
	return err
}

// bindAndValidate binds the payload and runs struct validation, writing the
// VALIDATION_ERROR envelope itself on failure. The bool reports whether the
// handler may proceed.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", nil)
	}
	if err := c.Validate(req); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return false, respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", ve.Fields)
		}
		return false, respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid payload", nil)
	}
	return true, nil
}
