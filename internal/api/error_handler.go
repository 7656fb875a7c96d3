package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cityhealth/clinic-api/internal/core/domain"
	"github.com/cityhealth/clinic-api/internal/core/session"
)

// errorBody is the error half of the canonical envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorResponse is the canonical {ok:false,error} envelope for all API errors.
type errorResponse struct {
	OK    bool      `json:"ok"`
	Error errorBody `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the consistent envelope: {"ok":false,"error":{code,message}}.
//
// Handlers map most domain errors themselves; this is the safety net for
// anything that escapes, including echo's own routing errors.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{OK: false, Error: body})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorBody) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorBody{Code: codeForStatus(he.Code), Message: fmt.Sprintf("%v", he.Message)}
	}

	// Known domain errors → deterministic codes.
	switch {
	case errors.Is(err, domain.ErrEncounterNotFound), errors.Is(err, domain.ErrPatientNotFound):
		return http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "not found"}
	case errors.Is(err, domain.ErrEncounterExists):
		return http.StatusConflict, errorBody{Code: "ENCOUNTER_EXISTS", Message: "an encounter already exists for this patient today"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorBody{Code: "INVALID_CREDENTIALS", Message: "invalid email or password"}
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, errorBody{Code: "TOO_MANY_ATTEMPTS", Message: "too many failed attempts"}
	case errors.Is(err, domain.ErrSessionIssue):
		return http.StatusInternalServerError, errorBody{Code: "SESSION_ERROR", Message: "could not establish session"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorBody{Code: "FORBIDDEN", Message: "access forbidden"}
	case errors.Is(err, session.ErrInvalidSession):
		return http.StatusUnauthorized, errorBody{Code: "UNAUTHORIZED", Message: "authentication required"}
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, errorBody{Code: "INVALID_TRANSITION", Message: err.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorBody{Code: "INTERNAL", Message: "internal server error"}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusBadRequest:
		return "VALIDATION_ERROR"
	default:
		return "INTERNAL"
	}
}
