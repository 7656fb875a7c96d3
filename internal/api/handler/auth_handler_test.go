package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cityhealth/clinic-api/internal/core/domain"
	"github.com/cityhealth/clinic-api/internal/core/ports"
)

type stubAuthService struct {
	result *ports.LoginResult
	err    error
}

func (s *stubAuthService) Login(_ context.Context, _, _ string) (*ports.LoginResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type recordingSecurity struct {
	events []ports.SecurityEventInput
}

func (r *recordingSecurity) Enqueue(event ports.SecurityEventInput) {
	r.events = append(r.events, event)
}

type envelopeBody struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code        string            `json:"code"`
		Message     string            `json:"message"`
		FieldErrors map[string]string `json:"fieldErrors"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var body envelopeBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return body
}

func testCookieSettings() CookieSettings {
	return CookieSettings{Name: "cho_session", TTL: time.Hour, Secure: true}
}

func postJSON(t *testing.T, e *echo.Echo, h echo.HandlerFunc, target, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &stubAuthService{result: &ports.LoginResult{
		Token:      "signed-token",
		RedirectTo: "/doctor",
	}}
	h := NewAuthHandler(svc, testCookieSettings(), nil)

	rec := postJSON(t, newEcho(), h.Login, "/api/v1/auth/login",
		`{"email":"doc@cho.gov","password":"s3cret"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if !body.OK {
		t.Fatal("expected ok=true")
	}
	var data loginResponse
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.RedirectTo != "/doctor" {
		t.Errorf("redirectTo = %q, want /doctor", data.RedirectTo)
	}

	setCookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(setCookie, "cho_session=signed-token") {
		t.Errorf("session cookie not set, Set-Cookie = %q", setCookie)
	}
	if !strings.Contains(setCookie, "HttpOnly") || !strings.Contains(setCookie, "Secure") {
		t.Errorf("session cookie must be HttpOnly and Secure, got %q", setCookie)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	security := &recordingSecurity{}
	h := NewAuthHandler(&stubAuthService{err: domain.ErrInvalidCredentials}, testCookieSettings(), security)

	rec := postJSON(t, newEcho(), h.Login, "/api/v1/auth/login",
		`{"email":"doc@cho.gov","password":"wrong"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.OK || body.Error == nil || body.Error.Code != "INVALID_CREDENTIALS" {
		t.Fatalf("expected INVALID_CREDENTIALS envelope, got %q", rec.Body.String())
	}
	if rec.Header().Get("Set-Cookie") != "" {
		t.Error("failed login must not set a cookie")
	}
	if len(security.events) != 1 || security.events[0].Kind != ports.SecurityLoginFailed {
		t.Errorf("expected one login_failed security event, got %+v", security.events)
	}
}

func TestAuthHandler_Login_Throttled(t *testing.T) {
	security := &recordingSecurity{}
	h := NewAuthHandler(&stubAuthService{err: domain.ErrTooManyAttempts}, testCookieSettings(), security)

	rec := postJSON(t, newEcho(), h.Login, "/api/v1/auth/login",
		`{"email":"doc@cho.gov","password":"s3cret"}`)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error == nil || body.Error.Code != "TOO_MANY_ATTEMPTS" {
		t.Fatalf("expected TOO_MANY_ATTEMPTS envelope, got %q", rec.Body.String())
	}
	if len(security.events) != 1 || security.events[0].Kind != ports.SecurityLoginThrottled {
		t.Errorf("expected one login_throttled security event, got %+v", security.events)
	}
}

func TestAuthHandler_Login_ValidationError(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, testCookieSettings(), nil)

	rec := postJSON(t, newEcho(), h.Login, "/api/v1/auth/login",
		`{"email":"not-an-email"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error == nil || body.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR envelope, got %q", rec.Body.String())
	}
	if _, ok := body.Error.FieldErrors["email"]; !ok {
		t.Errorf("expected a field error for email, got %v", body.Error.FieldErrors)
	}
	if _, ok := body.Error.FieldErrors["password"]; !ok {
		t.Errorf("expected a field error for password, got %v", body.Error.FieldErrors)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, testCookieSettings(), nil)

	e := newEcho()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if rec.Code != http.StatusFound {
		t.Fatalf("status %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	setCookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(setCookie, "cho_session=;") && !strings.Contains(setCookie, "Max-Age=0") {
		t.Errorf("logout must clear the session cookie, got %q", setCookie)
	}
}
