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
	"github.com/cityhealth/clinic-api/internal/core/session"
)

// stubEncounterService records the last input per operation and replays a
// canned result.
type stubEncounterService struct {
	enc *domain.Encounter
	err error

	lastRegister ports.RegisterEncounterInput
	lastTriage   ports.CompleteTriageInput
	lastClaim    ports.StartConsultationInput
	lastSave     ports.SaveConsultationInput
}

func (s *stubEncounterService) Register(_ context.Context, input ports.RegisterEncounterInput) (*domain.Encounter, error) {
	s.lastRegister = input
	return s.enc, s.err
}

func (s *stubEncounterService) CompleteTriage(_ context.Context, input ports.CompleteTriageInput) (*domain.Encounter, error) {
	s.lastTriage = input
	return s.enc, s.err
}

func (s *stubEncounterService) StartConsultation(_ context.Context, input ports.StartConsultationInput) (*domain.Encounter, error) {
	s.lastClaim = input
	return s.enc, s.err
}

func (s *stubEncounterService) SaveConsultation(_ context.Context, input ports.SaveConsultationInput) (*domain.Encounter, error) {
	s.lastSave = input
	return s.enc, s.err
}

func sampleEncounter() *domain.Encounter {
	return &domain.Encounter{
		ID:         "ENC-0000AB12",
		PatientID:  "pat-1",
		FacilityID: "fac-1",
		Status:     domain.StatusWaitTriage,
		OccurredAt: time.Now().UTC(),
	}
}

// encounterContext builds an echo context carrying the session a passed
// RequireSession would have injected.
func encounterContext(e *echo.Echo, method, target, payload string, sess *session.Session, paramID string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if payload != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if sess != nil {
		c.Set("session", sess)
	}
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	return c, rec
}

func registrationSession() *session.Session {
	return &session.Session{SubjectID: "reg-1", Name: "Clerk One", Role: domain.RoleRegistration, FacilityID: "fac-1"}
}

func doctorSession() *session.Session {
	return &session.Session{SubjectID: "doc-1", Name: "Dr. Reyes", Role: domain.RoleDoctor, FacilityID: "fac-1"}
}

func TestEncounterHandler_Create(t *testing.T) {
	svc := &stubEncounterService{enc: sampleEncounter()}
	h := NewEncounterHandler(svc)

	c, rec := encounterContext(newEcho(), http.MethodPost, "/api/v1/encounters",
		`{"patientId":"pat-1"}`, registrationSession(), "")
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if !body.OK {
		t.Fatalf("expected ok=true, got %q", rec.Body.String())
	}
	var data encounterResponse
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.ID != "ENC-0000AB12" || data.Status != "WAIT_TRIAGE" {
		t.Errorf("unexpected response data: %+v", data)
	}
	if svc.lastRegister.PatientID != "pat-1" {
		t.Errorf("service saw patient %q, want pat-1", svc.lastRegister.PatientID)
	}
	if svc.lastRegister.Actor.ID != "reg-1" || svc.lastRegister.Actor.FacilityID != "fac-1" {
		t.Errorf("actor not derived from session: %+v", svc.lastRegister.Actor)
	}
}

func TestEncounterHandler_Create_MissingPatient(t *testing.T) {
	h := NewEncounterHandler(&stubEncounterService{})

	c, rec := encounterContext(newEcho(), http.MethodPost, "/api/v1/encounters",
		`{}`, registrationSession(), "")
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error == nil || body.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %q", rec.Body.String())
	}
}

func TestEncounterHandler_Create_DuplicateDay(t *testing.T) {
	h := NewEncounterHandler(&stubEncounterService{err: domain.ErrEncounterExists})

	c, rec := encounterContext(newEcho(), http.MethodPost, "/api/v1/encounters",
		`{"patientId":"pat-1"}`, registrationSession(), "")
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error == nil || body.Error.Code != "ENCOUNTER_EXISTS" {
		t.Fatalf("expected ENCOUNTER_EXISTS, got %q", rec.Body.String())
	}
}

func TestEncounterHandler_Create_NoSession(t *testing.T) {
	h := NewEncounterHandler(&stubEncounterService{})

	c, rec := encounterContext(newEcho(), http.MethodPost, "/api/v1/encounters",
		`{"patientId":"pat-1"}`, nil, "")
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
}

func TestEncounterHandler_CompleteTriage(t *testing.T) {
	enc := sampleEncounter()
	enc.Status = domain.StatusTriaged
	svc := &stubEncounterService{enc: enc}
	h := NewEncounterHandler(svc)

	payload := `{"systolic_bp":120,"diastolic_bp":80,"heart_rate":72,"respiratory_rate":16,"temperature_c":36.6}`
	triageSess := &session.Session{SubjectID: "tri-1", Name: "Nurse One", Role: domain.RoleTriage, FacilityID: "fac-1"}
	c, rec := encounterContext(newEcho(), http.MethodPost, "/api/v1/encounters/ENC-0000AB12/triage",
		payload, triageSess, "ENC-0000AB12")
	if err := h.CompleteTriage(c); err != nil {
		t.Fatalf("complete triage: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if svc.lastTriage.EncounterID != "ENC-0000AB12" {
		t.Errorf("service saw encounter %q", svc.lastTriage.EncounterID)
	}
	if svc.lastTriage.Vitals.SystolicBP != 120 || svc.lastTriage.Vitals.TemperatureC != 36.6 {
		t.Errorf("vitals not passed through: %+v", svc.lastTriage.Vitals)
	}
}

func TestEncounterHandler_CompleteTriage_InvalidVitals(t *testing.T) {
	h := NewEncounterHandler(&stubEncounterService{})

	// Temperature far outside the plausible range.
	payload := `{"systolic_bp":120,"diastolic_bp":80,"heart_rate":72,"respiratory_rate":16,"temperature_c":80}`
	triageSess := &session.Session{SubjectID: "tri-1", Role: domain.RoleTriage, FacilityID: "fac-1"}
	c, rec := encounterContext(newEcho(), http.MethodPost, "/api/v1/encounters/ENC-1/triage",
		payload, triageSess, "ENC-1")
	if err := h.CompleteTriage(c); err != nil {
		t.Fatalf("complete triage: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error == nil || body.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %q", rec.Body.String())
	}
	if _, ok := body.Error.FieldErrors["temperaturec"]; !ok {
		t.Errorf("expected a field error for the temperature, got %v", body.Error.FieldErrors)
	}
}

func TestEncounterHandler_StartConsultation(t *testing.T) {
	enc := sampleEncounter()
	enc.Status = domain.StatusInConsult
	enc.DoctorID = "doc-1"
	svc := &stubEncounterService{enc: enc}
	h := NewEncounterHandler(svc)

	c, rec := encounterContext(newEcho(), http.MethodPost,
		"/api/v1/encounters/ENC-0000AB12/consultation/start", "", doctorSession(), "ENC-0000AB12")
	if err := h.StartConsultation(c); err != nil {
		t.Fatalf("start consultation: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	var data encounterRefResponse
	body := decodeEnvelope(t, rec)
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.EncounterID != "ENC-0000AB12" {
		t.Errorf("encounterId = %q", data.EncounterID)
	}
	if svc.lastClaim.Actor.ID != "doc-1" {
		t.Errorf("claim actor = %+v, want doc-1", svc.lastClaim.Actor)
	}
}

func TestEncounterHandler_StartConsultation_LostClaimMasked(t *testing.T) {
	h := NewEncounterHandler(&stubEncounterService{err: domain.ErrEncounterNotFound})

	c, rec := encounterContext(newEcho(), http.MethodPost,
		"/api/v1/encounters/ENC-1/consultation/start", "", doctorSession(), "ENC-1")
	if err := h.StartConsultation(c); err != nil {
		t.Fatalf("start consultation: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error == nil || body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %q", rec.Body.String())
	}
	// The message must not reveal whether the encounter exists, is at
	// another facility, or was claimed first.
	if strings.Contains(strings.ToLower(body.Error.Message), "claim") ||
		strings.Contains(strings.ToLower(body.Error.Message), "facility") {
		t.Errorf("masked error leaks detail: %q", body.Error.Message)
	}
}

func TestEncounterHandler_SaveConsultation(t *testing.T) {
	enc := sampleEncounter()
	enc.Status = domain.StatusInConsult
	enc.DoctorID = "doc-1"
	svc := &stubEncounterService{enc: enc}
	h := NewEncounterHandler(svc)

	payload := `{"subjective":"cough","objective":"clear lungs","assessment":"viral URI","plan":"rest","diagnosis_codes":["J06.9"]}`
	c, rec := encounterContext(newEcho(), http.MethodPut,
		"/api/v1/encounters/ENC-0000AB12/consultation", payload, doctorSession(), "ENC-0000AB12")
	if err := h.SaveConsultation(c); err != nil {
		t.Fatalf("save consultation: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if svc.lastSave.Note.Assessment != "viral URI" {
		t.Errorf("note not passed through: %+v", svc.lastSave.Note)
	}
	if len(svc.lastSave.Note.DiagnosisCodes) != 1 || svc.lastSave.Note.DiagnosisCodes[0] != "J06.9" {
		t.Errorf("diagnosis codes not passed through: %v", svc.lastSave.Note.DiagnosisCodes)
	}
}

func TestEncounterHandler_SaveConsultation_IncompleteNote(t *testing.T) {
	h := NewEncounterHandler(&stubEncounterService{})

	c, rec := encounterContext(newEcho(), http.MethodPut,
		"/api/v1/encounters/ENC-1/consultation", `{"subjective":"cough"}`, doctorSession(), "ENC-1")
	if err := h.SaveConsultation(c); err != nil {
		t.Fatalf("save consultation: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if body := decodeEnvelope(t, rec); body.Error == nil || body.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %q", rec.Body.String())
	}
}
