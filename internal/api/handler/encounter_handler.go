package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cityhealth/clinic-api/internal/core/domain"
	"github.com/cityhealth/clinic-api/internal/core/ports"
)

// EncounterHandler handles the encounter lifecycle entry points.
type EncounterHandler struct {
	service ports.EncounterService
}

func NewEncounterHandler(service ports.EncounterService) *EncounterHandler {
	return &EncounterHandler{service: service}
}

// Create registers a new encounter for a patient.
//
// @Summary      Register a patient visit
// @Tags         encounters
// @Accept       json
// @Produce      json
// @Param        body  body      createEncounterRequest  true  "Patient reference"
// @Success      201   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Failure      409   {object}  envelope
// @Router       /api/v1/encounters [post]
func (h *EncounterHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createEncounterRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	enc, err := h.service.Register(c.Request().Context(), ports.RegisterEncounterInput{
		PatientID: req.PatientID,
		Actor:     actor,
	})
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondOK(c, http.StatusCreated, encounterResponse{
		ID:         enc.ID,
		PatientID:  enc.PatientID,
		FacilityID: enc.FacilityID,
		Status:     string(enc.Status),
		OccurredAt: enc.OccurredAt,
	})
}

// CompleteTriage records vitals and moves the encounter to TRIAGED.
//
// @Summary      Complete triage for an encounter
// @Tags         encounters
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Encounter id"
// @Param        body  body      triageRequest  true  "Triage vitals"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /api/v1/encounters/{id}/triage [post]
func (h *EncounterHandler) CompleteTriage(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req triageRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	enc, err := h.service.CompleteTriage(c.Request().Context(), ports.CompleteTriageInput{
		EncounterID: c.Param("id"),
		Vitals: domain.TriageVitals{
			SystolicBP:      req.SystolicBP,
			DiastolicBP:     req.DiastolicBP,
			HeartRate:       req.HeartRate,
			RespiratoryRate: req.RespiratoryRate,
			TemperatureC:    req.TemperatureC,
			WeightKg:        req.WeightKg,
			HeightCm:        req.HeightCm,
			Notes:           req.Notes,
		},
		Actor: actor,
	})
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondOK(c, http.StatusOK, encounterRefResponse{EncounterID: enc.ID})
}

// StartConsultation claims a TRIAGED encounter for the calling doctor.
//
// @Summary      Start a consultation
// @Tags         encounters
// @Produce      json
// @Param        id  path  string  true  "Encounter id"
// @Success      200  {object}  envelope
// @Failure      404  {object}  envelope
// @Router       /api/v1/encounters/{id}/consultation/start [post]
func (h *EncounterHandler) StartConsultation(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	enc, err := h.service.StartConsultation(c.Request().Context(), ports.StartConsultationInput{
		EncounterID: c.Param("id"),
		Actor:       actor,
	})
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondOK(c, http.StatusOK, encounterRefResponse{EncounterID: enc.ID})
}

// SaveConsultation stores the doctor's consultation note.
//
// @Summary      Save consultation data
// @Tags         encounters
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Encounter id"
// @Param        body  body      consultationRequest  true  "Consultation note"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Router       /api/v1/encounters/{id}/consultation [put]
func (h *EncounterHandler) SaveConsultation(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req consultationRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	enc, err := h.service.SaveConsultation(c.Request().Context(), ports.SaveConsultationInput{
		EncounterID: c.Param("id"),
		Note: domain.ConsultationNote{
			Subjective:     req.Subjective,
			Objective:      req.Objective,
			Assessment:     req.Assessment,
			Plan:           req.Plan,
			DiagnosisCodes: req.DiagnosisCodes,
		},
		Actor: actor,
	})
	if err != nil {
		return respondDomainError(c, err)
	}

	return respondOK(c, http.StatusOK, encounterRefResponse{EncounterID: enc.ID})
}
