package ports

import (
	"context"
	"time"

	"github.com/cityhealth/clinic-api/internal/core/domain"
)

// Actor identifies the authenticated staff member performing an operation.
// It is derived from the verified session, never from request input.
type Actor struct {
	ID         string
	Name       string
	Role       domain.Role
	FacilityID string
}

// RegisterEncounterInput carries the data for creating a new encounter.
type RegisterEncounterInput struct {
	PatientID string
	Actor     Actor
}

// CompleteTriageInput carries the triage vitals for one encounter.
type CompleteTriageInput struct {
	EncounterID string
	Vitals      domain.TriageVitals
	Actor       Actor
}

// StartConsultationInput carries the claim request for one encounter.
type StartConsultationInput struct {
	EncounterID string
	Actor       Actor
}

// SaveConsultationInput carries the doctor's consultation note.
type SaveConsultationInput struct {
	EncounterID string
	Note        domain.ConsultationNote
	Actor       Actor
}

// EncounterService defines the use-case operations of the visit lifecycle.
type EncounterService interface {
	Register(ctx context.Context, input RegisterEncounterInput) (*domain.Encounter, error)
	CompleteTriage(ctx context.Context, input CompleteTriageInput) (*domain.Encounter, error)
	StartConsultation(ctx context.Context, input StartConsultationInput) (*domain.Encounter, error)
	SaveConsultation(ctx context.Context, input SaveConsultationInput) (*domain.Encounter, error)
}

// EncounterRepository is the transactional unit of work for encounter
// mutations. Every method performs its guard checks, the domain write, and
// the paired audit write inside one store transaction; there is deliberately
// no way to mutate an encounter without supplying the audit entry.
type EncounterRepository interface {
	// CreateEncounter inserts the encounter after verifying the patient
	// exists (not soft-deleted) and no non-deleted encounter exists for the
	// same patient, facility, and visit day. Returns
	// domain.ErrPatientNotFound or domain.ErrEncounterExists on guard
	// failure.
	CreateEncounter(ctx context.Context, enc *domain.Encounter, audit *domain.AuditEntry) error

	// CompleteTriage moves WAIT_TRIAGE → TRIAGED for an encounter at the
	// given facility, storing the vitals. Any guard mismatch returns
	// domain.ErrEncounterNotFound.
	CompleteTriage(ctx context.Context, encounterID, facilityID string, vitals domain.TriageVitals, audit *domain.AuditEntry) (*domain.Encounter, error)

	// ClaimForConsultation atomically moves TRIAGED → IN_CONSULT, assigns
	// the doctor, and stamps the consultation start time. The status guard
	// is re-checked inside the transaction so that exactly one of two
	// concurrent claims succeeds; the loser gets domain.ErrEncounterNotFound.
	ClaimForConsultation(ctx context.Context, encounterID, facilityID, doctorID string, at time.Time, audit *domain.AuditEntry) (*domain.Encounter, error)

	// SaveConsultation updates the consultation note while the encounter is
	// IN_CONSULT and assigned to the given doctor. Any mismatch returns
	// domain.ErrEncounterNotFound.
	SaveConsultation(ctx context.Context, encounterID, facilityID, doctorID string, note domain.ConsultationNote, audit *domain.AuditEntry) (*domain.Encounter, error)
}
