package domain

import (
	"errors"
	"time"
)

// EncounterStatus represents the lifecycle state of a patient visit.
type EncounterStatus string

const (
	StatusWaitTriage EncounterStatus = "WAIT_TRIAGE"
	StatusTriaged    EncounterStatus = "TRIAGED"
	StatusInConsult  EncounterStatus = "IN_CONSULT"
	// StatusCompleted is reserved; no operation currently reaches it. Whether
	// saving a consultation closes the visit is pending a decision from the
	// health office.
	StatusCompleted EncounterStatus = "COMPLETED"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[EncounterStatus][]EncounterStatus{
	StatusWaitTriage: {StatusTriaged},
	StatusTriaged:    {StatusInConsult},
	StatusInConsult:  {StatusCompleted},
}

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrEncounterNotFound = errors.New("encounter not found")
var ErrEncounterExists = errors.New("encounter already exists for this patient today")
var ErrPatientNotFound = errors.New("patient not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrSessionIssue = errors.New("session could not be issued")
var ErrTooManyAttempts = errors.New("too many login attempts")
var ErrForbidden = errors.New("access forbidden")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s EncounterStatus) CanTransitionTo(next EncounterStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TriageVitals is the clinical payload recorded at triage. The core stores
// it as-is; interpretation belongs to the clinical modules.
type TriageVitals struct {
	SystolicBP      int     `json:"systolic_bp" bson:"systolic_bp"`
	DiastolicBP     int     `json:"diastolic_bp" bson:"diastolic_bp"`
	HeartRate       int     `json:"heart_rate" bson:"heart_rate"`
	RespiratoryRate int     `json:"respiratory_rate" bson:"respiratory_rate"`
	TemperatureC    float64 `json:"temperature_c" bson:"temperature_c"`
	WeightKg        float64 `json:"weight_kg" bson:"weight_kg"`
	HeightCm        float64 `json:"height_cm" bson:"height_cm"`
	Notes           string  `json:"notes,omitempty" bson:"notes,omitempty"`
}

// ConsultationNote is the doctor's SOAP record for one visit.
type ConsultationNote struct {
	Subjective     string   `json:"subjective" bson:"subjective"`
	Objective      string   `json:"objective" bson:"objective"`
	Assessment     string   `json:"assessment" bson:"assessment"`
	Plan           string   `json:"plan" bson:"plan"`
	DiagnosisCodes []string `json:"diagnosis_codes,omitempty" bson:"diagnosis_codes,omitempty"`
}

// Encounter is one clinical visit of one patient at one facility.
type Encounter struct {
	ID         string          `json:"id" bson:"_id,omitempty"`
	PatientID  string          `json:"patient_id" bson:"patient_id"`
	FacilityID string          `json:"facility_id" bson:"facility_id"`
	Status     EncounterStatus `json:"status" bson:"status"`
	DoctorID   string          `json:"doctor_id,omitempty" bson:"doctor_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at" bson:"occurred_at"`
	// VisitDay is OccurredAt rendered as YYYY-MM-DD in the facility's local
	// calendar; it backs the one-visit-per-day unique index.
	VisitDay         string            `json:"visit_day" bson:"visit_day"`
	ConsultStartedAt *time.Time        `json:"consult_started_at,omitempty" bson:"consult_started_at,omitempty"`
	Vitals           *TriageVitals     `json:"vitals,omitempty" bson:"vitals,omitempty"`
	Consultation     *ConsultationNote `json:"consultation,omitempty" bson:"consultation,omitempty"`
	Deleted          bool              `json:"-" bson:"deleted"`
	CreatedAt        time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at" bson:"updated_at"`
}
