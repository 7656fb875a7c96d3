package handler

import "time"

// apiError is the error half of the response envelope.
type apiError struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// envelope is the uniform discriminated result returned by every
// programmatic entry point: {ok:true,data} or {ok:false,error}.
type envelope struct {
	OK    bool      `json:"ok"`
	Data  any       `json:"data,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

// --- Request types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createEncounterRequest struct {
	PatientID string `json:"patientId" validate:"required"`
}

type triageRequest struct {
	SystolicBP      int     `json:"systolic_bp"      validate:"required,gt=0"`
	DiastolicBP     int     `json:"diastolic_bp"     validate:"required,gt=0"`
	HeartRate       int     `json:"heart_rate"       validate:"required,gt=0"`
	RespiratoryRate int     `json:"respiratory_rate" validate:"required,gt=0"`
	TemperatureC    float64 `json:"temperature_c"    validate:"required,gt=25,lt=45"`
	WeightKg        float64 `json:"weight_kg"        validate:"omitempty,gt=0"`
	HeightCm        float64 `json:"height_cm"        validate:"omitempty,gt=0"`
	Notes           string  `json:"notes"`
}

type consultationRequest struct {
	Subjective     string   `json:"subjective" validate:"required"`
	Objective      string   `json:"objective"  validate:"required"`
	Assessment     string   `json:"assessment" validate:"required"`
	Plan           string   `json:"plan"       validate:"required"`
	DiagnosisCodes []string `json:"diagnosis_codes"`
}

// --- Response types ---

type loginResponse struct {
	RedirectTo string `json:"redirectTo"`
}

type encounterResponse struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patient_id"`
	FacilityID string    `json:"facility_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type encounterRefResponse struct {
	EncounterID string `json:"encounterId"`
}
