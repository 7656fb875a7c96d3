package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cityhealth/clinic-api/internal/api/metrics"
	"github.com/cityhealth/clinic-api/internal/core/domain"
	"github.com/cityhealth/clinic-api/internal/core/ports"
)

// EncounterService drives the visit lifecycle. Guard checks that depend on
// the current stored state (duplicate day, TRIAGED claim, assigned doctor)
// live in the repository transaction; this layer composes actor checks,
// audit entries, logging, and metrics around them.
type EncounterService struct {
	repo ports.EncounterRepository
	// loc is the facility's local calendar used for the one-visit-per-day rule.
	loc *time.Location
	log zerolog.Logger
}

func NewEncounterService(repo ports.EncounterRepository, loc *time.Location, log zerolog.Logger) *EncounterService {
	if loc == nil {
		loc = time.UTC
	}
	return &EncounterService{repo: repo, loc: loc, log: log}
}

// Register creates a new encounter in WAIT_TRIAGE for the actor's facility.
// Only REGISTRATION staff may register visits.
func (s *EncounterService) Register(ctx context.Context, input ports.RegisterEncounterInput) (*domain.Encounter, error) {
	if input.Actor.Role != domain.RoleRegistration {
		return nil, domain.ErrForbidden
	}
	if input.PatientID == "" {
		return nil, domain.ErrPatientNotFound
	}

	now := time.Now().UTC()
	enc := &domain.Encounter{
		ID:         generateEncounterID(),
		PatientID:  input.PatientID,
		FacilityID: input.Actor.FacilityID,
		Status:     domain.StatusWaitTriage,
		OccurredAt: now,
		VisitDay:   now.In(s.loc).Format("2006-01-02"),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	audit := s.auditEntry(input.Actor, domain.AuditEncounterCreate, enc.ID, map[string]string{
		"patient_id":  input.PatientID,
		"next_status": string(domain.StatusWaitTriage),
	})

	if err := s.repo.CreateEncounter(ctx, enc, audit); err != nil {
		s.log.Warn().Err(err).Str("patient_id", input.PatientID).Msg("encounter registration rejected")
		return nil, err
	}

	metrics.EncountersCreatedTotal.Inc()
	s.log.Info().
		Str("encounter_id", enc.ID).
		Str("patient_id", enc.PatientID).
		Str("actor_id", input.Actor.ID).
		Msg("encounter registered")

	return enc, nil
}

// CompleteTriage records the vitals and moves WAIT_TRIAGE → TRIAGED.
// Allowed for TRIAGE staff and ADMIN at the encounter's facility.
func (s *EncounterService) CompleteTriage(ctx context.Context, input ports.CompleteTriageInput) (*domain.Encounter, error) {
	if input.Actor.Role != domain.RoleTriage && input.Actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	audit := s.auditEntry(input.Actor, domain.AuditEncounterTriage, input.EncounterID, map[string]string{
		"prev_status": string(domain.StatusWaitTriage),
		"next_status": string(domain.StatusTriaged),
	})

	enc, err := s.repo.CompleteTriage(ctx, input.EncounterID, input.Actor.FacilityID, input.Vitals, audit)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("encounter_id", enc.ID).
		Str("actor_id", input.Actor.ID).
		Msg("triage completed")

	return enc, nil
}

// StartConsultation is the exclusive-claim operation: it atomically moves
// TRIAGED → IN_CONSULT and assigns the calling doctor. Under two concurrent
// claims exactly one succeeds; the other observes ErrEncounterNotFound.
// Absent, soft-deleted, other-facility, and wrong-state encounters are all
// reported identically as not found.
func (s *EncounterService) StartConsultation(ctx context.Context, input ports.StartConsultationInput) (*domain.Encounter, error) {
	if input.Actor.Role != domain.RoleDoctor {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	audit := s.auditEntry(input.Actor, domain.AuditEncounterClaim, input.EncounterID, map[string]string{
		"prev_status": string(domain.StatusTriaged),
		"next_status": string(domain.StatusInConsult),
		"doctor_id":   input.Actor.ID,
	})

	start := time.Now()
	enc, err := s.repo.ClaimForConsultation(ctx, input.EncounterID, input.Actor.FacilityID, input.Actor.ID, now, audit)
	metrics.TransitionDuration.WithLabelValues("start_consultation").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ConsultClaimsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	metrics.ConsultClaimsTotal.WithLabelValues("claimed").Inc()
	s.log.Info().
		Str("encounter_id", enc.ID).
		Str("doctor_id", input.Actor.ID).
		Str("patient_id", enc.PatientID).
		Msg("consultation started")

	return enc, nil
}

// SaveConsultation updates the consultation note. Only the assigned doctor
// may write, and only while the encounter is IN_CONSULT; the status is left
// unchanged.
func (s *EncounterService) SaveConsultation(ctx context.Context, input ports.SaveConsultationInput) (*domain.Encounter, error) {
	if input.Actor.Role != domain.RoleDoctor {
		return nil, domain.ErrForbidden
	}

	audit := s.auditEntry(input.Actor, domain.AuditConsultationSave, input.EncounterID, map[string]string{
		"status": string(domain.StatusInConsult),
	})

	enc, err := s.repo.SaveConsultation(ctx, input.EncounterID, input.Actor.FacilityID, input.Actor.ID, input.Note, audit)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("encounter_id", enc.ID).
		Str("doctor_id", input.Actor.ID).
		Msg("consultation saved")

	return enc, nil
}

func (s *EncounterService) auditEntry(actor ports.Actor, action, entityID string, metadata map[string]string) *domain.AuditEntry {
	return &domain.AuditEntry{
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Action:     action,
		EntityType: "encounter",
		EntityID:   entityID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
}

// generateEncounterID returns a unique encounter id in the format ENC-XXXXXXXX.
func generateEncounterID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("ENC-%08X", time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("ENC-%08X", b)
}
