package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cityhealth/clinic-api/internal/api/metrics"
	"github.com/cityhealth/clinic-api/internal/core/domain"
	"github.com/cityhealth/clinic-api/internal/core/ports"
)

type securityEventService struct {
	repo ports.SecurityEventRepository
	log  zerolog.Logger
}

// NewSecurityEventService returns a SecurityEventService that persists
// failed logins and gateway denials for later review. These records are
// observational: they are intentionally outside the audit transaction.
func NewSecurityEventService(repo ports.SecurityEventRepository, log zerolog.Logger) ports.SecurityEventService {
	return &securityEventService{repo: repo, log: log}
}

// Process persists a single security event.
func (s *securityEventService) Process(ctx context.Context, in ports.SecurityEventInput) error {
	at := in.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	event := &domain.SecurityEvent{
		Kind:     in.Kind,
		Subject:  in.Subject,
		Role:     in.Role,
		Path:     in.Path,
		RemoteIP: in.RemoteIP,
		At:       at,
	}

	if err := s.repo.Insert(ctx, event); err != nil {
		return fmt.Errorf("process security event: %w", err)
	}

	metrics.SecurityEventsTotal.WithLabelValues(in.Kind).Inc()
	s.log.Debug().
		Str("kind", in.Kind).
		Str("subject", in.Subject).
		Str("path", in.Path).
		Msg("security event recorded")

	return nil
}
