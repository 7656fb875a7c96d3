package ports

import (
	"context"
	"time"

	"github.com/cityhealth/clinic-api/internal/core/domain"
)

// Security event kinds.
const (
	SecurityLoginFailed    = "login_failed"
	SecurityLoginThrottled = "login_throttled"
	SecurityGatewayDenied  = "gateway_denied"
)

// SecurityEventInput is the DTO handed from the edge (auth handler, access
// gateway) to the security event pipeline.
type SecurityEventInput struct {
	Kind     string
	Subject  string
	Role     string
	Path     string
	RemoteIP string
	At       time.Time
}

// SecurityEventService processes security events off the request path.
type SecurityEventService interface {
	Process(ctx context.Context, event SecurityEventInput) error
}

// SecurityEventRepository persists security events.
type SecurityEventRepository interface {
	Insert(ctx context.Context, event *domain.SecurityEvent) error
}

// SecurityRecorder is the enqueue side of the pipeline, implemented by the
// worker dispatcher. Recording is best-effort and must never block a request.
type SecurityRecorder interface {
	Enqueue(event SecurityEventInput)
}
