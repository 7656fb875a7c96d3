package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cityhealth/clinic-api/internal/core/domain"
)

const securityEventsCollection = "security_events"

// SecurityEventRepository persists observational security events. These are
// append-only but, unlike audit_log, not bound to any domain transaction.
type SecurityEventRepository struct {
	coll *mongo.Collection
}

func NewSecurityEventRepository(db *mongo.Database) *SecurityEventRepository {
	return &SecurityEventRepository{coll: db.Collection(securityEventsCollection)}
}

func (r *SecurityEventRepository) Insert(ctx context.Context, event *domain.SecurityEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, event)
	return err
}
