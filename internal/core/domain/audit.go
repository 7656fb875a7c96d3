package domain

import "time"

// Audit action kinds written by the encounter workflow.
const (
	AuditEncounterCreate  = "encounter.create"
	AuditEncounterTriage  = "encounter.triage"
	AuditEncounterClaim   = "encounter.consultation.start"
	AuditConsultationSave = "encounter.consultation.save"
)

// AuditEntry is an immutable record of one state-changing action. It is
// written in the same store transaction as the mutation it describes and is
// never updated or deleted afterwards.
type AuditEntry struct {
	ActorID    string            `json:"actor_id" bson:"actor_id"`
	ActorName  string            `json:"actor_name" bson:"actor_name"`
	Action     string            `json:"action" bson:"action"`
	EntityType string            `json:"entity_type" bson:"entity_type"`
	EntityID   string            `json:"entity_id" bson:"entity_id"`
	Metadata   map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
}

// SecurityEvent records an observational security fact (failed login,
// gateway denial). Unlike AuditEntry it is not transaction-bound: losing one
// under load is acceptable, blocking a request on it is not.
type SecurityEvent struct {
	Kind     string    `json:"kind" bson:"kind"`
	Subject  string    `json:"subject" bson:"subject"`
	Role     string    `json:"role,omitempty" bson:"role,omitempty"`
	Path     string    `json:"path,omitempty" bson:"path,omitempty"`
	RemoteIP string    `json:"remote_ip,omitempty" bson:"remote_ip,omitempty"`
	At       time.Time `json:"at" bson:"at"`
}
