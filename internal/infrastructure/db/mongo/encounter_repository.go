package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cityhealth/clinic-api/internal/core/domain"
)

const (
	encountersCollection = "encounters"
	patientsCollection   = "patients"
	auditCollection      = "audit_log"
)

// EncounterRepository implements ports.EncounterRepository on MongoDB.
//
// Every mutation runs inside a multi-document transaction so that the guard
// check, the encounter write, and the audit write commit or roll back as one
// unit. The store is the sole locus of mutual exclusion: two concurrent
// claims serialize here, not in process memory.
type EncounterRepository struct {
	db *mongo.Database
}

func NewEncounterRepository(db *mongo.Database) *EncounterRepository {
	return &EncounterRepository{db: db}
}

func (r *EncounterRepository) encounters() *mongo.Collection {
	return r.db.Collection(encountersCollection)
}

// withTransaction runs fn inside one MongoDB transaction.
func (r *EncounterRepository) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	sess, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// CreateEncounter verifies the patient and the one-visit-per-day invariant,
// then inserts the encounter and its audit entry atomically.
func (r *EncounterRepository) CreateEncounter(ctx context.Context, enc *domain.Encounter, audit *domain.AuditEntry) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		patientFilter := bson.M{"_id": enc.PatientID, "deleted": bson.M{"$ne": true}}
		if err := r.db.Collection(patientsCollection).FindOne(sc, patientFilter).Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return domain.ErrPatientNotFound
			}
			return err
		}

		dupFilter := bson.M{
			"patient_id":  enc.PatientID,
			"facility_id": enc.FacilityID,
			"visit_day":   enc.VisitDay,
			"deleted":     bson.M{"$ne": true},
		}
		n, err := r.encounters().CountDocuments(sc, dupFilter)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrEncounterExists
		}

		if _, err := r.encounters().InsertOne(sc, enc); err != nil {
			// Unique index backstop for two same-day registrations racing
			// past the count.
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrEncounterExists
			}
			return err
		}

		_, err = r.db.Collection(auditCollection).InsertOne(sc, audit)
		return err
	})
}

// CompleteTriage moves WAIT_TRIAGE → TRIAGED, guarded on facility and
// current status inside the transaction.
func (r *EncounterRepository) CompleteTriage(ctx context.Context, encounterID, facilityID string, vitals domain.TriageVitals, audit *domain.AuditEntry) (*domain.Encounter, error) {
	filter := bson.M{
		"_id":         encounterID,
		"facility_id": facilityID,
		"status":      domain.StatusWaitTriage,
		"deleted":     bson.M{"$ne": true},
	}
	update := bson.M{"$set": bson.M{
		"status":     domain.StatusTriaged,
		"vitals":     vitals,
		"updated_at": time.Now().UTC(),
	}}
	return r.guardedUpdate(ctx, filter, update, audit)
}

// ClaimForConsultation atomically moves TRIAGED → IN_CONSULT and assigns the
// doctor. The status filter is evaluated inside the same transaction as the
// update and the audit insert, so of two simultaneous claims exactly one
// matches; the other sees no document and gets ErrEncounterNotFound.
func (r *EncounterRepository) ClaimForConsultation(ctx context.Context, encounterID, facilityID, doctorID string, at time.Time, audit *domain.AuditEntry) (*domain.Encounter, error) {
	filter := bson.M{
		"_id":         encounterID,
		"facility_id": facilityID,
		"status":      domain.StatusTriaged,
		"deleted":     bson.M{"$ne": true},
	}
	update := bson.M{"$set": bson.M{
		"status":             domain.StatusInConsult,
		"doctor_id":          doctorID,
		"consult_started_at": at,
		"updated_at":         at,
	}}
	return r.guardedUpdate(ctx, filter, update, audit)
}

// SaveConsultation stores the note while IN_CONSULT and assigned to doctorID.
func (r *EncounterRepository) SaveConsultation(ctx context.Context, encounterID, facilityID, doctorID string, note domain.ConsultationNote, audit *domain.AuditEntry) (*domain.Encounter, error) {
	filter := bson.M{
		"_id":         encounterID,
		"facility_id": facilityID,
		"doctor_id":   doctorID,
		"status":      domain.StatusInConsult,
		"deleted":     bson.M{"$ne": true},
	}
	update := bson.M{"$set": bson.M{
		"consultation": note,
		"updated_at":   time.Now().UTC(),
	}}
	return r.guardedUpdate(ctx, filter, update, audit)
}

// guardedUpdate performs a filtered FindOneAndUpdate plus the audit insert in
// one transaction. A non-matching filter — absent, soft-deleted, wrong
// facility, wrong status, wrong doctor — uniformly yields
// ErrEncounterNotFound.
func (r *EncounterRepository) guardedUpdate(ctx context.Context, filter, update bson.M, audit *domain.AuditEntry) (*domain.Encounter, error) {
	var enc domain.Encounter
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if err := r.encounters().FindOneAndUpdate(sc, filter, update, opts).Decode(&enc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return domain.ErrEncounterNotFound
			}
			return err
		}

		_, err := r.db.Collection(auditCollection).InsertOne(sc, audit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &enc, nil
}

// EnsureIndexes creates the indexes backing the encounter invariants. The
// partial unique index on (patient_id, facility_id, visit_day) over
// non-deleted documents enforces one visit per patient per facility per day
// even if two transactions race.
func (r *EncounterRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "patient_id", Value: 1},
				{Key: "facility_id", Value: 1},
				{Key: "visit_day", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"deleted": bson.M{"$ne": true}}),
		},
		{Keys: bson.D{{Key: "facility_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "doctor_id", Value: 1}}},
	}

	_, err := r.encounters().Indexes().CreateMany(ctx, indexes)
	return err
}
