// internal/app/store/staff/staffstore.go
package staff

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/eventops/crewhub/internal/app/system/normalize"
	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	errNoName  = errors.New("full name is required")
	errNoRole  = errors.New("role is required")
	errBadRate = errors.New("rating must be between 0 and 5")

	// ErrActiveShifts is returned when deleting a profile that still has
	// scheduled or live shifts.
	ErrActiveShifts = errors.New("staff member has active shifts")
)

// Store wraps the staff_profiles collection.
type Store struct {
	c      *mongo.Collection
	shifts *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("staff_profiles"),
		shifts: db.Collection("shifts"),
	}
}

// GetByID loads a staff profile by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.StaffProfile, error) {
	var p models.StaffProfile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new staff profile after normalizing and validating.
func (s *Store) Create(ctx context.Context, p models.StaffProfile) (models.StaffProfile, error) {
	p.ID = primitive.NewObjectID()
	p.FullName = normalize.Name(p.FullName)
	p.FullNameCI = text.Fold(p.FullName)
	p.Role = normalize.Role(p.Role)
	if p.Availability == "" {
		p.Availability = models.AvailabilityAvailable
	}

	if p.FullName == "" {
		return models.StaffProfile{}, errNoName
	}
	if p.Role == "" {
		return models.StaffProfile{}, errNoRole
	}
	if p.Rating < 0 || p.Rating > 5 {
		return models.StaffProfile{}, errBadRate
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.StaffProfile{}, err
	}
	return p, nil
}

// Update replaces the mutable fields of a profile. Identity (ID) and the
// performance counters are not writable through this path.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p models.StaffProfile) error {
	p.FullName = normalize.Name(p.FullName)
	set := bson.M{
		"full_name":    p.FullName,
		"full_name_ci": text.Fold(p.FullName),
		"role":         normalize.Role(p.Role),
		"skills":       p.Skills,
		"city":         p.City,
		"phone":        p.Phone,
		"updated_at":   time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetAvailability updates only the availability status.
func (s *Store) SetAvailability(ctx context.Context, id primitive.ObjectID, availability string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"availability": availability, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// VerifySkill marks the named skill Verified on the profile. Missing
// skill names are added as verified rather than rejected, so an admin
// can verify a capability the profile forgot to list.
func (s *Store) VerifySkill(ctx context.Context, id primitive.ObjectID, skillName string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "skills.name": skillName},
		bson.M{"$set": bson.M{"skills.$.status": models.SkillVerified, "updated_at": now}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	res, err = s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"skills": models.Skill{Name: skillName, Status: models.SkillVerified}},
			"$set":  bson.M{"updated_at": now},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RecordCompletedShift bumps the lifetime completed-shift counter.
func (s *Store) RecordCompletedShift(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"completed_shifts": 1}, "$set": bson.M{"updated_at": time.Now().UTC()}})
	return err
}

// Delete removes a profile, refusing while scheduled or live shifts
// still reference it.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.shifts.CountDocuments(ctx, bson.M{
		"staff_id": id,
		"status":   bson.M{"$in": bson.A{models.ShiftScheduled, models.ShiftLive}},
	})
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrActiveShifts
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Find runs an arbitrary filtered query. The staff list endpoint uses
// this with keyset pagination options.
func (s *Store) Find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.StaffProfile, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.StaffProfile
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CandidatesForRole returns the scorer's candidate pool: profiles whose
// role matches exactly (case-sensitive) and whose availability is
// neither Suspended nor Leave, ordered by _id ascending for a stable
// scoring base order.
func (s *Store) CandidatesForRole(ctx context.Context, role string) ([]models.StaffProfile, error) {
	cur, err := s.c.Find(ctx,
		bson.M{
			"role":         role,
			"availability": bson.M{"$nin": bson.A{models.AvailabilitySuspended, models.AvailabilityLeave}},
		},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var pool []models.StaffProfile
	if err := cur.All(ctx, &pool); err != nil {
		return nil, err
	}
	return pool, nil
}
