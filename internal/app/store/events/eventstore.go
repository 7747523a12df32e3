// internal/app/store/events/eventstore.go
package events

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
	// ErrQuotaFull is returned when an assignment would exceed the
	// role's required headcount. The append is a single conditional
	// document update, so two racing callers can never both get past
	// the quota.
	ErrQuotaFull = errors.New("role quota is already filled")

	// ErrAlreadyAssigned is returned when the staff member already
	// holds a non-rejected assignment on the event.
	ErrAlreadyAssigned = errors.New("staff member is already assigned to this event")

	// ErrRoleNotRequired is returned when assigning a role the event
	// does not require.
	ErrRoleNotRequired = errors.New("event does not require this role")

	// ErrActiveShifts is returned when deleting an event that still has
	// scheduled or live shifts.
	ErrActiveShifts = errors.New("event has active shifts")

	errNoTitle = errors.New("title is required")
)

// Store wraps the events collection.
type Store struct {
	c      *mongo.Collection
	shifts *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:      db.Collection("events"),
		shifts: db.Collection("shifts"),
	}
}

// GetByID loads an event by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event after normalizing and validating.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = primitive.NewObjectID()
	e.Title = normalize.Name(e.Title)
	e.TitleCI = text.Fold(e.Title)
	if e.Status == "" {
		e.Status = models.EventDraft
	}
	if e.Filled == nil {
		e.Filled = map[string]int{}
	}

	if e.Title == "" {
		return models.Event{}, errNoTitle
	}

	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// Update replaces the editable fields of an event. Assignments and the
// filled counters are only written through the assignment paths.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, e models.Event) error {
	e.Title = normalize.Name(e.Title)
	set := bson.M{
		"title":          e.Title,
		"title_ci":       text.Fold(e.Title),
		"description":    e.Description,
		"location":       e.Location,
		"start_at":       e.StartAt,
		"end_at":         e.EndAt,
		"status":         e.Status,
		"required_roles": e.RequiredRoles,
		"budget":         e.Budget,
		"updated_at":     time.Now().UTC(),
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

// Delete removes an event, refusing while scheduled or live shifts
// still reference it.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.shifts.CountDocuments(ctx, bson.M{
		"event_id": id,
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

// Cancel marks the event cancelled. Cancelling the event's scheduled
// shifts is the shift store's job; callers chain the two.
func (s *Store) Cancel(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.EventCancelled, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AppendApprovedAssignment appends an approved assignment for the role,
// guarded by the quota in the same document update:
//
//	filter: filled[role] < required_roles[role]
//	        AND no non-rejected assignment for this staff member
//	update: $push assignment, $inc filled[role]
//
// Matching zero documents is disambiguated with a follow-up read into
// ErrQuotaFull, ErrAlreadyAssigned, ErrRoleNotRequired, or
// mongo.ErrNoDocuments.
func (s *Store) AppendApprovedAssignment(ctx context.Context, eventID primitive.ObjectID, a models.Assignment) error {
	a.Status = models.AssignmentApproved
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}

	filledPath := "filled." + a.Role
	filter := bson.M{
		"_id": eventID,
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$ifNull": bson.A{"$" + filledPath, 0}},
			bson.M{"$ifNull": bson.A{"$required_roles." + a.Role, 0}},
		}},
		"assignments": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"staff_id": a.StaffID,
			"status":   bson.M{"$ne": models.AssignmentRejected},
		}}},
	}
	update := bson.M{
		"$push": bson.M{"assignments": a},
		"$inc":  bson.M{filledPath: 1},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return s.classifyAppendFailure(ctx, eventID, a)
}

// AppendPendingAssignment appends a pending assignment (manual
// proposals, accepted applications awaiting approval). Pending
// assignments do not consume quota; the quota guard applies when the
// assignment is approved.
func (s *Store) AppendPendingAssignment(ctx context.Context, eventID primitive.ObjectID, a models.Assignment) error {
	a.Status = models.AssignmentPending
	if a.AssignedAt.IsZero() {
		a.AssignedAt = time.Now().UTC()
	}

	filter := bson.M{
		"_id": eventID,
		"assignments": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"staff_id": a.StaffID,
			"status":   bson.M{"$ne": models.AssignmentRejected},
		}}},
	}
	update := bson.M{
		"$push": bson.M{"assignments": a},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if _, err := s.GetByID(ctx, eventID); err != nil {
		return err
	}
	return ErrAlreadyAssigned
}

// ApproveAssignment transitions a pending assignment to approved under
// the same quota guard as AppendApprovedAssignment.
func (s *Store) ApproveAssignment(ctx context.Context, eventID, staffID primitive.ObjectID, role string) error {
	filledPath := "filled." + role
	filter := bson.M{
		"_id": eventID,
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$ifNull": bson.A{"$" + filledPath, 0}},
			bson.M{"$ifNull": bson.A{"$required_roles." + role, 0}},
		}},
		"assignments": bson.M{"$elemMatch": bson.M{
			"staff_id": staffID,
			"role":     role,
			"status":   models.AssignmentPending,
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"assignments.$[a].status": models.AssignmentApproved,
			"updated_at":              time.Now().UTC(),
		},
		"$inc": bson.M{filledPath: 1},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{
			"a.staff_id": staffID,
			"a.role":     role,
			"a.status":   models.AssignmentPending,
		}},
	})

	res, err := s.c.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	e, err := s.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if e.RemainingQuota(role) == 0 {
		return ErrQuotaFull
	}
	return mongo.ErrNoDocuments
}

// RejectAssignment marks an assignment rejected, releasing its quota
// slot when it was approved.
func (s *Store) RejectAssignment(ctx context.Context, eventID, staffID primitive.ObjectID, role string) error {
	now := time.Now().UTC()

	// Approved first: releases the filled counter in the same update.
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": eventID, "assignments": bson.M{"$elemMatch": bson.M{
			"staff_id": staffID, "role": role, "status": models.AssignmentApproved,
		}}},
		bson.M{
			"$set": bson.M{"assignments.$[a].status": models.AssignmentRejected, "updated_at": now},
			"$inc": bson.M{"filled." + role: -1},
		},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{
				"a.staff_id": staffID, "a.role": role, "a.status": models.AssignmentApproved,
			}},
		}))
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = s.c.UpdateOne(ctx,
		bson.M{"_id": eventID, "assignments": bson.M{"$elemMatch": bson.M{
			"staff_id": staffID, "role": role, "status": models.AssignmentPending,
		}}},
		bson.M{
			"$set": bson.M{"assignments.$[a].status": models.AssignmentRejected, "updated_at": now},
		},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{
				"a.staff_id": staffID, "a.role": role, "a.status": models.AssignmentPending,
			}},
		}))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ExpirePendingAssignments rejects pending assignments older than the
// cutoff across all non-cancelled events. Pending assignments never
// consumed quota, so no filled counters move. Returns the number of
// events touched.
func (s *Store) ExpirePendingAssignments(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"status": bson.M{"$ne": models.EventCancelled},
			"assignments": bson.M{"$elemMatch": bson.M{
				"status":      models.AssignmentPending,
				"assigned_at": bson.M{"$lt": cutoff},
			}},
		},
		bson.M{"$set": bson.M{
			"assignments.$[a].status": models.AssignmentRejected,
			"updated_at":              time.Now().UTC(),
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{
				"a.status":      models.AssignmentPending,
				"a.assigned_at": bson.M{"$lt": cutoff},
			}},
		}))
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// SetAssignmentShift records the materialized shift on the assignment.
func (s *Store) SetAssignmentShift(ctx context.Context, eventID, staffID, shiftID primitive.ObjectID, role string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$set": bson.M{"assignments.$[a].shift_id": shiftID}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"a.staff_id": staffID, "a.role": role}},
		}))
	return err
}

// List returns events filtered by status (optional), newest start first.
func (s *Store) List(ctx context.Context, status string, limit int64) ([]models.Event, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "start_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByClient returns a client's events, newest start first.
func (s *Store) ListByClient(ctx context.Context, clientID primitive.ObjectID, limit int64) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, bson.M{"client_id": clientID},
		options.Find().SetSort(bson.D{{Key: "start_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) classifyAppendFailure(ctx context.Context, eventID primitive.ObjectID, a models.Assignment) error {
	e, err := s.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if e.HasAssignment(a.StaffID) {
		return ErrAlreadyAssigned
	}
	if _, required := e.RequiredRoles[a.Role]; !required {
		return ErrRoleNotRequired
	}
	return ErrQuotaFull
}
