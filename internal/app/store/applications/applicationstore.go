// internal/app/store/applications/applicationstore.go
package applications

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/eventops/crewhub/internal/app/system/htmlsanitize"
	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateApplication is returned when the staff member already
	// applied for the same role on the event.
	ErrDuplicateApplication = errors.New("application for this event and role already exists")

	// ErrAlreadyDecided is returned when deciding an application twice.
	ErrAlreadyDecided = errors.New("application has already been decided")
)

// Store wraps the applications collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("applications")}
}

// GetByID loads an application by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Application, error) {
	var a models.Application
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create files a new pending application. The unique index on
// event+staff+role turns a resubmission into ErrDuplicateApplication.
func (s *Store) Create(ctx context.Context, a models.Application) (models.Application, error) {
	a.ID = primitive.NewObjectID()
	a.Status = models.ApplicationPending
	a.Note = htmlsanitize.Plain(a.Note)

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Application{}, ErrDuplicateApplication
		}
		return models.Application{}, err
	}
	return a, nil
}

// Decide moves a pending application to accepted or declined. Matching
// on the pending status makes a second decision ErrAlreadyDecided.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, status string, byID primitive.ObjectID, byName string) (*models.Application, error) {
	now := time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.ApplicationPending},
		bson.M{"$set": bson.M{
			"status":          status,
			"decided_at":      now,
			"decided_by_id":   byID,
			"decided_by_name": byName,
			"updated_at":      now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var a models.Application
	if err := res.Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := s.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrAlreadyDecided
		}
		return nil, err
	}
	return &a, nil
}

// ListForEvent returns an event's applications, pending first, newest
// within each status.
func (s *Store) ListForEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Application, error) {
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID},
		options.Find().SetSort(bson.D{
			{Key: "status", Value: 1},
			{Key: "created_at", Value: -1},
		}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Application
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForStaff returns a staff member's applications, newest first.
func (s *Store) ListForStaff(ctx context.Context, staffID primitive.ObjectID, limit int64) ([]models.Application, error) {
	cur, err := s.c.Find(ctx, bson.M{"staff_id": staffID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Application
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
