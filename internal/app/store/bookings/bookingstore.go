// internal/app/store/bookings/bookingstore.go
package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/eventops/crewhub/internal/app/system/htmlsanitize"
	"github.com/eventops/crewhub/internal/app/system/normalize"
	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrAlreadyDecided is returned when deciding a booking twice.
	ErrAlreadyDecided = errors.New("booking has already been decided")

	errNoTitle = errors.New("title is required")
)

// Store wraps the bookings collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("bookings")}
}

// GetByID loads a booking by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var b models.Booking
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create files a new booking request for a client.
func (s *Store) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	b.ID = primitive.NewObjectID()
	b.Title = normalize.Name(b.Title)
	b.Notes = htmlsanitize.Plain(b.Notes)
	b.Status = models.BookingRequested

	if b.Title == "" {
		return models.Booking{}, errNoTitle
	}

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

// Confirm moves a requested booking to confirmed and records the event
// it materialized into.
func (s *Store) Confirm(ctx context.Context, id, eventID primitive.ObjectID, byID primitive.ObjectID, byName string) (*models.Booking, error) {
	return s.decide(ctx, id, bson.M{
		"status":   models.BookingConfirmed,
		"event_id": eventID,
	}, byID, byName)
}

// Decline moves a requested booking to declined.
func (s *Store) Decline(ctx context.Context, id primitive.ObjectID, byID primitive.ObjectID, byName string) (*models.Booking, error) {
	return s.decide(ctx, id, bson.M{
		"status": models.BookingDeclined,
	}, byID, byName)
}

func (s *Store) decide(ctx context.Context, id primitive.ObjectID, set bson.M, byID primitive.ObjectID, byName string) (*models.Booking, error) {
	now := time.Now().UTC()
	set["decided_at"] = now
	set["decided_by_id"] = byID
	set["decided_by_name"] = byName
	set["updated_at"] = now

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.BookingRequested},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var b models.Booking
	if err := res.Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := s.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrAlreadyDecided
		}
		return nil, err
	}
	return &b, nil
}

// ListForClient returns a client's bookings, newest first.
func (s *Store) ListForClient(ctx context.Context, clientID primitive.ObjectID, limit int64) ([]models.Booking, error) {
	cur, err := s.c.Find(ctx, bson.M{"client_id": clientID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Booking
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByStatus returns bookings in one status for the staffing desk,
// oldest first so the queue drains in order.
func (s *Store) ListByStatus(ctx context.Context, status string, limit int64) ([]models.Booking, error) {
	cur, err := s.c.Find(ctx, bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Booking
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
