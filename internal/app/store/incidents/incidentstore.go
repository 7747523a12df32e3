// internal/app/store/incidents/incidentstore.go
package incidents

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
	// ErrAlreadyResolved is returned when resolving an incident twice.
	ErrAlreadyResolved = errors.New("incident is already resolved")

	errNoNarrative = errors.New("narrative is required")
	errBadSeverity = errors.New("severity must be low, medium, high, or critical")
)

// Store wraps the incidents collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("incidents")}
}

// GetByID loads an incident by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Incident, error) {
	var in models.Incident
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&in); err != nil {
		return nil, err
	}
	return &in, nil
}

// Create files a new open incident. The narrative is free text from the
// field and is sanitized to plain text before storage.
func (s *Store) Create(ctx context.Context, in models.Incident) (models.Incident, error) {
	in.ID = primitive.NewObjectID()
	in.Severity = normalize.Severity(in.Severity)
	in.Narrative = htmlsanitize.Plain(in.Narrative)
	in.Status = models.IncidentOpen

	if in.Narrative == "" {
		return models.Incident{}, errNoNarrative
	}
	switch in.Severity {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical:
	default:
		return models.Incident{}, errBadSeverity
	}

	now := time.Now().UTC()
	in.CreatedAt = now
	in.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, in); err != nil {
		return models.Incident{}, err
	}
	return in, nil
}

// Resolve closes an open incident with a resolution note.
func (s *Store) Resolve(ctx context.Context, id, byID primitive.ObjectID, note string) (*models.Incident, error) {
	now := time.Now().UTC()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.IncidentOpen},
		bson.M{"$set": bson.M{
			"status":          models.IncidentResolved,
			"resolved_at":     now,
			"resolved_by_id":  byID,
			"resolution_note": htmlsanitize.Plain(note),
			"updated_at":      now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var in models.Incident
	if err := res.Decode(&in); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := s.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrAlreadyResolved
		}
		return nil, err
	}
	return &in, nil
}

// ListForEvent returns an event's incidents, newest first.
func (s *Store) ListForEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.Incident, error) {
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Incident
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOpen returns open incidents across all events, oldest first so
// the triage queue drains in order.
func (s *Store) ListOpen(ctx context.Context, limit int64) ([]models.Incident, error) {
	cur, err := s.c.Find(ctx, bson.M{"status": models.IncidentOpen},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Incident
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
