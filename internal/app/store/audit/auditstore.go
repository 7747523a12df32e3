// internal/app/store/audit/auditstore.go
package audit

import (
	"context"
	"time"

	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store wraps the audit_logs collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_logs")}
}

// Append inserts one audit record.
func (s *Store) Append(ctx context.Context, a models.AuditLog) error {
	a.ID = primitive.NewObjectID()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, a)
	return err
}

// Recent returns the latest audit records, optionally narrowed to one
// action or one event.
func (s *Store) Recent(ctx context.Context, action string, eventID *primitive.ObjectID, limit int64) ([]models.AuditLog, error) {
	filter := bson.M{}
	if action != "" {
		filter["action"] = action
	}
	if eventID != nil {
		filter["event_id"] = *eventID
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AuditLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
