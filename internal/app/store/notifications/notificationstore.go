// internal/app/store/notifications/notificationstore.go
package notifications

import (
	"context"
	"time"

	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store wraps the notifications collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("notifications")}
}

// Record persists a notification. When DedupeKey is set, a retried
// dispatch upserts onto the existing record instead of duplicating; the
// unique sparse index on dedupe_key backs this.
func (s *Store) Record(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	if n.DedupeKey == "" {
		n.ID = primitive.NewObjectID()
		if _, err := s.c.InsertOne(ctx, n); err != nil {
			return models.Notification{}, err
		}
		return n, nil
	}

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"dedupe_key": n.DedupeKey},
		bson.M{"$setOnInsert": bson.M{
			"recipient_id": n.RecipientID,
			"kind":         n.Kind,
			"subject":      n.Subject,
			"body":         n.Body,
			"read":         false,
			"event_id":     n.EventID,
			"shift_id":     n.ShiftID,
			"created_at":   n.CreatedAt,
		}},
		options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After))

	var out models.Notification
	if err := res.Decode(&out); err != nil {
		return models.Notification{}, err
	}
	return out, nil
}

// MarkRead flags a notification read for its recipient. Marking an
// already-read notification is a no-op, not an error.
func (s *Store) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "recipient_id": recipientID},
		bson.M{"$set": bson.M{"read": true, "read_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// MarkAllRead flags every unread notification for a recipient.
func (s *Store) MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ListForRecipient returns a user's notifications, newest first, with
// unreadOnly narrowing to unread.
func (s *Store) ListForRecipient(ctx context.Context, recipientID primitive.ObjectID, unreadOnly bool, limit int64) ([]models.Notification, error) {
	filter := bson.M{"recipient_id": recipientID}
	if unreadOnly {
		filter["read"] = false
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UnreadCount returns the recipient's unread notification count.
func (s *Store) UnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "read": false})
}
