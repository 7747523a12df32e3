// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds dispatched by the platform.
const (
	NotifyEventAssignment = "event_assignment"
	NotifyShiftAssignment = "shift_assignment"
	NotifyShiftReminder   = "shift_reminder"
	NotifyApplication     = "application_decision"
	NotifyBooking         = "booking_decision"
)

// Notification is the persisted record of a message fanned out to a user.
// DedupeKey lets a retried dispatch upsert instead of duplicating; reads
// mark the record instead of deleting it.
type Notification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID primitive.ObjectID `bson:"recipient_id" json:"recipient_id"`
	Kind        string             `bson:"kind" json:"kind"`
	Subject     string             `bson:"subject" json:"subject"`
	Body        string             `bson:"body" json:"body"`
	DedupeKey   string             `bson:"dedupe_key,omitempty" json:"dedupe_key,omitempty"`
	Read        bool               `bson:"read" json:"read"`

	EventID *primitive.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`
	ShiftID *primitive.ObjectID `bson:"shift_id,omitempty" json:"shift_id,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	ReadAt    *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
}
