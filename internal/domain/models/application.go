// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application status values.
const (
	ApplicationPending  = "pending"
	ApplicationAccepted = "accepted"
	ApplicationDeclined = "declined"
)

// Application is a staff member volunteering for a role on a published
// event. Accepting an application routes through the same quota-guarded
// assignment path as auto-assign, so an accepted application can still be
// refused if the role filled in the meantime.
type Application struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID `bson:"event_id" json:"event_id"`
	StaffID primitive.ObjectID `bson:"staff_id" json:"staff_id"`
	Role    string             `bson:"role" json:"role"`
	Note    string             `bson:"note,omitempty" json:"note,omitempty"`
	Status  string             `bson:"status" json:"status"`

	DecidedAt     *time.Time          `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	DecidedByID   *primitive.ObjectID `bson:"decided_by_id,omitempty" json:"decided_by_id,omitempty"`
	DecidedByName string              `bson:"decided_by_name,omitempty" json:"decided_by_name,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
