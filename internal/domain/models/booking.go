// internal/domain/models/booking.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Booking status values.
const (
	BookingRequested = "requested"
	BookingConfirmed = "confirmed"
	BookingDeclined  = "declined"
)

// Booking is a client's request for a staffed event. Confirming a booking
// materializes an Event carrying the requested time window and role
// headcounts; EventID records the link.
type Booking struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID primitive.ObjectID `bson:"client_id" json:"client_id"`
	Title    string             `bson:"title" json:"title"`
	Location string             `bson:"location,omitempty" json:"location,omitempty"`
	Notes    string             `bson:"notes,omitempty" json:"notes,omitempty"`

	StartAt time.Time `bson:"start_at" json:"start_at"`
	EndAt   time.Time `bson:"end_at" json:"end_at"`

	RolesRequested map[string]int `bson:"roles_requested,omitempty" json:"roles_requested,omitempty"`

	Status  string              `bson:"status" json:"status"`
	EventID *primitive.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`

	DecidedAt     *time.Time          `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	DecidedByID   *primitive.ObjectID `bson:"decided_by_id,omitempty" json:"decided_by_id,omitempty"`
	DecidedByName string              `bson:"decided_by_name,omitempty" json:"decided_by_name,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
