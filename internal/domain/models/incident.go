// internal/domain/models/incident.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Incident severity and status values.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"

	IncidentOpen     = "open"
	IncidentResolved = "resolved"
)

// Incident is an on-site report filed against an event (and optionally a
// specific shift). The narrative is sanitized before storage since it is
// free text entered from the field.
type Incident struct {
	ID      primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID  `bson:"event_id" json:"event_id"`
	ShiftID *primitive.ObjectID `bson:"shift_id,omitempty" json:"shift_id,omitempty"`

	ReportedByID   primitive.ObjectID `bson:"reported_by_id" json:"reported_by_id"`
	ReportedByName string             `bson:"reported_by_name,omitempty" json:"reported_by_name,omitempty"`

	Severity  string `bson:"severity" json:"severity"`
	Narrative string `bson:"narrative" json:"narrative"`
	Status    string `bson:"status" json:"status"`

	ResolvedAt     *time.Time          `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	ResolvedByID   *primitive.ObjectID `bson:"resolved_by_id,omitempty" json:"resolved_by_id,omitempty"`
	ResolutionNote string              `bson:"resolution_note,omitempty" json:"resolution_note,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
