// internal/domain/models/auditlog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit categories. The auditlog config selects a destination per
// category.
const (
	AuditCategoryAuth     = "auth"
	AuditCategoryStaffing = "staffing"
)

// AuditLog records one administrative or authentication action for the
// operations trail: logins, auto-assign runs, assignment status changes,
// booking decisions. Details carries small action-specific values
// (counts, role names).
type AuditLog struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Category  string              `bson:"category" json:"category"`
	Action    string              `bson:"action" json:"action"`
	ActorID   *primitive.ObjectID `bson:"actor_id,omitempty" json:"actor_id,omitempty"`
	ActorName string              `bson:"actor_name,omitempty" json:"actor_name,omitempty"`
	EventID   *primitive.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`

	IP            string `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent     string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
