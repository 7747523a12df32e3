// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event lifecycle states.
const (
	EventDraft     = "Draft"
	EventPublished = "Published"
	EventStaffed   = "Staffed"
	EventLive      = "Live"
	EventCompleted = "Completed"
	EventCancelled = "Cancelled"
)

// Assignment status values. Only approved assignments count against a
// role's quota.
const (
	AssignmentPending  = "pending"
	AssignmentApproved = "approved"
	AssignmentRejected = "rejected"
)

// Assignment is a staff member booked (or proposed) for one role on an
// event. Assignments are embedded in the owning Event document; the event
// store is their single writer.
type Assignment struct {
	StaffID      primitive.ObjectID `bson:"staff_id" json:"staff_id"`
	Role         string             `bson:"role" json:"role"`
	Status       string             `bson:"status" json:"status"` // pending | approved | rejected
	PaymentTerms string             `bson:"payment_terms,omitempty" json:"payment_terms,omitempty"`

	AssignedAt time.Time          `bson:"assigned_at" json:"assigned_at"`
	AssignedBy string             `bson:"assigned_by,omitempty" json:"assigned_by,omitempty"` // "auto" or an admin user ID hex
	Score      float64            `bson:"score,omitempty" json:"score,omitempty"`             // match score at assignment time, 0 for manual
	ShiftID    primitive.ObjectID `bson:"shift_id,omitempty" json:"shift_id,omitempty"`       // set when a shift was materialized
}

// Budget is the event's planned spend breakdown.
type Budget struct {
	Total     float64 `bson:"total" json:"total"`
	Staffing  float64 `bson:"staffing" json:"staffing"`
	Logistics float64 `bson:"logistics" json:"logistics"`
	Currency  string  `bson:"currency,omitempty" json:"currency,omitempty"`
}

// Event is a client engagement with a time window and per-role staffing
// requirements.
//
// RequiredRoles maps a role name to the headcount needed. Filled mirrors
// the count of approved assignments per role and is maintained with the
// same atomic update that appends the assignment, so
// Filled[role] <= RequiredRoles[role] holds even under concurrent
// auto-assign runs.
type Event struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	TitleCI     string              `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	ClientID    *primitive.ObjectID `bson:"client_id,omitempty" json:"client_id,omitempty"`
	Location    string              `bson:"location,omitempty" json:"location,omitempty"`

	StartAt time.Time `bson:"start_at" json:"start_at"`
	EndAt   time.Time `bson:"end_at" json:"end_at"`

	Status        string         `bson:"status" json:"status"`
	RequiredRoles map[string]int `bson:"required_roles,omitempty" json:"required_roles,omitempty"`
	Filled        map[string]int `bson:"filled,omitempty" json:"filled,omitempty"`
	Assignments   []Assignment   `bson:"assignments,omitempty" json:"assignments,omitempty"`
	Budget        Budget         `bson:"budget,omitempty" json:"budget,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ApprovedCount returns the number of approved assignments for a role,
// counted from the embedded assignments rather than the Filled cache.
func (e *Event) ApprovedCount(role string) int {
	n := 0
	for _, a := range e.Assignments {
		if a.Role == role && a.Status == AssignmentApproved {
			n++
		}
	}
	return n
}

// RemainingQuota returns required minus filled for a role, never negative.
func (e *Event) RemainingQuota(role string) int {
	remaining := e.RequiredRoles[role] - e.Filled[role]
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasAssignment reports whether the staff member already holds a
// non-rejected assignment on this event in any role.
func (e *Event) HasAssignment(staffID primitive.ObjectID) bool {
	for _, a := range e.Assignments {
		if a.StaffID == staffID && a.Status != AssignmentRejected {
			return true
		}
	}
	return false
}
