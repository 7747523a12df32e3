// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Portal roles.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleStaff      = "staff"
	RoleClient     = "client"
)

// Account statuses.
const (
	UserActive   = "active"
	UserDisabled = "disabled"
)

// User is a portal login account for one of the four portals.
//
// Staff accounts link to their operational StaffProfile via
// StaffProfileID; the profile carries everything scheduling cares about,
// the user record only carries identity and credentials.
type User struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName       string              `bson:"full_name" json:"full_name"`
	FullNameCI     string              `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email          string              `bson:"email" json:"email"`
	PasswordHash   string              `bson:"password_hash,omitempty" json:"-"`
	Role           string              `bson:"role" json:"role"` // admin | supervisor | staff | client
	Status         string              `bson:"status,omitempty" json:"status,omitempty"`
	StaffProfileID *primitive.ObjectID `bson:"staff_profile_id,omitempty" json:"staff_profile_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
