// internal/domain/models/staffprofile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Staff availability states. Suspended and Leave staff are never offered
// by the match scorer.
const (
	AvailabilityAvailable = "Available"
	AvailabilityBooked    = "Booked"
	AvailabilityLeave     = "Leave"
	AvailabilitySuspended = "Suspended"
)

// Skill verification states.
const (
	SkillUnverified = "Unverified"
	SkillPending    = "Pending"
	SkillVerified   = "Verified"
)

// Skill is a named capability on a staff profile with its verification state.
type Skill struct {
	Name   string `bson:"name" json:"name"`
	Status string `bson:"status" json:"status"` // Unverified | Pending | Verified
}

// StaffProfile is the operational record for a staff member: the staffing
// role they work, their skills, and the performance fields the match
// scorer reads.
//
// Identity (ID) is immutable; availability, skills, and the performance
// counters change over time. UserID links the profile to a login account
// when the staff member has portal access.
type StaffProfile struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	FullName   string              `bson:"full_name" json:"full_name"`
	FullNameCI string              `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Role       string              `bson:"role" json:"role"`                 // staffing category, e.g. "Protocol", "Security"
	Skills     []Skill             `bson:"skills,omitempty" json:"skills,omitempty"`

	Rating          float64 `bson:"rating" json:"rating"`                     // 0–5
	OnTimeRate      float64 `bson:"on_time_rate" json:"on_time_rate"`         // 0–100
	CompletedShifts int     `bson:"completed_shifts" json:"completed_shifts"` // lifetime count

	Availability string `bson:"availability" json:"availability"` // Available | Booked | Leave | Suspended
	City         string `bson:"city,omitempty" json:"city,omitempty"`
	Phone        string `bson:"phone,omitempty" json:"phone,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// VerifiedSkillFraction returns the fraction of the given required skills
// that this profile holds with Verified status. With no required skills it
// returns the fraction of the profile's own skills that are verified, so a
// fully verified generalist is not penalized.
func (p *StaffProfile) VerifiedSkillFraction(required []string) float64 {
	if len(required) == 0 {
		if len(p.Skills) == 0 {
			return 0
		}
		verified := 0
		for _, s := range p.Skills {
			if s.Status == SkillVerified {
				verified++
			}
		}
		return float64(verified) / float64(len(p.Skills))
	}

	have := make(map[string]string, len(p.Skills))
	for _, s := range p.Skills {
		have[s.Name] = s.Status
	}
	verified := 0
	for _, name := range required {
		if have[name] == SkillVerified {
			verified++
		}
	}
	return float64(verified) / float64(len(required))
}
