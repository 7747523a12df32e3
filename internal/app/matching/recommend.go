// internal/app/matching/recommend.go
package matching

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CandidateSummary is one recommended staff member for a role, with a
// flag for whether they currently collide with the event window.
type CandidateSummary struct {
	StaffID     primitive.ObjectID `json:"staff_id"`
	Name        string             `json:"name"`
	Score       float64            `json:"score"`
	HasConflict bool               `json:"has_conflict"`
}

// RoleRecommendation summarizes staffing options for one unfilled role.
type RoleRecommendation struct {
	Role       string             `json:"role"`
	Required   int                `json:"required"`
	Filled     int                `json:"filled"`
	Remaining  int                `json:"remaining"`
	Candidates []CandidateSummary `json:"candidates"`
}

// Recommendations is the aggregate staffing picture for an event.
type Recommendations struct {
	EventID primitive.ObjectID   `json:"event_id"`
	Roles   []RoleRecommendation `json:"roles"`
}

// Recommend builds the per-role recommendation summary across the
// event's unfilled roles: remaining quota plus the top candidates with
// their conflict status. Fully staffed roles are omitted.
func (o *Orchestrator) Recommend(ctx context.Context, eventID primitive.ObjectID) (*Recommendations, error) {
	e, err := o.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	roles := make([]string, 0, len(e.RequiredRoles))
	for role := range e.RequiredRoles {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	out := &Recommendations{EventID: e.ID, Roles: []RoleRecommendation{}}
	for _, role := range roles {
		remaining := e.RemainingQuota(role)
		if remaining == 0 {
			continue
		}

		matches, err := o.scorer.FindBestMatchesForEvent(ctx, e, role, DefaultMatchCount)
		if err != nil {
			return nil, err
		}

		rec := RoleRecommendation{
			Role:       role,
			Required:   e.RequiredRoles[role],
			Filled:     e.Filled[role],
			Remaining:  remaining,
			Candidates: []CandidateSummary{},
		}
		for _, m := range matches {
			if e.HasAssignment(m.Staff.ID) {
				continue
			}
			hasConflict, err := o.detector.HasConflict(ctx, m.Staff.ID, e.StartAt, e.EndAt, nil)
			if err != nil {
				return nil, err
			}
			rec.Candidates = append(rec.Candidates, CandidateSummary{
				StaffID:     m.Staff.ID,
				Name:        m.Staff.FullName,
				Score:       m.Score,
				HasConflict: hasConflict,
			})
		}
		out.Roles = append(out.Roles, rec)
	}
	return out, nil
}
