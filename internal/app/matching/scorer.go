// internal/app/matching/scorer.go
package matching

import (
	"context"
	"sort"

	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultMatchCount is how many candidates a smart-match request
// returns when the caller does not ask for a specific count.
const DefaultMatchCount = 5

// EventSource loads events for the scorer and orchestrator.
type EventSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
}

// CandidateSource supplies the candidate pool for a role: profiles with
// an exact-case role match whose availability is not Suspended or Leave,
// ordered by ascending ID so tie-breaking is stable across runs.
type CandidateSource interface {
	CandidatesForRole(ctx context.Context, role string) ([]models.StaffProfile, error)
}

// Breakdown shows how each scoring term contributed to a match score.
type Breakdown struct {
	Rating       float64 `json:"rating"`
	Skill        float64 `json:"skill"`
	Reliability  float64 `json:"reliability"`
	Availability float64 `json:"availability"`
}

// Match is one ranked candidate.
type Match struct {
	Staff     models.StaffProfile `json:"staff"`
	Score     float64             `json:"score"`
	Breakdown Breakdown           `json:"breakdown"`
}

// Scorer ranks candidate staff for an event role using a deterministic
// weighted heuristic.
type Scorer struct {
	events  EventSource
	staff   CandidateSource
	weights Weights
}

func NewScorer(events EventSource, staff CandidateSource, weights Weights) *Scorer {
	return &Scorer{events: events, staff: staff, weights: weights}
}

// FindBestMatches returns up to count candidates for the role, best
// first. A missing event is an error (mongo.ErrNoDocuments surfaces); a
// role absent from the event's required roles is not, since any role
// string can be matched ad hoc. Fewer than count results means the pool
// was smaller.
func (s *Scorer) FindBestMatches(ctx context.Context, eventID primitive.ObjectID, role string, count int) ([]Match, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.FindBestMatchesForEvent(ctx, e, role, count)
}

// FindBestMatchesForEvent ranks candidates against an already-loaded
// event. The orchestrator uses this form to avoid re-reading the event
// per role.
func (s *Scorer) FindBestMatchesForEvent(ctx context.Context, e *models.Event, role string, count int) ([]Match, error) {
	if count <= 0 {
		count = DefaultMatchCount
	}

	pool, err := s.staff.CandidatesForRole(ctx, role)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(pool))
	for _, p := range pool {
		matches = append(matches, s.score(p))
	}

	// The pool arrives in ascending ID order; the stable sort keeps that
	// as the final tie-break after score and completed shifts.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Staff.CompletedShifts > matches[j].Staff.CompletedShifts
	})

	if len(matches) > count {
		matches = matches[:count]
	}
	return matches, nil
}

func (s *Scorer) score(p models.StaffProfile) Match {
	b := Breakdown{
		Rating:      p.Rating / 5.0 * s.weights.Rating,
		Skill:       p.VerifiedSkillFraction(nil) * s.weights.Skill,
		Reliability: p.OnTimeRate / 100.0 * s.weights.Reliability,
	}
	if p.Availability == models.AvailabilityAvailable {
		b.Availability = s.weights.Availability
	}
	return Match{
		Staff:     p,
		Score:     b.Rating + b.Skill + b.Reliability + b.Availability,
		Breakdown: b,
	}
}
