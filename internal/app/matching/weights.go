// internal/app/matching/weights.go
package matching

// Weights are the scoring policy for ranking candidate staff. Each
// contribution is normalized to [0,1] before weighting, so a candidate's
// score lies in [0, Rating+Skill+Reliability+Availability]. The defaults
// sum to 1.0.
//
// Scoring must stay deterministic: weights are fixed for the life of the
// scorer, never sampled or adjusted per call.
type Weights struct {
	// Rating weights the staff member's 0-5 rating, normalized by 5.
	Rating float64
	// Skill weights the fraction of required skills held with Verified
	// status.
	Skill float64
	// Reliability weights the on-time rate, normalized by 100.
	Reliability float64
	// Availability is a flat bonus applied when the staff member's
	// availability is Available (as opposed to Booked).
	Availability float64
}

// DefaultWeights is the tuned production policy.
func DefaultWeights() Weights {
	return Weights{
		Rating:       0.35,
		Skill:        0.25,
		Reliability:  0.25,
		Availability: 0.15,
	}
}
