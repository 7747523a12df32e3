// internal/domain/models/ratecard.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RateCard is the wage table entry for one staffing role. Shifts created
// by the auto-assignment orchestrator copy their wage from the matching
// rate card.
type RateCard struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Role     string             `bson:"role" json:"role"`
	Amount   float64            `bson:"amount" json:"amount"`
	Currency string             `bson:"currency" json:"currency"`
	Per      string             `bson:"per" json:"per"` // hour | shift

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
