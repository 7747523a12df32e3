// internal/domain/models/payrollentry.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payroll entry status values.
const (
	PayrollPending  = "pending"
	PayrollApproved = "approved"
	PayrollPaid     = "paid"
)

// PayrollEntry is the pay record generated from one completed shift.
// ShiftID is unique so regeneration of a period is idempotent. Amount is
// HoursWorked * wage for hourly rates, or the flat wage for per-shift
// rates.
type PayrollEntry struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShiftID primitive.ObjectID `bson:"shift_id" json:"shift_id"`
	StaffID primitive.ObjectID `bson:"staff_id" json:"staff_id"`
	EventID primitive.ObjectID `bson:"event_id" json:"event_id"`

	Period      string  `bson:"period" json:"period"` // YYYY-MM
	HoursWorked float64 `bson:"hours_worked" json:"hours_worked"`
	Wage        Wage    `bson:"wage" json:"wage"`
	Amount      float64 `bson:"amount" json:"amount"`
	Status      string  `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
