// internal/domain/models/shift.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shift lifecycle states. Cancelled shifts are invisible to conflict
// detection.
const (
	ShiftScheduled = "Scheduled"
	ShiftLive      = "Live"
	ShiftCompleted = "Completed"
	ShiftCancelled = "Cancelled"
)

// Attendance states recorded at check-in time. Late means the check-in
// landed after the scheduled start plus the grace period; it feeds the
// staff member's on-time rate.
const (
	AttendanceExpected = "Expected"
	AttendanceArrived  = "Arrived"
	AttendanceLate     = "Late"
	AttendanceNoShow   = "NoShow"
)

// Wage units.
const (
	WagePerHour  = "hour"
	WagePerShift = "shift"
)

// Wage is the pay agreed for a shift, looked up from the rate card table
// when the shift is created.
type Wage struct {
	Amount   float64 `bson:"amount" json:"amount"`
	Currency string  `bson:"currency" json:"currency"`
	Per      string  `bson:"per" json:"per"` // hour | shift
}

// Shift is a concrete block of work for one staff member on one event.
//
// EventID and StaffID are references, not enforced foreign keys; the
// stores refuse to delete an event or profile while non-cancelled shifts
// still point at it.
//
// Lifecycle: Scheduled -> check-in (attendance Arrived, status Live) ->
// check-out (status Completed, HoursWorked computed from the actual
// check-in/check-out timestamps).
type Shift struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID `bson:"event_id" json:"event_id"`
	StaffID primitive.ObjectID `bson:"staff_id" json:"staff_id"`
	Role    string             `bson:"role,omitempty" json:"role,omitempty"`

	StartTime time.Time `bson:"start_time" json:"start_time"`
	EndTime   time.Time `bson:"end_time" json:"end_time"`

	Status     string `bson:"status" json:"status"`
	Attendance string `bson:"attendance" json:"attendance"`

	CheckInAt   *time.Time `bson:"check_in_at,omitempty" json:"check_in_at,omitempty"`
	CheckOutAt  *time.Time `bson:"check_out_at,omitempty" json:"check_out_at,omitempty"`
	CheckInCode string     `bson:"check_in_code,omitempty" json:"check_in_code,omitempty"`
	HoursWorked float64    `bson:"hours_worked,omitempty" json:"hours_worked,omitempty"`

	Wage Wage `bson:"wage" json:"wage"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Overlaps reports whether this shift's [StartTime, EndTime) window
// overlaps the given window. Zero-width windows never overlap anything,
// and back-to-back windows (end == start) do not overlap.
func (s *Shift) Overlaps(start, end time.Time) bool {
	return s.StartTime.Before(end) && s.EndTime.After(start)
}
