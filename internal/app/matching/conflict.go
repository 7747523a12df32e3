// internal/app/matching/conflict.go
package matching

import (
	"context"
	"time"

	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShiftSource supplies a staff member's shifts overlapping a window.
// The shift store's ForStaffInWindow satisfies it.
type ShiftSource interface {
	ForStaffInWindow(ctx context.Context, staffID primitive.ObjectID, start, end time.Time, exclude *primitive.ObjectID) ([]models.Shift, error)
}

// ConflictDetector finds a staff member's existing shifts that collide
// with a proposed work window.
type ConflictDetector struct {
	shifts ShiftSource
}

func NewConflictDetector(shifts ShiftSource) *ConflictDetector {
	return &ConflictDetector{shifts: shifts}
}

// DetectConflicts returns the staff member's non-cancelled shifts whose
// [start, end) windows overlap the given window, ordered by start time.
// The overlap test is half-open: back-to-back shifts do not conflict,
// and a zero-width window conflicts with nothing. excludeShiftID, when
// set, ignores that shift so an update can be checked against its own
// replacement window.
func (d *ConflictDetector) DetectConflicts(ctx context.Context, staffID primitive.ObjectID, start, end time.Time, excludeShiftID *primitive.ObjectID) ([]models.Shift, error) {
	if !end.After(start) {
		return nil, nil
	}
	return d.shifts.ForStaffInWindow(ctx, staffID, start, end, excludeShiftID)
}

// HasConflict reports whether any conflicting shift exists.
func (d *ConflictDetector) HasConflict(ctx context.Context, staffID primitive.ObjectID, start, end time.Time, excludeShiftID *primitive.ObjectID) (bool, error) {
	conflicts, err := d.DetectConflicts(ctx, staffID, start, end, excludeShiftID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}
