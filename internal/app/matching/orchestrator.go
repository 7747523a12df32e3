// internal/app/matching/orchestrator.go
package matching

import (
	"context"
	"errors"
	"sort"

	"github.com/eventops/crewhub/internal/app/store/events"
	"github.com/eventops/crewhub/internal/app/store/ratecards"
	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Skip and assignment reasons recorded in run details.
const (
	ReasonConflict        = "schedule_conflict"
	ReasonQuotaFull       = "quota_full"
	ReasonAlreadyAssigned = "already_assigned"
	ReasonNoRateCard      = "no_rate_card"
	ReasonHasShift        = "shift_already_exists"
)

// EventStore is the event access the orchestrator needs. The event
// store's quota-guarded append is what keeps concurrent runs inside the
// role quotas.
type EventStore interface {
	EventSource
	AppendApprovedAssignment(ctx context.Context, eventID primitive.ObjectID, a models.Assignment) error
	SetAssignmentShift(ctx context.Context, eventID, staffID, shiftID primitive.ObjectID, role string) error
}

// ShiftCreator materializes shifts for new assignments.
type ShiftCreator interface {
	Create(ctx context.Context, sh models.Shift) (models.Shift, error)
}

// WageSource looks up the wage for a role from the rate card table.
type WageSource interface {
	WageForRole(ctx context.Context, role string) (models.Wage, error)
}

// StaffSource loads full staff profiles. The notifier routes by the
// profile's linked UserID, so notifications sent from a stored
// assignment need the profile loaded first.
type StaffSource interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.StaffProfile, error)
}

// Notifier dispatches assignment notifications. Delivery is best
// effort: the orchestrator logs and swallows notifier errors, never
// unwinding a committed assignment over them.
type Notifier interface {
	EventAssignment(ctx context.Context, staff models.StaffProfile, e *models.Event) error
	ShiftAssignment(ctx context.Context, staff models.StaffProfile, e *models.Event, sh models.Shift) error
}

// Options control one auto-assignment run.
type Options struct {
	// AutoCreateShifts materializes a Scheduled shift for every new
	// assignment, window copied from the event.
	AutoCreateShifts bool `json:"auto_create_shifts"`
	// NotifyStaff dispatches an assignment notification per new
	// assignment.
	NotifyStaff bool `json:"notify_staff"`
	// MaxPerRole caps how many assignments one run may create per role,
	// regardless of remaining quota. Zero means no cap.
	MaxPerRole int `json:"max_per_role"`
}

// Detail records what happened to one candidate during a run.
type Detail struct {
	StaffID   primitive.ObjectID  `json:"staff_id"`
	StaffName string              `json:"staff_name,omitempty"`
	Role      string              `json:"role"`
	Assigned  bool                `json:"assigned"`
	Reason    string              `json:"reason,omitempty"`
	Score     float64             `json:"score,omitempty"`
	ShiftID   *primitive.ObjectID `json:"shift_id,omitempty"`
}

// Result summarizes one orchestrator run.
type Result struct {
	Assigned int      `json:"assigned"`
	Skipped  int      `json:"skipped"`
	Details  []Detail `json:"details"`
}

// Orchestrator fills an event's role quotas from ranked, conflict-free
// candidates.
type Orchestrator struct {
	events   EventStore
	scorer   *Scorer
	detector *ConflictDetector
	shifts   ShiftCreator
	rates    WageSource
	staff    StaffSource
	notifier Notifier
	log      *zap.Logger
}

func NewOrchestrator(ev EventStore, scorer *Scorer, detector *ConflictDetector, shifts ShiftCreator, rates WageSource, staff StaffSource, notifier Notifier, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		events:   ev,
		scorer:   scorer,
		detector: detector,
		shifts:   shifts,
		rates:    rates,
		staff:    staff,
		notifier: notifier,
		log:      log,
	}
}

// AutoAssign walks the event's required roles in sorted order and fills
// each remaining quota from the scorer's ranking, skipping candidates
// with schedule conflicts. Each assignment commits through the event
// store's conditional update, so a concurrent run racing this one can
// shrink the quota underneath us but never let us exceed it.
//
// The run is a best-effort batch: a candidate that fails to assign is
// skipped, and committed assignments are never rolled back. Read
// failures (event, pool, conflicts) abort the run.
func (o *Orchestrator) AutoAssign(ctx context.Context, eventID primitive.ObjectID, opts Options) (*Result, error) {
	e, err := o.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	roles := make([]string, 0, len(e.RequiredRoles))
	for role := range e.RequiredRoles {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	res := &Result{}
	for _, role := range roles {
		quota := e.RemainingQuota(role)
		if quota == 0 {
			continue
		}
		if opts.MaxPerRole > 0 && quota > opts.MaxPerRole {
			quota = opts.MaxPerRole
		}

		// Over-fetch so skipped candidates still leave enough ranked
		// alternates to fill the quota.
		matches, err := o.scorer.FindBestMatchesForEvent(ctx, e, role, quota+DefaultMatchCount)
		if err != nil {
			return nil, err
		}

		filled := 0
		for _, m := range matches {
			if filled >= quota {
				break
			}

			conflicts, err := o.detector.DetectConflicts(ctx, m.Staff.ID, e.StartAt, e.EndAt, nil)
			if err != nil {
				return nil, err
			}
			if len(conflicts) > 0 {
				res.skip(Detail{StaffID: m.Staff.ID, StaffName: m.Staff.FullName, Role: role, Reason: ReasonConflict, Score: m.Score})
				continue
			}

			err = o.events.AppendApprovedAssignment(ctx, eventID, models.Assignment{
				StaffID:    m.Staff.ID,
				Role:       role,
				AssignedBy: "auto",
				Score:      m.Score,
			})
			switch {
			case err == nil:
			case errors.Is(err, events.ErrQuotaFull):
				// Another run filled the role between our read and this
				// write. Nothing more to do for this role.
				res.skip(Detail{StaffID: m.Staff.ID, StaffName: m.Staff.FullName, Role: role, Reason: ReasonQuotaFull, Score: m.Score})
				filled = quota
				continue
			case errors.Is(err, events.ErrAlreadyAssigned):
				res.skip(Detail{StaffID: m.Staff.ID, StaffName: m.Staff.FullName, Role: role, Reason: ReasonAlreadyAssigned, Score: m.Score})
				continue
			default:
				return nil, err
			}

			filled++
			d := Detail{StaffID: m.Staff.ID, StaffName: m.Staff.FullName, Role: role, Assigned: true, Score: m.Score}

			if opts.AutoCreateShifts {
				sh, reason := o.materialize(ctx, e, m.Staff.ID, role)
				if sh != nil {
					d.ShiftID = &sh.ID
					if opts.NotifyStaff {
						o.notifyShift(ctx, m.Staff, e, *sh)
					}
				}
				if reason != "" {
					d.Reason = reason
				}
			}
			if opts.NotifyStaff && d.ShiftID == nil {
				o.notifyEvent(ctx, m.Staff, e)
			}

			res.Assigned++
			res.Details = append(res.Details, d)
		}
	}
	return res, nil
}

// MaterializeShifts creates shifts for an event's approved assignments
// that do not have one yet, without re-running matching. A non-empty
// staffIDs filter narrows the run to those staff members. Staff with a
// conflicting shift, or who already have one for this event, are
// skipped.
func (o *Orchestrator) MaterializeShifts(ctx context.Context, eventID primitive.ObjectID, staffIDs []primitive.ObjectID, notify bool) (*Result, error) {
	e, err := o.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	wanted := make(map[primitive.ObjectID]bool, len(staffIDs))
	for _, id := range staffIDs {
		wanted[id] = true
	}

	res := &Result{}
	for _, a := range e.Assignments {
		if a.Status != models.AssignmentApproved {
			continue
		}
		if len(wanted) > 0 && !wanted[a.StaffID] {
			continue
		}
		if !a.ShiftID.IsZero() {
			res.skip(Detail{StaffID: a.StaffID, Role: a.Role, Reason: ReasonHasShift})
			continue
		}

		conflicts, err := o.detector.DetectConflicts(ctx, a.StaffID, e.StartAt, e.EndAt, nil)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			res.skip(Detail{StaffID: a.StaffID, Role: a.Role, Reason: ReasonConflict})
			continue
		}

		sh, reason := o.materialize(ctx, e, a.StaffID, a.Role)
		if sh == nil {
			res.skip(Detail{StaffID: a.StaffID, Role: a.Role, Reason: reason})
			continue
		}

		d := Detail{StaffID: a.StaffID, Role: a.Role, Assigned: true, ShiftID: &sh.ID, Reason: reason}
		res.Assigned++
		res.Details = append(res.Details, d)

		if notify {
			o.notifyShift(ctx, o.loadProfile(ctx, a.StaffID), e, *sh)
		}
	}
	return res, nil
}

// materialize creates the shift for one assignment, copying the event
// window and looking up the wage. A missing rate card still creates the
// shift, with zero wage and a reason the caller records.
func (o *Orchestrator) materialize(ctx context.Context, e *models.Event, staffID primitive.ObjectID, role string) (*models.Shift, string) {
	reason := ""
	wage, err := o.rates.WageForRole(ctx, role)
	if err != nil {
		if !errors.Is(err, ratecards.ErrNoRateCard) {
			o.log.Error("wage lookup failed",
				zap.String("event_id", e.ID.Hex()),
				zap.String("role", role),
				zap.Error(err))
		}
		reason = ReasonNoRateCard
		wage = models.Wage{}
	}

	sh, err := o.shifts.Create(ctx, models.Shift{
		EventID:   e.ID,
		StaffID:   staffID,
		Role:      role,
		StartTime: e.StartAt,
		EndTime:   e.EndAt,
		Wage:      wage,
	})
	if err != nil {
		o.log.Error("shift materialization failed",
			zap.String("event_id", e.ID.Hex()),
			zap.String("staff_id", staffID.Hex()),
			zap.Error(err))
		return nil, reason
	}

	if err := o.events.SetAssignmentShift(ctx, e.ID, staffID, sh.ID, role); err != nil {
		o.log.Error("failed to record shift on assignment",
			zap.String("event_id", e.ID.Hex()),
			zap.String("shift_id", sh.ID.Hex()),
			zap.Error(err))
	}
	return &sh, reason
}

// loadProfile fetches the full profile so the notifier sees the linked
// UserID and name. A failed lookup degrades to the bare profile ID
// rather than dropping the notification.
func (o *Orchestrator) loadProfile(ctx context.Context, staffID primitive.ObjectID) models.StaffProfile {
	if o.staff == nil {
		return models.StaffProfile{ID: staffID}
	}
	p, err := o.staff.GetByID(ctx, staffID)
	if err != nil {
		o.log.Warn("staff lookup for notification failed",
			zap.String("staff_id", staffID.Hex()),
			zap.Error(err))
		return models.StaffProfile{ID: staffID}
	}
	return *p
}

func (o *Orchestrator) notifyEvent(ctx context.Context, staff models.StaffProfile, e *models.Event) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.EventAssignment(ctx, staff, e); err != nil {
		o.log.Warn("assignment notification failed",
			zap.String("staff_id", staff.ID.Hex()),
			zap.String("event_id", e.ID.Hex()),
			zap.Error(err))
	}
}

func (o *Orchestrator) notifyShift(ctx context.Context, staff models.StaffProfile, e *models.Event, sh models.Shift) {
	if o.notifier == nil {
		return
	}
	if err := o.notifier.ShiftAssignment(ctx, staff, e, sh); err != nil {
		o.log.Warn("shift notification failed",
			zap.String("staff_id", staff.ID.Hex()),
			zap.String("shift_id", sh.ID.Hex()),
			zap.Error(err))
	}
}

func (r *Result) skip(d Detail) {
	r.Skipped++
	r.Details = append(r.Details, d)
}
