// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/eventops/crewhub/internal/app/store/audit"
	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Event action names recorded in the audit trail.
const (
	ActionLoginSuccess       = "login_success"
	ActionLoginFailed        = "login_failed"
	ActionLogout             = "logout"
	ActionAutoAssignRun      = "auto_assign_run"
	ActionAutoShiftsRun      = "auto_shifts_run"
	ActionAssignmentApproved = "assignment_approved"
	ActionAssignmentRejected = "assignment_rejected"
	ActionApplicationDecided = "application_decided"
	ActionBookingDecided     = "booking_decided"
	ActionEventCancelled     = "event_cancelled"
	ActionPayrollStatus      = "payroll_status_changed"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for authentication events (login, logout).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Staffing controls logging for staffing events (auto-assign runs,
	// assignment changes, booking and application decisions, payroll).
	// Same values as Auth.
	Staffing string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(rec models.AuditLog) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", rec.Category),
		zap.String("action", rec.Action),
		zap.Bool("success", rec.Success),
		zap.String("ip", rec.IP),
	}

	if rec.ActorID != nil {
		fields = append(fields, zap.String("actor_id", rec.ActorID.Hex()))
	}
	if rec.EventID != nil {
		fields = append(fields, zap.String("event_id", rec.EventID.Hex()))
	}
	if rec.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", rec.FailureReason))
	}
	for k, v := range rec.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if rec.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
// Logging destination is controlled by config: "all", "db", "log", or "off".
func (l *Logger) Log(ctx context.Context, rec models.AuditLog) {
	if l == nil {
		return
	}

	var setting string
	switch rec.Category {
	case models.AuditCategoryAuth:
		setting = l.config.Auth
	case models.AuditCategoryStaffing:
		setting = l.config.Staffing
	default:
		setting = "all"
	}

	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(rec)
	}

	if setting == "all" || setting == "db" {
		if err := l.store.Append(ctx, rec); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("action", rec.Action),
			)
		}
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.Log(ctx, models.AuditLog{
		Category:  models.AuditCategoryAuth,
		Action:    ActionLoginSuccess,
		ActorID:   &userID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details:   map[string]string{"email": email},
	})
}

// LoginFailed logs a failed login attempt. The reason distinguishes
// unknown accounts, wrong passwords, disabled accounts, and rate limits.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	l.Log(ctx, models.AuditLog{
		Category:      models.AuditCategoryAuth,
		Action:        ActionLoginFailed,
		IP:            getClientIP(r),
		UserAgent:     r.UserAgent(),
		Success:       false,
		FailureReason: reason,
		Details:       map[string]string{"email": email},
	})
}

// Logout logs a user logout. Accepts the hex ID from the session.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDHex string) {
	var actorID *primitive.ObjectID
	if oid, err := primitive.ObjectIDFromHex(userIDHex); err == nil {
		actorID = &oid
	}
	l.Log(ctx, models.AuditLog{
		Category:  models.AuditCategoryAuth,
		Action:    ActionLogout,
		ActorID:   actorID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	})
}

// --- Staffing Events ---

// AutoAssignRun logs one auto-assignment run over an event.
func (l *Logger) AutoAssignRun(ctx context.Context, r *http.Request, actorID primitive.ObjectID, actorName string, eventID primitive.ObjectID, assigned, skipped int) {
	l.Log(ctx, models.AuditLog{
		Category:  models.AuditCategoryStaffing,
		Action:    ActionAutoAssignRun,
		ActorID:   &actorID,
		ActorName: actorName,
		EventID:   &eventID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"assigned": strconv.Itoa(assigned),
			"skipped":  strconv.Itoa(skipped),
		},
	})
}

// AutoShiftsRun logs one auto-shift materialization run over an event.
func (l *Logger) AutoShiftsRun(ctx context.Context, r *http.Request, actorID primitive.ObjectID, actorName string, eventID primitive.ObjectID, created, skipped int) {
	l.Log(ctx, models.AuditLog{
		Category:  models.AuditCategoryStaffing,
		Action:    ActionAutoShiftsRun,
		ActorID:   &actorID,
		ActorName: actorName,
		EventID:   &eventID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"created": strconv.Itoa(created),
			"skipped": strconv.Itoa(skipped),
		},
	})
}

// AssignmentStatusChanged logs a manual assignment approval or rejection.
func (l *Logger) AssignmentStatusChanged(ctx context.Context, r *http.Request, actorID primitive.ObjectID, actorName string, eventID, staffID primitive.ObjectID, role, newStatus string) {
	action := ActionAssignmentApproved
	if newStatus == models.AssignmentRejected {
		action = ActionAssignmentRejected
	}
	l.Log(ctx, models.AuditLog{
		Category:  models.AuditCategoryStaffing,
		Action:    action,
		ActorID:   &actorID,
		ActorName: actorName,
		EventID:   &eventID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"staff_id": staffID.Hex(),
			"role":     role,
		},
	})
}

// ApplicationDecided logs an accept or decline of a staff application.
func (l *Logger) ApplicationDecided(ctx context.Context, r *http.Request, actorID primitive.ObjectID, actorName string, eventID, applicationID primitive.ObjectID, status string) {
	l.Log(ctx, models.AuditLog{
		Category:  models.AuditCategoryStaffing,
		Action:    ActionApplicationDecided,
		ActorID:   &actorID,
		ActorName: actorName,
		EventID:   &eventID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"application_id": applicationID.Hex(),
			"status":         status,
		},
	})
}

// BookingDecided logs a confirm or decline of a client booking.
func (l *Logger) BookingDecided(ctx context.Context, r *http.Request, actorID primitive.ObjectID, actorName string, bookingID primitive.ObjectID, status string) {
	l.Log(ctx, models.AuditLog{
		Category:  models.AuditCategoryStaffing,
		Action:    ActionBookingDecided,
		ActorID:   &actorID,
		ActorName: actorName,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"booking_id": bookingID.Hex(),
			"status":     status,
		},
	})
}

// EventCancelled logs an event cancellation with its shift fallout.
func (l *Logger) EventCancelled(ctx context.Context, r *http.Request, actorID primitive.ObjectID, actorName string, eventID primitive.ObjectID, shiftsCancelled int64) {
	l.Log(ctx, models.AuditLog{
		Category:  models.AuditCategoryStaffing,
		Action:    ActionEventCancelled,
		ActorID:   &actorID,
		ActorName: actorName,
		EventID:   &eventID,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"shifts_cancelled": strconv.FormatInt(shiftsCancelled, 10),
		},
	})
}

// PayrollStatusChanged logs a payroll entry moving between statuses.
func (l *Logger) PayrollStatusChanged(ctx context.Context, r *http.Request, actorID primitive.ObjectID, actorName string, entryID primitive.ObjectID, from, to string) {
	l.Log(ctx, models.AuditLog{
		Category:  models.AuditCategoryStaffing,
		Action:    ActionPayrollStatus,
		ActorID:   &actorID,
		ActorName: actorName,
		IP:        getClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
		Details: map[string]string{
			"entry_id": entryID.Hex(),
			"from":     from,
			"to":       to,
		},
	})
}
