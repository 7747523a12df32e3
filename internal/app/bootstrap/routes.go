// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applicationsfeature "github.com/eventops/crewhub/internal/app/features/applications"
	authapifeature "github.com/eventops/crewhub/internal/app/features/authapi"
	bookingsfeature "github.com/eventops/crewhub/internal/app/features/bookings"
	eventsfeature "github.com/eventops/crewhub/internal/app/features/events"
	healthfeature "github.com/eventops/crewhub/internal/app/features/health"
	incidentsfeature "github.com/eventops/crewhub/internal/app/features/incidents"
	notificationsfeature "github.com/eventops/crewhub/internal/app/features/notifications"
	payrollfeature "github.com/eventops/crewhub/internal/app/features/payroll"
	shiftsfeature "github.com/eventops/crewhub/internal/app/features/shifts"
	stafffeature "github.com/eventops/crewhub/internal/app/features/staff"
	"github.com/eventops/crewhub/internal/app/matching"
	applicationstore "github.com/eventops/crewhub/internal/app/store/applications"
	auditstore "github.com/eventops/crewhub/internal/app/store/audit"
	bookingstore "github.com/eventops/crewhub/internal/app/store/bookings"
	eventstore "github.com/eventops/crewhub/internal/app/store/events"
	incidentstore "github.com/eventops/crewhub/internal/app/store/incidents"
	notificationstore "github.com/eventops/crewhub/internal/app/store/notifications"
	payrollstore "github.com/eventops/crewhub/internal/app/store/payroll"
	ratecardstore "github.com/eventops/crewhub/internal/app/store/ratecards"
	shiftstore "github.com/eventops/crewhub/internal/app/store/shifts"
	staffstore "github.com/eventops/crewhub/internal/app/store/staff"
	userstore "github.com/eventops/crewhub/internal/app/store/users"
	"github.com/eventops/crewhub/internal/app/system/auditlog"
	"github.com/eventops/crewhub/internal/app/system/auth"
	"github.com/eventops/crewhub/internal/app/system/ratelimit"
)

// BuildHandler constructs the root router. WAFFLE calls this after
// config, DB connections, schema setup, and Startup have completed, so
// the notification bus already exists.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase

	// Fresh user data on every request so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	users := userstore.New(db)
	staff := staffstore.New(db)
	events := eventstore.New(db)
	shifts := shiftstore.New(db)
	rates := ratecardstore.New(db)
	payrolls := payrollstore.New(db)
	applications := applicationstore.New(db)
	bookings := bookingstore.New(db)
	incidents := incidentstore.New(db)
	notifications := notificationstore.New(db)

	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:     appCfg.AuditLogAuth,
		Staffing: appCfg.AuditLogStaffing,
	})

	weights := matching.Weights{
		Rating:       float64(appCfg.MatchWeightRating) / 100,
		Skill:        float64(appCfg.MatchWeightSkill) / 100,
		Reliability:  float64(appCfg.MatchWeightReliability) / 100,
		Availability: float64(appCfg.MatchWeightAvailability) / 100,
	}
	scorer := matching.NewScorer(events, staff, weights)
	detector := matching.NewConflictDetector(shifts)
	orchestrator := matching.NewOrchestrator(events, scorer, detector, shifts, rates, staff, bus, logger)

	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.NATS, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	authHandler := authapifeature.NewHandler(users, sessionMgr, ratelimit.NewLoginLimiter(), audit, logger)
	r.Mount("/api/auth", authapifeature.Routes(authHandler, sessionMgr))

	eventsHandler := eventsfeature.NewHandler(events, shifts, orchestrator, scorer, audit, logger)
	r.Mount("/api/events", eventsfeature.Routes(eventsHandler, sessionMgr))

	staffHandler := stafffeature.NewHandler(staff, logger)
	r.Mount("/api/staff", stafffeature.Routes(staffHandler, sessionMgr))

	shiftsHandler := shiftsfeature.NewHandler(shifts, staff, rates, payrolls, detector, logger)
	if appCfg.ShiftLateGrace > 0 {
		shiftsHandler.LateGrace = appCfg.ShiftLateGrace
	}
	r.Mount("/api/shifts", shiftsfeature.Routes(shiftsHandler, sessionMgr))

	applicationsHandler := applicationsfeature.NewHandler(applications, events, staff, bus, audit, logger)
	r.Mount("/api/applications", applicationsfeature.Routes(applicationsHandler, sessionMgr))

	bookingsHandler := bookingsfeature.NewHandler(bookings, events, bus, audit, logger)
	r.Mount("/api/bookings", bookingsfeature.Routes(bookingsHandler, sessionMgr))

	incidentsHandler := incidentsfeature.NewHandler(incidents, events, logger)
	r.Mount("/api/incidents", incidentsfeature.Routes(incidentsHandler, sessionMgr))

	notificationsHandler := notificationsfeature.NewHandler(notifications, logger)
	r.Mount("/api/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

	payrollHandler := payrollfeature.NewHandler(payrolls, rates, shifts, audit, logger)
	r.Mount("/api/payroll", payrollfeature.Routes(payrollHandler, sessionMgr))

	return r, nil
}
