// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CrewHub, loaded via
// WAFFLE's config system from config files, CREWHUB_* environment
// variables, and command-line flags (precedence: flags > env > files >
// defaults).
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "crewhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "crewhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "nats_url", Default: "", Desc: "NATS URL for notification fan-out (blank disables publishing)"},

	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank disables email)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@crewhub.example", Desc: "From email address"},

	{Name: "site_name", Default: "CrewHub", Desc: "Display name used in notification subjects"},

	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_staffing", Default: "all", Desc: "Staffing event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "shift_late_grace", Default: "15m", Desc: "Check-in grace before attendance is marked Late"},
	{Name: "auto_complete_grace", Default: "2h", Desc: "How long past end a Live shift may sit before the sweep completes it"},
	{Name: "pending_assign_max_age", Default: "72h", Desc: "Age at which pending assignment proposals are rejected"},
	{Name: "reminder_interval", Default: "10m", Desc: "Shift reminder sweep interval"},
	{Name: "reminder_lead", Default: "24h", Desc: "How far ahead of start shift reminders go out"},

	{Name: "match_weight_rating", Default: 35, Desc: "Match score weight for rating, in percent"},
	{Name: "match_weight_skill", Default: 25, Desc: "Match score weight for verified skills, in percent"},
	{Name: "match_weight_reliability", Default: 25, Desc: "Match score weight for on-time rate, in percent"},
	{Name: "match_weight_availability", Default: 15, Desc: "Match score bonus for Available status, in percent"},

	{Name: "admin_email", Default: "", Desc: "Email of an account promoted to admin on startup"},
}

// LoadConfig loads WAFFLE core config and CrewHub's app config.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CREWHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		NATSURL: appValues.String("nats_url"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),

		SiteName: appValues.String("site_name"),

		AuditLogAuth:     appValues.String("audit_log_auth"),
		AuditLogStaffing: appValues.String("audit_log_staffing"),

		ShiftLateGrace:      appValues.Duration("shift_late_grace", 15*time.Minute),
		AutoCompleteGrace:   appValues.Duration("auto_complete_grace", 2*time.Hour),
		PendingAssignMaxAge: appValues.Duration("pending_assign_max_age", 72*time.Hour),
		ReminderInterval:    appValues.Duration("reminder_interval", 10*time.Minute),
		ReminderLead:        appValues.Duration("reminder_lead", 24*time.Hour),

		MatchWeightRating:       appValues.Int("match_weight_rating"),
		MatchWeightSkill:        appValues.Int("match_weight_skill"),
		MatchWeightReliability:  appValues.Int("match_weight_reliability"),
		MatchWeightAvailability: appValues.Int("match_weight_availability"),

		AdminEmail: appValues.String("admin_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation before any
// backends are dialed.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 bytes in production")
	}
	if appCfg.ShiftLateGrace < 0 || appCfg.AutoCompleteGrace < 0 {
		return fmt.Errorf("shift grace durations must not be negative")
	}
	return nil
}
