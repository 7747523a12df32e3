// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds CrewHub-specific configuration, loaded in LoadConfig
// from config files, CREWHUB_* environment variables, and command-line
// flags. WAFFLE's CoreConfig covers the framework-level settings (HTTP
// ports, TLS, log level); everything specific to the staffing platform
// lives here.
type AppConfig struct {
	// MongoDB connection.
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookies.
	SessionKey    string // signing key, must be strong in production
	SessionName   string
	SessionDomain string // blank means current host

	// NATS broker for notification fan-out. Blank disables publishing;
	// notifications are still persisted for the in-app feed.
	NATSURL string

	// SMTP for notification email. Blank host disables email delivery.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string

	// SiteName appears in notification subjects and email footers.
	SiteName string

	// Audit logging modes: "all" (db+log), "db", "log", or "off".
	AuditLogAuth     string
	AuditLogStaffing string

	// Shift timing policy.
	ShiftLateGrace      time.Duration // check-in after start+grace marks attendance Late
	AutoCompleteGrace   time.Duration // Live shifts past end+grace are swept Completed
	PendingAssignMaxAge time.Duration // pending assignments older than this are rejected
	ReminderInterval    time.Duration // how often the reminder worker sweeps
	ReminderLead        time.Duration // how far ahead of start reminders go out

	// Match scoring weights as percentages. They normally sum to 100;
	// the scorer does not require it.
	MatchWeightRating       int
	MatchWeightSkill        int
	MatchWeightReliability  int
	MatchWeightAvailability int

	// AdminEmail names an account promoted to admin on startup, so a
	// fresh deployment has an operator. Blank skips the promotion.
	AdminEmail string
}
