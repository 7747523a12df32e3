// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/eventops/crewhub/internal/app/notify"
	eventstore "github.com/eventops/crewhub/internal/app/store/events"
	notificationstore "github.com/eventops/crewhub/internal/app/store/notifications"
	payrollstore "github.com/eventops/crewhub/internal/app/store/payroll"
	shiftstore "github.com/eventops/crewhub/internal/app/store/shifts"
	staffstore "github.com/eventops/crewhub/internal/app/store/staff"
	userstore "github.com/eventops/crewhub/internal/app/store/users"
	"github.com/eventops/crewhub/internal/app/system/mailer"
	"github.com/eventops/crewhub/internal/app/system/tasks"
	"github.com/eventops/crewhub/internal/app/system/workers"
	"github.com/eventops/crewhub/internal/domain/models"
)

// Background machinery started here and stopped in Shutdown. BuildHandler
// reuses the bus so request-path notifications and worker notifications
// share one dispatch pipeline.
var (
	bus       *notify.Bus
	jobRunner *tasks.Runner
	reminder  *workers.ShiftReminder
)

// Startup builds the notification bus, starts the background sweeps,
// and promotes the configured admin account.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var mail *mailer.Mailer
	if appCfg.MailSMTPHost != "" {
		mail = mailer.New(appCfg.MailSMTPHost, appCfg.MailSMTPPort, appCfg.MailSMTPUser, appCfg.MailSMTPPass, appCfg.MailFrom)
	}

	var publish notify.PublishFunc
	if deps.NATS != nil {
		publish = deps.NATS.Publish
	}

	db := deps.MongoDatabase
	users := userstore.New(db)
	bus = notify.NewBus(publish, notificationstore.New(db), users, mail, appCfg.SiteName, logger)

	shifts := shiftstore.New(db)
	events := eventstore.New(db)
	staff := staffstore.New(db)

	jobRunner = tasks.NewRunner(logger,
		tasks.ShiftAutoCompleteJob(shifts, staff, payrollstore.New(db), logger, appCfg.AutoCompleteGrace),
		tasks.PendingAssignmentExpiryJob(events, logger, appCfg.PendingAssignMaxAge),
	)
	jobRunner.Start()

	reminder = workers.NewShiftReminder(shifts, events, staff, bus, logger, appCfg.ReminderInterval, appCfg.ReminderLead)
	reminder.Start()

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, users, appCfg.AdminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin promotes an existing account to admin. It never creates
// accounts: an operator signs up through the normal path first, then a
// restart with admin_email set grants the role.
func ensureAdmin(ctx context.Context, users *userstore.Store, email string, logger *zap.Logger) error {
	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			logger.Warn("admin_email account does not exist yet; create it and restart",
				zap.String("email", email))
			return nil
		}
		return err
	}
	if u.Role == models.RoleAdmin {
		return nil
	}
	if err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return err
	}
	logger.Info("promoted account to admin", zap.String("email", email))
	return nil
}
