// internal/app/notify/notify.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/eventops/crewhub/internal/app/store/notifications"
	"github.com/eventops/crewhub/internal/app/store/users"
	"github.com/eventops/crewhub/internal/app/system/mailer"
	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SubjectPrefix is the NATS subject root for notification fan-out.
// Subjects are SubjectPrefix + "." + kind, so a dashboard consumer can
// subscribe to "crewhub.notify.>".
const SubjectPrefix = "crewhub.notify"

// PublishFunc publishes one message to the broker. nats.Conn.Publish
// satisfies it. A nil PublishFunc disables broker fan-out, which keeps
// the in-app notification feed working without a broker.
type PublishFunc func(subject string, payload []byte) error

// Message is the wire payload published per notification.
type Message struct {
	RecipientID string `json:"recipient_id"`
	Kind        string `json:"kind"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	EventID     string `json:"event_id,omitempty"`
	ShiftID     string `json:"shift_id,omitempty"`
}

// Bus persists notifications, fans them out over the broker, and
// optionally emails staff. Every dispatch carries a deterministic
// dedupe key, so a retried orchestrator run reuses the stored record
// instead of duplicating it.
type Bus struct {
	publish  PublishFunc
	store    *notifications.Store
	users    *users.Store
	mail     *mailer.Mailer
	siteName string
	log      *zap.Logger
}

func NewBus(publish PublishFunc, store *notifications.Store, userStore *users.Store, mail *mailer.Mailer, siteName string, log *zap.Logger) *Bus {
	return &Bus{
		publish:  publish,
		store:    store,
		users:    userStore,
		mail:     mail,
		siteName: siteName,
		log:      log,
	}
}

// EventAssignment notifies a staff member of a new event assignment.
func (b *Bus) EventAssignment(ctx context.Context, staff models.StaffProfile, e *models.Event) error {
	n := models.Notification{
		RecipientID: recipientFor(staff),
		Kind:        models.NotifyEventAssignment,
		Subject:     fmt.Sprintf("Assigned to %s", e.Title),
		Body:        fmt.Sprintf("You have been assigned to %s (%s to %s).", e.Title, e.StartAt.Format("Jan 2 15:04"), e.EndAt.Format("15:04")),
		DedupeKey:   fmt.Sprintf("%s:%s:%s", models.NotifyEventAssignment, e.ID.Hex(), staff.ID.Hex()),
		EventID:     &e.ID,
	}
	if err := b.dispatch(ctx, n); err != nil {
		return err
	}

	b.email(ctx, staff, mailer.BuildAssignmentEmail(mailer.AssignmentEmailData{
		SiteName:  b.siteName,
		StaffName: staff.FullName,
		EventName: e.Title,
		Role:      staff.Role,
		StartAt:   e.StartAt,
		EndAt:     e.EndAt,
		Location:  e.Location,
	}))
	return nil
}

// ShiftAssignment notifies a staff member of a materialized shift.
func (b *Bus) ShiftAssignment(ctx context.Context, staff models.StaffProfile, e *models.Event, sh models.Shift) error {
	n := models.Notification{
		RecipientID: recipientFor(staff),
		Kind:        models.NotifyShiftAssignment,
		Subject:     fmt.Sprintf("Shift scheduled for %s", e.Title),
		Body:        fmt.Sprintf("Your %s shift for %s runs %s to %s.", sh.Role, e.Title, sh.StartTime.Format("Jan 2 15:04"), sh.EndTime.Format("15:04")),
		DedupeKey:   fmt.Sprintf("%s:%s", models.NotifyShiftAssignment, sh.ID.Hex()),
		EventID:     &e.ID,
		ShiftID:     &sh.ID,
	}
	if err := b.dispatch(ctx, n); err != nil {
		return err
	}

	b.email(ctx, staff, mailer.BuildShiftEmail(mailer.ShiftEmailData{
		SiteName:    b.siteName,
		StaffName:   staff.FullName,
		EventName:   e.Title,
		Role:        sh.Role,
		StartAt:     sh.StartTime,
		EndAt:       sh.EndTime,
		Location:    e.Location,
		CheckInCode: sh.CheckInCode,
	}))
	return nil
}

// ShiftReminder notifies a staff member of an upcoming shift. The
// dedupe key is per shift, so the reminder worker can sweep repeatedly
// without re-notifying.
func (b *Bus) ShiftReminder(ctx context.Context, staff models.StaffProfile, e *models.Event, sh models.Shift) error {
	return b.dispatch(ctx, models.Notification{
		RecipientID: recipientFor(staff),
		Kind:        models.NotifyShiftReminder,
		Subject:     fmt.Sprintf("Upcoming shift: %s", e.Title),
		Body:        fmt.Sprintf("Reminder: your %s shift for %s starts at %s.", sh.Role, e.Title, sh.StartTime.Format("Jan 2 15:04")),
		DedupeKey:   fmt.Sprintf("%s:%s", models.NotifyShiftReminder, sh.ID.Hex()),
		EventID:     &e.ID,
		ShiftID:     &sh.ID,
	})
}

// ApplicationDecision notifies an applicant of an accept or decline.
func (b *Bus) ApplicationDecision(ctx context.Context, recipientID primitive.ObjectID, a models.Application, eventTitle string) error {
	return b.dispatch(ctx, models.Notification{
		RecipientID: recipientID,
		Kind:        models.NotifyApplication,
		Subject:     fmt.Sprintf("Application %s: %s", a.Status, eventTitle),
		Body:        fmt.Sprintf("Your application for %s on %s was %s.", a.Role, eventTitle, a.Status),
		DedupeKey:   fmt.Sprintf("%s:%s:%s", models.NotifyApplication, a.ID.Hex(), a.Status),
		EventID:     &a.EventID,
	})
}

// BookingDecision notifies a client of a booking confirm or decline.
func (b *Bus) BookingDecision(ctx context.Context, bk models.Booking) error {
	n := models.Notification{
		RecipientID: bk.ClientID,
		Kind:        models.NotifyBooking,
		Subject:     fmt.Sprintf("Booking %s: %s", bk.Status, bk.Title),
		Body:        fmt.Sprintf("Your booking request %q was %s.", bk.Title, bk.Status),
		DedupeKey:   fmt.Sprintf("%s:%s:%s", models.NotifyBooking, bk.ID.Hex(), bk.Status),
		EventID:     bk.EventID,
	}
	return b.dispatch(ctx, n)
}

// dispatch persists the record, then publishes to the broker. The
// persisted feed is the source of truth; a broker publish failure is an
// error for the caller to log, not a reason to unwind the record.
func (b *Bus) dispatch(ctx context.Context, n models.Notification) error {
	stored, err := b.store.Record(ctx, n)
	if err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	if b.publish == nil {
		return nil
	}
	msg := Message{
		RecipientID: stored.RecipientID.Hex(),
		Kind:        stored.Kind,
		Subject:     stored.Subject,
		Body:        stored.Body,
	}
	if stored.EventID != nil {
		msg.EventID = stored.EventID.Hex()
	}
	if stored.ShiftID != nil {
		msg.ShiftID = stored.ShiftID.Hex()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := b.publish(SubjectPrefix+"."+stored.Kind, payload); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// email sends the optional mail channel copy. Failures are logged only;
// mail is best effort on top of an already-recorded notification.
func (b *Bus) email(ctx context.Context, staff models.StaffProfile, e mailer.Email) {
	if b.mail == nil || b.users == nil || staff.UserID == nil {
		return
	}
	u, err := b.users.GetByID(ctx, *staff.UserID)
	if err != nil || u.Email == "" {
		return
	}
	e.To = u.Email
	if err := b.mail.Send(e); err != nil {
		b.log.Warn("notification email failed",
			zap.String("staff_id", staff.ID.Hex()),
			zap.Error(err))
	}
}

// recipientFor picks the notification recipient for a profile: the
// linked portal account when one exists, otherwise the profile itself.
func recipientFor(staff models.StaffProfile) primitive.ObjectID {
	if staff.UserID != nil {
		return *staff.UserID
	}
	return staff.ID
}
