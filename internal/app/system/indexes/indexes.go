// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so any problem is visible and startup can fail
fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	ensure := func(name string, fn func(context.Context, *mongo.Database) error) {
		if err := fn(ctx, db); err != nil {
			problems = append(problems, name+": "+err.Error())
		}
	}

	ensure("users", ensureUsers)
	ensure("staff_profiles", ensureStaffProfiles)
	ensure("events", ensureEvents)
	ensure("shifts", ensureShifts)
	ensure("rate_cards", ensureRateCards)
	ensure("applications", ensureApplications)
	ensure("bookings", ensureBookings)
	ensure("incidents", ensureIncidents)
	ensure("notifications", ensureNotifications)
	ensure("payroll_entries", ensurePayrollEntries)
	ensure("audit_logs", ensureAuditLogs)

	if len(problems) > 0 {
		return &EnsureError{Problems: problems}
	}
	logger.Info("mongo indexes ensured")
	return nil
}

// EnsureError aggregates per-collection index failures.
type EnsureError struct {
	Problems []string
}

func (e *EnsureError) Error() string {
	return "index setup failed: " + strings.Join(e.Problems, "; ")
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_email"),
		},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "status", Value: 1}}},
	})
	return err
}

func ensureStaffProfiles(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("staff_profiles").Indexes().CreateMany(ctx, []mongo.IndexModel{
		// The scorer's candidate pool query: exact role, availability filter.
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "availability", Value: 1}}},
		{Keys: bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}},
	})
	return err
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("events").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "start_at", Value: 1}}},
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
		{Keys: bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}}},
	})
	return err
}

func ensureShifts(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("shifts").Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Conflict detection scans one staff member's non-cancelled
		// shifts ordered by start.
		{Keys: bson.D{{Key: "staff_id", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "event_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "end_time", Value: 1}}},
	})
	return err
}

func ensureRateCards(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("rate_cards").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "role", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_role"),
	})
	return err
}

func ensureApplications(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("applications").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "staff_id", Value: 1}, {Key: "role", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_event_staff_role"),
		},
		{Keys: bson.D{{Key: "staff_id", Value: 1}, {Key: "status", Value: 1}}},
	})
	return err
}

func ensureBookings(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("bookings").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "status", Value: 1}},
	})
	return err
}

func ensureIncidents(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("incidents").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "severity", Value: 1}}},
	})
	return err
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("notifications").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "dedupe_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_dedupe_key"),
		},
	})
	return err
}

func ensurePayrollEntries(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("payroll_entries").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shift_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_shift"),
		},
		{Keys: bson.D{{Key: "staff_id", Value: 1}, {Key: "period", Value: 1}}},
	})
	return err
}

func ensureAuditLogs(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("audit_logs").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	return err
}
