// internal/app/store/payroll/payrollstore.go
package payroll

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyEntered is returned when a payroll entry for the shift
// already exists. The unique index on shift_id makes regeneration of a
// period idempotent.
var ErrAlreadyEntered = errors.New("payroll entry for shift already exists")

// Store wraps the payroll_entries collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("payroll_entries")}
}

// FromShift builds the payroll entry for a completed shift. Hourly
// wages multiply by hours worked; per-shift wages pay flat. Period is
// the YYYY-MM of the shift's scheduled start in UTC.
func FromShift(sh models.Shift) models.PayrollEntry {
	amount := sh.Wage.Amount
	if sh.Wage.Per == models.WagePerHour {
		amount = sh.Wage.Amount * sh.HoursWorked
	}
	return models.PayrollEntry{
		ShiftID:     sh.ID,
		StaffID:     sh.StaffID,
		EventID:     sh.EventID,
		Period:      sh.StartTime.UTC().Format("2006-01"),
		HoursWorked: sh.HoursWorked,
		Wage:        sh.Wage,
		Amount:      amount,
		Status:      models.PayrollPending,
	}
}

// Create inserts a payroll entry.
func (s *Store) Create(ctx context.Context, e models.PayrollEntry) (models.PayrollEntry, error) {
	e.ID = primitive.NewObjectID()
	if e.Status == "" {
		e.Status = models.PayrollPending
	}

	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.PayrollEntry{}, ErrAlreadyEntered
		}
		return models.PayrollEntry{}, err
	}
	return e, nil
}

// SetStatus advances an entry along pending -> approved -> paid.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListForStaff returns a staff member's entries, newest period first.
func (s *Store) ListForStaff(ctx context.Context, staffID primitive.ObjectID, period string, limit int64) ([]models.PayrollEntry, error) {
	filter := bson.M{"staff_id": staffID}
	if period != "" {
		filter["period"] = period
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "period", Value: -1}, {Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.PayrollEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListForPeriod returns all entries for one YYYY-MM period.
func (s *Store) ListForPeriod(ctx context.Context, period string, limit int64) ([]models.PayrollEntry, error) {
	cur, err := s.c.Find(ctx, bson.M{"period": period},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.PayrollEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PeriodTotal sums amounts for a period, optionally for one staff
// member.
func (s *Store) PeriodTotal(ctx context.Context, period string, staffID *primitive.ObjectID) (float64, error) {
	match := bson.M{"period": period}
	if staffID != nil {
		match["staff_id"] = *staffID
	}
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	})
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
