package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventops/crewhub/internal/domain/models"
)

// Fixtures provides helper methods for seeding test data directly into
// the collections, bypassing the store validation paths.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, collection string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert test %s: %v", collection, err)
	}
}

// CreateUser creates an active portal account with the given role and a
// bcrypt hash of the given password.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash test password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     name,
		FullNameCI:   text.Fold(name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       models.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateStaffProfile creates an available staff profile for the given
// staffing role with mid-range performance numbers.
func (f *Fixtures) CreateStaffProfile(ctx context.Context, name, role string) models.StaffProfile {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.StaffProfile{
		ID:              primitive.NewObjectID(),
		FullName:        name,
		FullNameCI:      text.Fold(name),
		Role:            role,
		Rating:          4.0,
		OnTimeRate:      90,
		CompletedShifts: 10,
		Availability:    models.AvailabilityAvailable,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.insert(ctx, "staff_profiles", p)
	return p
}

// CreateEvent creates a published event with the given role quotas over
// the window [start, start+8h).
func (f *Fixtures) CreateEvent(ctx context.Context, title string, start time.Time, roles map[string]int) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:            primitive.NewObjectID(),
		Title:         title,
		TitleCI:       text.Fold(title),
		StartAt:       start,
		EndAt:         start.Add(8 * time.Hour),
		Status:        models.EventPublished,
		RequiredRoles: roles,
		Filled:        map[string]int{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.insert(ctx, "events", ev)
	return ev
}

// CreateShift creates a scheduled shift for the given event and staff
// member over [start, start+4h) with a known check-in code.
func (f *Fixtures) CreateShift(ctx context.Context, eventID, staffID primitive.ObjectID, role string, start time.Time) models.Shift {
	f.t.Helper()

	now := time.Now().UTC()
	sh := models.Shift{
		ID:          primitive.NewObjectID(),
		EventID:     eventID,
		StaffID:     staffID,
		Role:        role,
		StartTime:   start,
		EndTime:     start.Add(4 * time.Hour),
		Status:      models.ShiftScheduled,
		Attendance:  models.AttendanceExpected,
		CheckInCode: "TESTCODE",
		Wage:        models.Wage{Amount: 20, Currency: "USD", Per: models.WagePerHour},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "shifts", sh)
	return sh
}

// CreateRateCard creates an hourly rate card for the given role.
func (f *Fixtures) CreateRateCard(ctx context.Context, role string, amount float64) models.RateCard {
	f.t.Helper()

	now := time.Now().UTC()
	rc := models.RateCard{
		ID:        primitive.NewObjectID(),
		Role:      role,
		Amount:    amount,
		Currency:  "USD",
		Per:       models.WagePerHour,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "rate_cards", rc)
	return rc
}
