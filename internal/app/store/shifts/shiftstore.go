// internal/app/store/shifts/shiftstore.go
package shifts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/eventops/crewhub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrBadCheckInCode is returned when the presented code does not
	// match the shift's code.
	ErrBadCheckInCode = errors.New("check-in code does not match")

	// ErrNotCheckedIn is returned on check-out without a prior check-in.
	ErrNotCheckedIn = errors.New("shift has no check-in")

	// ErrShiftNotLive is returned when a check-in or check-out hits a
	// shift whose status does not allow it.
	ErrShiftNotLive = errors.New("shift is not in a state that allows attendance updates")

	errBadWindow = errors.New("shift end must be after start")
)

// Store wraps the shifts collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("shifts")}
}

// GetByID loads a shift by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Shift, error) {
	var sh models.Shift
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sh); err != nil {
		return nil, err
	}
	return &sh, nil
}

// Create inserts a new scheduled shift with a fresh check-in code.
// Conflict checking is the caller's responsibility; the matching layer
// runs it over ForStaffInWindow before creating.
func (s *Store) Create(ctx context.Context, sh models.Shift) (models.Shift, error) {
	if !sh.EndTime.After(sh.StartTime) {
		return models.Shift{}, errBadWindow
	}

	sh.ID = primitive.NewObjectID()
	if sh.Status == "" {
		sh.Status = models.ShiftScheduled
	}
	if sh.Attendance == "" {
		sh.Attendance = models.AttendanceExpected
	}
	if sh.CheckInCode == "" {
		sh.CheckInCode = newCheckInCode()
	}

	now := time.Now().UTC()
	sh.CreatedAt = now
	sh.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, sh); err != nil {
		return models.Shift{}, err
	}
	return sh, nil
}

// ForStaffInWindow returns the staff member's non-cancelled shifts that
// overlap [start, end). Half-open comparison: a shift ending exactly at
// start, or starting exactly at end, does not overlap.
func (s *Store) ForStaffInWindow(ctx context.Context, staffID primitive.ObjectID, start, end time.Time, exclude *primitive.ObjectID) ([]models.Shift, error) {
	filter := bson.M{
		"staff_id":   staffID,
		"status":     bson.M{"$ne": models.ShiftCancelled},
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}
	if exclude != nil {
		filter["_id"] = bson.M{"$ne": *exclude}
	}

	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Shift
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckIn records attendance at the start of a shift. The code must
// match the shift's check-in code. A late arrival (after the scheduled
// start plus the grace period) is marked Late rather than Present.
func (s *Store) CheckIn(ctx context.Context, id primitive.ObjectID, code string, at time.Time, grace time.Duration) (*models.Shift, error) {
	sh, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh.Status != models.ShiftScheduled && sh.Status != models.ShiftLive {
		return nil, ErrShiftNotLive
	}
	if !strings.EqualFold(code, sh.CheckInCode) {
		return nil, ErrBadCheckInCode
	}

	attendance := models.AttendanceArrived
	if at.After(sh.StartTime.Add(grace)) {
		attendance = models.AttendanceLate
	}

	at = at.UTC()
	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "check_in_at": nil},
		bson.M{"$set": bson.M{
			"status":      models.ShiftLive,
			"attendance":  attendance,
			"check_in_at": at,
			"updated_at":  time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var updated models.Shift
	if err := res.Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Raced with another check-in; return current state.
			return s.GetByID(ctx, id)
		}
		return nil, err
	}
	return &updated, nil
}

// CheckOut closes a live shift and records hours worked, rounded to
// two decimals.
func (s *Store) CheckOut(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Shift, error) {
	sh, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh.Status != models.ShiftLive {
		return nil, ErrShiftNotLive
	}
	if sh.CheckInAt == nil {
		return nil, ErrNotCheckedIn
	}

	at = at.UTC()
	hours := at.Sub(*sh.CheckInAt).Hours()
	if hours < 0 {
		hours = 0
	}
	hours = float64(int(hours*100+0.5)) / 100

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.ShiftLive},
		bson.M{"$set": bson.M{
			"status":       models.ShiftCompleted,
			"check_out_at": at,
			"hours_worked": hours,
			"updated_at":   time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var updated models.Shift
	if err := res.Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Cancel marks a shift cancelled.
func (s *Store) Cancel(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": bson.A{models.ShiftScheduled, models.ShiftLive}}},
		bson.M{"$set": bson.M{"status": models.ShiftCancelled, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CancelForEvent cancels every scheduled shift of an event. Live and
// completed shifts are left alone; hours already worked stay payable.
func (s *Store) CancelForEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"event_id": eventID, "status": models.ShiftScheduled},
		bson.M{"$set": bson.M{"status": models.ShiftCancelled, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ListFilter narrows List. Zero values mean "any".
type ListFilter struct {
	EventID *primitive.ObjectID
	StaffID *primitive.ObjectID
	Status  string
	From    time.Time
	To      time.Time
}

// List returns shifts matching the filter, earliest start first.
func (s *Store) List(ctx context.Context, f ListFilter, limit int64) ([]models.Shift, error) {
	filter := bson.M{}
	if f.EventID != nil {
		filter["event_id"] = *f.EventID
	}
	if f.StaffID != nil {
		filter["staff_id"] = *f.StaffID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	window := bson.M{}
	if !f.From.IsZero() {
		window["$gte"] = f.From
	}
	if !f.To.IsZero() {
		window["$lt"] = f.To
	}
	if len(window) > 0 {
		filter["start_time"] = window
	}

	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Shift
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StartingSoon returns scheduled shifts starting within [from, to).
// The reminder worker sweeps these; reminder dedupe lives in the
// notification layer.
func (s *Store) StartingSoon(ctx context.Context, from, to time.Time, limit int64) ([]models.Shift, error) {
	cur, err := s.c.Find(ctx,
		bson.M{
			"status":     models.ShiftScheduled,
			"start_time": bson.M{"$gte": from, "$lt": to},
		},
		options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Shift
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StaleLive returns live shifts whose window ended before the cutoff.
// The auto-complete worker closes these out.
func (s *Store) StaleLive(ctx context.Context, cutoff time.Time, limit int64) ([]models.Shift, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"status": models.ShiftLive, "end_time": bson.M{"$lt": cutoff}},
		options.Find().SetSort(bson.D{{Key: "end_time", Value: 1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Shift
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForceComplete closes a live shift from the sweep worker, crediting
// the scheduled window as hours worked when no check-out arrived.
func (s *Store) ForceComplete(ctx context.Context, id primitive.ObjectID) (*models.Shift, error) {
	sh, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sh.Status != models.ShiftLive {
		return nil, ErrShiftNotLive
	}

	hours := sh.EndTime.Sub(sh.StartTime).Hours()
	if sh.CheckInAt != nil && sh.CheckInAt.After(sh.StartTime) {
		hours = sh.EndTime.Sub(*sh.CheckInAt).Hours()
	}
	if hours < 0 {
		hours = 0
	}
	hours = float64(int(hours*100+0.5)) / 100

	res := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.ShiftLive},
		bson.M{"$set": bson.M{
			"status":       models.ShiftCompleted,
			"check_out_at": sh.EndTime,
			"hours_worked": hours,
			"updated_at":   time.Now().UTC(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))

	var updated models.Shift
	if err := res.Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// newCheckInCode returns a short uppercase code staff present on site.
func newCheckInCode() string {
	u := uuid.NewString()
	return strings.ToUpper(strings.ReplaceAll(u, "-", "")[:8])
}
