package inputval

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestObjectID(t *testing.T) {
	valid := primitive.NewObjectID()

	oid, err := ObjectID("event_id", valid.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oid != valid {
		t.Errorf("oid = %v, want %v", oid, valid)
	}

	if _, err := ObjectID("event_id", ""); !errors.Is(err, ErrMissingField) {
		t.Errorf("empty: err = %v, want ErrMissingField", err)
	}
	if _, err := ObjectID("event_id", "zzz"); !errors.Is(err, ErrBadObjectID) {
		t.Errorf("malformed: err = %v, want ErrBadObjectID", err)
	}
}

func TestTimeWindow(t *testing.T) {
	now := time.Now().UTC()

	if err := TimeWindow(now, now.Add(time.Hour), false); err != nil {
		t.Errorf("valid window: %v", err)
	}
	if err := TimeWindow(now.Add(time.Hour), now, false); !errors.Is(err, ErrBadWindow) {
		t.Errorf("inverted window: err = %v, want ErrBadWindow", err)
	}
	if err := TimeWindow(now, now, true); err != nil {
		t.Errorf("zero-width allowed: %v", err)
	}
	if err := TimeWindow(now, now, false); !errors.Is(err, ErrBadWindow) {
		t.Errorf("zero-width disallowed: err = %v, want ErrBadWindow", err)
	}
	if err := TimeWindow(time.Time{}, now, true); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing start: err = %v, want ErrMissingField", err)
	}
}

func TestRequiredRoles(t *testing.T) {
	if err := RequiredRoles(map[string]int{"Protocol": 2, "Security": 1}); err != nil {
		t.Errorf("valid roles: %v", err)
	}
	if err := RequiredRoles(map[string]int{"Protocol": 0}); err == nil {
		t.Error("zero count: expected error")
	}
	if err := RequiredRoles(map[string]int{"": 1}); err == nil {
		t.Error("empty role: expected error")
	}
	if err := RequiredRoles(nil); err != nil {
		t.Errorf("nil map: %v", err)
	}
}

func TestOneOf(t *testing.T) {
	if err := OneOf("status", "approved", "pending", "approved", "rejected"); err != nil {
		t.Errorf("valid value: %v", err)
	}
	if err := OneOf("status", "bogus", "pending", "approved"); err == nil {
		t.Error("invalid value: expected error")
	}
}
