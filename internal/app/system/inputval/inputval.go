// Package inputval validates request fields after normalization. Each
// validator returns a client-safe error suitable for a 400 response.
package inputval

import (
	"errors"
	"fmt"
	"strings"
	"time"

	validate "github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrBadObjectID  = errors.New("malformed id")
	ErrBadWindow    = errors.New("start time must be before end time")
	ErrBadEmail     = errors.New("invalid email address")
)

// ObjectID parses a required ObjectID hex field.
func ObjectID(field, hex string) (primitive.ObjectID, error) {
	if hex == "" {
		return primitive.NilObjectID, fmt.Errorf("%s: %w", field, ErrMissingField)
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s: %w", field, ErrBadObjectID)
	}
	return oid, nil
}

// OptionalObjectID parses an ObjectID hex field that may be absent.
func OptionalObjectID(field, hex string) (primitive.ObjectID, bool, error) {
	if hex == "" {
		return primitive.NilObjectID, false, nil
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false, fmt.Errorf("%s: %w", field, ErrBadObjectID)
	}
	return oid, true, nil
}

// TimeWindow validates that both ends are present and start < end.
// Zero-width windows are allowed for conflict probes (they can never
// conflict) but not for events or shifts; callers pass allowZero
// accordingly.
func TimeWindow(start, end time.Time, allowZero bool) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("start/end time: %w", ErrMissingField)
	}
	if start.After(end) {
		return ErrBadWindow
	}
	if !allowZero && start.Equal(end) {
		return ErrBadWindow
	}
	return nil
}

// Email validates an email address.
func Email(s string) error {
	if s == "" {
		return fmt.Errorf("email: %w", ErrMissingField)
	}
	if !validate.SimpleEmailValid(s) {
		return ErrBadEmail
	}
	return nil
}

// RequiredRoles validates an event's role->headcount map: non-empty role
// names and positive counts. Role names become document field paths
// (filled.<role>), so "." and "$" are rejected.
func RequiredRoles(roles map[string]int) error {
	for role, count := range roles {
		if role == "" {
			return fmt.Errorf("required_roles: empty role name: %w", ErrMissingField)
		}
		if strings.ContainsAny(role, ".$") {
			return fmt.Errorf("required_roles[%s]: role name must not contain '.' or '$'", role)
		}
		if count <= 0 {
			return fmt.Errorf("required_roles[%s]: count must be positive", role)
		}
	}
	return nil
}

// OneOf validates that value is one of the allowed strings.
func OneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: must be one of %v", field, allowed)
}
