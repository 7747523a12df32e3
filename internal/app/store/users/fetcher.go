// internal/app/store/users/fetcher.go
package users

import (
	"context"
	"errors"

	"github.com/eventops/crewhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fetcher adapts the user store to auth.UserFetcher so the session
// middleware refreshes user data on every request. Disabled or deleted
// accounts resolve to nil, which drops the session.
type Fetcher struct {
	store *Store
}

// NewFetcher creates a session user fetcher backed by the users
// collection.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{store: New(db)}
}

// FetchSessionUser implements auth.UserFetcher.
func (f *Fetcher) FetchSessionUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil // malformed session, treat as signed out
	}
	u, err := f.store.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	if u.Status == "disabled" {
		return nil, nil
	}

	su := &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
	}
	if u.StaffProfileID != nil {
		su.StaffProfileID = u.StaffProfileID.Hex()
	}
	return su, nil
}
