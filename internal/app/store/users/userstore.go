// internal/app/store/users/userstore.go
package users

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/eventops/crewhub/internal/app/system/normalize"
	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateEmail is returned when creating a user with an email
	// that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")

	errBadRole   = errors.New(`role must be "admin"|"supervisor"|"staff"|"client"`)
	errBadStatus = errors.New(`status must be "active"|"disabled"`)
	errNoEmail   = errors.New("email is required")
)

// Store wraps the users collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns
// mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing and validating fields, and
// hashes the given plaintext password.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.PortalRole(u.Role)
	if u.Status == "" {
		u.Status = models.UserActive
	}

	if u.Email == "" {
		return models.User{}, errNoEmail
	}
	switch u.Role {
	case models.RoleAdmin, models.RoleSupervisor, models.RoleStaff, models.RoleClient:
	default:
		return models.User{}, errBadRole
	}
	switch u.Status {
	case models.UserActive, models.UserDisabled:
	default:
		return models.User{}, errBadStatus
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = string(hash)

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (s *Store) VerifyPassword(u *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetRole changes a user's role.
func (s *Store) SetRole(ctx context.Context, userID primitive.ObjectID, role string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// LinkStaffProfile attaches a staff profile to a user account.
func (s *Store) LinkStaffProfile(ctx context.Context, userID, profileID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"staff_profile_id": profileID, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
