// internal/app/store/ratecards/ratecardstore.go
package ratecards

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/eventops/crewhub/internal/app/system/normalize"
	"github.com/eventops/crewhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNoRateCard is returned when a role has no wage entry. The
	// orchestrator surfaces this per staff member instead of creating a
	// zero-wage shift.
	ErrNoRateCard = errors.New("no rate card for role")

	// ErrDuplicateRole is returned when creating a second card for a role.
	ErrDuplicateRole = errors.New("rate card for role already exists")

	errBadAmount = errors.New("amount must be positive")
	errBadPer    = errors.New("per must be hour or shift")
)

// Store wraps the rate_cards collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("rate_cards")}
}

// WageForRole looks up the wage for a role. Role matching is exact and
// case-sensitive, same as assignment role matching.
func (s *Store) WageForRole(ctx context.Context, role string) (models.Wage, error) {
	var rc models.RateCard
	err := s.c.FindOne(ctx, bson.M{"role": role}).Decode(&rc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Wage{}, ErrNoRateCard
	}
	if err != nil {
		return models.Wage{}, err
	}
	return models.Wage{Amount: rc.Amount, Currency: rc.Currency, Per: rc.Per}, nil
}

// Create inserts a rate card. The unique index on role turns a second
// card for the same role into ErrDuplicateRole.
func (s *Store) Create(ctx context.Context, rc models.RateCard) (models.RateCard, error) {
	rc.ID = primitive.NewObjectID()
	rc.Role = normalize.Role(rc.Role)
	if rc.Amount <= 0 {
		return models.RateCard{}, errBadAmount
	}
	if rc.Per != models.WagePerHour && rc.Per != models.WagePerShift {
		return models.RateCard{}, errBadPer
	}
	if rc.Currency == "" {
		rc.Currency = "USD"
	}

	now := time.Now().UTC()
	rc.CreatedAt = now
	rc.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, rc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.RateCard{}, ErrDuplicateRole
		}
		return models.RateCard{}, err
	}
	return rc, nil
}

// Update changes the amount, currency, or per unit of a card.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, rc models.RateCard) error {
	if rc.Amount <= 0 {
		return errBadAmount
	}
	if rc.Per != models.WagePerHour && rc.Per != models.WagePerShift {
		return errBadPer
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"amount":     rc.Amount,
			"currency":   rc.Currency,
			"per":        rc.Per,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a rate card. Existing shifts keep the wage they copied.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns all rate cards ordered by role.
func (s *Store) List(ctx context.Context) ([]models.RateCard, error) {
	cur, err := s.c.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "role", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.RateCard
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
