// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/creatorhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("memberships")}
}

// ErrDuplicateMembership is returned when the (company, user) pair
// already has a membership. Backed by the unique compound index.
var ErrDuplicateMembership = errors.New("user is already a member of this company")

// Create inserts a membership in pending state. Status and JoinedAt
// are set here; the caller supplies CompanyID, UserID, and Role.
func (s *Store) Create(ctx context.Context, m models.Membership) (models.Membership, error) {
	m.ID = primitive.NewObjectID()
	if m.Status == "" {
		m.Status = models.MembershipPending
	}
	m.JoinedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Membership{}, ErrDuplicateMembership
		}
		return models.Membership{}, err
	}
	return m, nil
}

// GetByID loads a membership by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Membership, error) {
	var m models.Membership
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByUser returns the user's membership record, regardless of status.
// Returns mongo.ErrNoDocuments if the user has none.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Membership, error) {
	var m models.Membership
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Exists checks if a membership exists for the given company and user.
func (s *Store) Exists(ctx context.Context, companyID, userID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"company_id": companyID, "user_id": userID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountByCompany returns the count of memberships for a company across
// all statuses. Slot limits compare against this total.
func (s *Store) CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"company_id": companyID})
}

// ListByCompany returns all memberships for a company.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.Membership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// SetStatus updates a membership's status.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a membership by id.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByUser removes the user's membership, if any. Returns the
// number of documents deleted so callers can tell whether one existed.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
