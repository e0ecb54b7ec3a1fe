// internal/app/store/contracts/contractstore.go
package contractstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/creatorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contracts")}
}

var (
	errEmptyBody = errors.New("contract body is required")

	// ErrAlreadySigned is returned when signing a contract twice.
	ErrAlreadySigned = errors.New("contract is already signed")
)

// Create inserts an unsigned NDA for a member. Body is sanitized by
// the caller before it gets here.
func (s *Store) Create(ctx context.Context, c models.Contract) (models.Contract, error) {
	if strings.TrimSpace(c.Body) == "" {
		return models.Contract{}, errEmptyBody
	}
	c.ID = primitive.NewObjectID()
	c.Signed = false
	c.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Contract{}, err
	}
	return c, nil
}

// GetByID loads a contract by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Contract, error) {
	var c models.Contract
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByCompany returns a company's contracts, newest first.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.Contract, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var contracts []models.Contract
	if err := cur.All(ctx, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}

// ListByUser returns the contracts addressed to a user, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Contract, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var contracts []models.Contract
	if err := cur.All(ctx, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}

// Sign records the member's typed signature. The filter requires
// signed=false so a double submit cannot overwrite the first
// signature; the second attempt reports ErrAlreadySigned.
func (s *Store) Sign(ctx context.Context, id, userID primitive.ObjectID, signatureName string) error {
	signatureName = strings.TrimSpace(signatureName)
	if signatureName == "" {
		return errors.New("signature name is required")
	}
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID, "signed": false},
		bson.M{"$set": bson.M{
			"signed":         true,
			"signature_name": signatureName,
			"signed_at":      now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish "not yours / missing" from "already signed".
		err := s.c.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Err()
		if err == nil {
			return ErrAlreadySigned
		}
		return mongo.ErrNoDocuments
	}
	return nil
}
