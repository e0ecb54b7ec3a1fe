// internal/app/store/assets/assetstore.go
package assetstore

import (
	"context"
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
	return &Store{c: db.Collection("assets")}
}

// Create inserts asset metadata. The file bytes are already in the
// storage backend when this is called.
func (s *Store) Create(ctx context.Context, a models.Asset) (models.Asset, error) {
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Asset{}, err
	}
	return a, nil
}

// GetByID loads an asset, scoped to the company.
func (s *Store) GetByID(ctx context.Context, id, companyID primitive.ObjectID) (*models.Asset, error) {
	var a models.Asset
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "company_id": companyID}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByCompany returns a company's assets, newest first.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.Asset, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var assets []models.Asset
	if err := cur.All(ctx, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}

// Delete removes asset metadata, scoped to the company. The caller
// deletes the stored file separately.
func (s *Store) Delete(ctx context.Context, id, companyID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
