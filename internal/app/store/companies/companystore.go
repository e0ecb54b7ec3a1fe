// internal/app/store/companies/companystore.go
package companystore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/creatorhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("companies")}
}

var (
	// ErrDuplicateOwner is returned when the owner already has a company.
	// Backed by the unique index on owner_id; the coordinator's pre-check
	// only exists for the friendlier message.
	ErrDuplicateOwner = errors.New("owner already has a company")

	// ErrDuplicateInviteCode surfaces the (very unlikely) invite-code
	// collision via the unique index on invite_code.
	ErrDuplicateInviteCode = errors.New("invite code already in use")

	errBadTier = errors.New(`tier must be "free", "pro", or "business"`)
)

// Create inserts a new company. The caller supplies Name, OwnerID,
// OwnerEmail, and InviteCode; tier defaults to free.
func (s *Store) Create(ctx context.Context, co models.Company) (models.Company, error) {
	co.ID = primitive.NewObjectID()
	co.Name = strings.TrimSpace(co.Name)
	co.NameCI = text.Fold(co.Name)
	if co.Tier == "" {
		co.Tier = models.TierFree
	}
	co.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, co); err != nil {
		if wafflemongo.IsDup(err) {
			// Two unique indexes can fire here; owner duplication is the
			// overwhelmingly likely one and the one callers pre-check for.
			if strings.Contains(err.Error(), "invite_code") {
				return models.Company{}, ErrDuplicateInviteCode
			}
			return models.Company{}, ErrDuplicateOwner
		}
		return models.Company{}, err
	}
	return co, nil
}

// GetByID loads a company by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	var co models.Company
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&co); err != nil {
		return nil, err
	}
	return &co, nil
}

// GetByOwner loads the company owned by the given user.
// Returns mongo.ErrNoDocuments if the user owns nothing.
func (s *Store) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.Company, error) {
	var co models.Company
	if err := s.c.FindOne(ctx, bson.M{"owner_id": ownerID}).Decode(&co); err != nil {
		return nil, err
	}
	return &co, nil
}

// GetByInviteCode loads a company by its normalized (uppercase) invite
// code. Callers normalize the user-supplied code before lookup.
func (s *Store) GetByInviteCode(ctx context.Context, code string) (*models.Company, error) {
	var co models.Company
	if err := s.c.FindOne(ctx, bson.M{"invite_code": code}).Decode(&co); err != nil {
		return nil, err
	}
	return &co, nil
}

// UpdateTier changes a company's subscription tier. Slot limits are
// evaluated at join time only, so a downgrade does not evict members.
func (s *Store) UpdateTier(ctx context.Context, id primitive.ObjectID, tier string) error {
	switch tier {
	case models.TierFree, models.TierPro, models.TierBusiness:
	default:
		return errBadTier
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"tier": tier}})
	return err
}
