package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateManager inserts a manager account and returns it.
func (f *Fixtures) CreateManager(ctx context.Context, name, email string) models.User {
	return f.createUser(ctx, name, email, models.RoleManager)
}

// CreateCreator inserts a creator account and returns it.
func (f *Fixtures) CreateCreator(ctx context.Context, name, email string) models.User {
	return f.createUser(ctx, name, email, models.RoleCreator)
}

func (f *Fixtures) createUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   name,
		FullNameCI: text.Fold(name),
		Email:      email,
		EmailCI:    text.Fold(email),
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateCompany inserts a company owned by the given user and returns
// it. The invite code is fixed per call so tests can join with it.
func (f *Fixtures) CreateCompany(ctx context.Context, name string, ownerID primitive.ObjectID, inviteCode, tier string) models.Company {
	f.t.Helper()

	now := time.Now().UTC()
	co := models.Company{
		ID:         primitive.NewObjectID(),
		Name:       name,
		NameCI:     text.Fold(name),
		OwnerID:    ownerID,
		InviteCode: inviteCode,
		Tier:       tier,
		CreatedAt:  now,
	}
	if _, err := f.db.Collection("companies").InsertOne(ctx, co); err != nil {
		f.t.Fatalf("failed to create test company: %v", err)
	}
	return co
}

// CreateMembership inserts a membership record with the given status.
func (f *Fixtures) CreateMembership(ctx context.Context, companyID, userID primitive.ObjectID, status string) models.Membership {
	f.t.Helper()

	m := models.Membership{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,
		UserID:    userID,
		Status:    status,
		Role:      models.RoleCreator,
		JoinedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// SetLegacyCompanyRef writes the single-field company reference on a
// user document, the way older account data carried associations.
func (f *Fixtures) SetLegacyCompanyRef(ctx context.Context, userID, companyID primitive.ObjectID) {
	f.t.Helper()

	_, err := f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"company_id": companyID}})
	if err != nil {
		f.t.Fatalf("failed to set legacy company ref: %v", err)
	}
}
