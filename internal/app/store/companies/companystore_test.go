package companystore_test

import (
	"errors"
	"testing"

	companystore "github.com/dalemusser/creatorhub/internal/app/store/companies"
	"github.com/dalemusser/creatorhub/internal/app/system/indexes"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/dalemusser/creatorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) *companystore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return companystore.New(db)
}

func TestCreate_DefaultsToFreeTier(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	co, err := s.Create(ctx, models.Company{
		Name:       "Studio Nord",
		OwnerID:    primitive.NewObjectID(),
		InviteCode: "AAAAAA",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if co.Tier != models.TierFree {
		t.Errorf("tier: got %q, want %q", co.Tier, models.TierFree)
	}
	if co.ID.IsZero() {
		t.Error("expected assigned ObjectID")
	}
}

func TestCreate_DuplicateOwnerRejected(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ownerID := primitive.NewObjectID()
	if _, err := s.Create(ctx, models.Company{Name: "Erste", OwnerID: ownerID, InviteCode: "AAAAAA"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := s.Create(ctx, models.Company{Name: "Zweite", OwnerID: ownerID, InviteCode: "BBBBBB"})
	if !errors.Is(err, companystore.ErrDuplicateOwner) {
		t.Fatalf("expected ErrDuplicateOwner, got %v", err)
	}
}

func TestCreate_DuplicateInviteCodeRejected(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := s.Create(ctx, models.Company{Name: "Erste", OwnerID: primitive.NewObjectID(), InviteCode: "CCCCCC"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := s.Create(ctx, models.Company{Name: "Zweite", OwnerID: primitive.NewObjectID(), InviteCode: "CCCCCC"})
	if !errors.Is(err, companystore.ErrDuplicateInviteCode) {
		t.Fatalf("expected ErrDuplicateInviteCode, got %v", err)
	}
}

func TestGetByInviteCode(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := s.Create(ctx, models.Company{Name: "Studio Nord", OwnerID: primitive.NewObjectID(), InviteCode: "DDDDDD"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	co, err := s.GetByInviteCode(ctx, "DDDDDD")
	if err != nil {
		t.Fatalf("GetByInviteCode failed: %v", err)
	}
	if co.ID != created.ID {
		t.Errorf("got company %s, want %s", co.ID.Hex(), created.ID.Hex())
	}

	if _, err := s.GetByInviteCode(ctx, "ZZZZZZ"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for unknown code, got %v", err)
	}
}

func TestUpdateTier(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	co, err := s.Create(ctx, models.Company{Name: "Studio Nord", OwnerID: primitive.NewObjectID(), InviteCode: "EEEEEE"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.UpdateTier(ctx, co.ID, models.TierBusiness); err != nil {
		t.Fatalf("UpdateTier failed: %v", err)
	}
	got, err := s.GetByID(ctx, co.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Tier != models.TierBusiness {
		t.Errorf("tier: got %q, want %q", got.Tier, models.TierBusiness)
	}

	if err := s.UpdateTier(ctx, co.ID, "platinum"); err == nil {
		t.Error("expected error for unknown tier")
	}
}
