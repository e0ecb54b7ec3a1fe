package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/creatorhub/internal/app/store/users"
	"github.com/dalemusser/creatorhub/internal/app/system/indexes"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/dalemusser/creatorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setup(t *testing.T) *userstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return userstore.New(db)
}

func TestCreateAndGetByEmail_CaseInsensitive(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := s.Create(ctx, models.User{
		FullName: "Max Mustermann",
		Email:    "Max@Test.com",
		Role:     models.RoleManager,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := s.GetByEmail(ctx, "max@test.COM")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got user %s, want %s", got.ID.Hex(), created.ID.Hex())
	}
}

func TestCreate_DuplicateEmailRejected(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := s.Create(ctx, models.User{FullName: "Max", Email: "max@test.com", Role: models.RoleManager}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := s.Create(ctx, models.User{FullName: "Other Max", Email: "MAX@test.com", Role: models.RoleCreator})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestCompanyRef_SetAndClear(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := s.Create(ctx, models.User{FullName: "Carla", Email: "carla@test.com", Role: models.RoleCreator})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	companyID := primitive.NewObjectID()
	if err := s.SetCompanyRef(ctx, u.ID, companyID); err != nil {
		t.Fatalf("SetCompanyRef failed: %v", err)
	}
	got, _ := s.GetByID(ctx, u.ID)
	if got.CompanyID == nil || *got.CompanyID != companyID {
		t.Errorf("company_id: got %v, want %s", got.CompanyID, companyID.Hex())
	}

	if err := s.ClearCompanyRef(ctx, u.ID); err != nil {
		t.Fatalf("ClearCompanyRef failed: %v", err)
	}
	got, _ = s.GetByID(ctx, u.ID)
	if got.CompanyID != nil {
		t.Errorf("company_id should be cleared, got %v", got.CompanyID)
	}

	// Clearing an absent field stays silent.
	if err := s.ClearCompanyRef(ctx, u.ID); err != nil {
		t.Errorf("second ClearCompanyRef failed: %v", err)
	}
}
