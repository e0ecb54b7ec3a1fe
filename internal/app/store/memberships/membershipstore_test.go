package membershipstore_test

import (
	"errors"
	"testing"

	membershipstore "github.com/dalemusser/creatorhub/internal/app/store/memberships"
	"github.com/dalemusser/creatorhub/internal/app/system/indexes"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/dalemusser/creatorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) *membershipstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	return membershipstore.New(db)
}

func TestCreate_DefaultsToPending(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := s.Create(ctx, models.Membership{
		CompanyID: primitive.NewObjectID(),
		UserID:    primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if m.Status != models.MembershipPending {
		t.Errorf("status: got %q, want %q", m.Status, models.MembershipPending)
	}
	if m.JoinedAt.IsZero() {
		t.Error("expected JoinedAt to be set")
	}
}

func TestCreate_DuplicatePairRejected(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	companyID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if _, err := s.Create(ctx, models.Membership{CompanyID: companyID, UserID: userID}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := s.Create(ctx, models.Membership{CompanyID: companyID, UserID: userID})
	if !errors.Is(err, membershipstore.ErrDuplicateMembership) {
		t.Fatalf("expected ErrDuplicateMembership, got %v", err)
	}

	// The same user may hold a membership in a different company; the
	// compound index is per pair.
	if _, err := s.Create(ctx, models.Membership{CompanyID: primitive.NewObjectID(), UserID: userID}); err != nil {
		t.Errorf("membership in another company should be allowed: %v", err)
	}
}

func TestCountByCompany_CountsAllStatuses(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	companyID := primitive.NewObjectID()
	if _, err := s.Create(ctx, models.Membership{CompanyID: companyID, UserID: primitive.NewObjectID(), Status: models.MembershipPending}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := s.Create(ctx, models.Membership{CompanyID: companyID, UserID: primitive.NewObjectID(), Status: models.MembershipApproved}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := s.CountByCompany(ctx, companyID)
	if err != nil {
		t.Fatalf("CountByCompany failed: %v", err)
	}
	if n != 2 {
		t.Errorf("count: got %d, want 2 (pending members occupy slots)", n)
	}
}

func TestSetStatus(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := s.Create(ctx, models.Membership{CompanyID: primitive.NewObjectID(), UserID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.SetStatus(ctx, m.ID, models.MembershipApproved); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, err := s.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.MembershipApproved {
		t.Errorf("status: got %q, want %q", got.Status, models.MembershipApproved)
	}

	if err := s.SetStatus(ctx, primitive.NewObjectID(), models.MembershipApproved); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for unknown membership, got %v", err)
	}
}

func TestDeleteByUser_Idempotent(t *testing.T) {
	s := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	if _, err := s.Create(ctx, models.Membership{CompanyID: primitive.NewObjectID(), UserID: userID}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := s.DeleteByUser(ctx, userID)
	if err != nil {
		t.Fatalf("DeleteByUser failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted: got %d, want 1", n)
	}

	n, err = s.DeleteByUser(ctx, userID)
	if err != nil {
		t.Fatalf("second DeleteByUser failed: %v", err)
	}
	if n != 0 {
		t.Errorf("second delete: got %d, want 0", n)
	}
}
