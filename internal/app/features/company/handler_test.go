package company_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	companyfeature "github.com/dalemusser/creatorhub/internal/app/features/company"
	"github.com/dalemusser/creatorhub/internal/app/membership"
	"github.com/dalemusser/creatorhub/internal/app/notify"
	"github.com/dalemusser/creatorhub/internal/app/system/indexes"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/dalemusser/creatorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*companyfeature.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	logger := zap.NewNop()
	notifier := notify.New(db, nil, logger)
	coordinator := membership.New(db, notifier, logger)
	hub := membership.NewHub(db, coordinator, logger)
	t.Cleanup(hub.Shutdown)

	return companyfeature.NewHandler(db, coordinator, hub, logger), db
}

func TestServeState_Unauthenticated(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/company", nil)
	rec := httptest.NewRecorder()
	h.ServeState(rec, req)

	if rec.Code != 401 {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestServeState_NoAssociation(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")

	req := testutil.NewAuthenticatedRequest("GET", "/api/company", nil, testutil.AsTestUser(creator))
	rec := httptest.NewRecorder()
	h.ServeState(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status: got %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var assoc membership.Association
	if err := json.Unmarshal(rec.Body.Bytes(), &assoc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if assoc.Company != nil {
		t.Errorf("expected no company, got %+v", assoc.Company)
	}
	if !assoc.Capabilities.CanJoinCompany || assoc.Capabilities.CanOwnCompany {
		t.Errorf("creator capabilities wrong: %+v", assoc.Capabilities)
	}
}

func TestHandleCreate_ManagerFlow(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	manager := fx.CreateManager(ctx, "Max", "max@test.com")

	body := strings.NewReader(`{"name":"Studio Nord"}`)
	req := testutil.NewAuthenticatedRequest("POST", "/api/company", body, testutil.AsTestUser(manager))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != 201 {
		t.Fatalf("status: got %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var co models.Company
	if err := json.Unmarshal(rec.Body.Bytes(), &co); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if co.Name != "Studio Nord" || co.InviteCode == "" {
		t.Errorf("unexpected company: %+v", co)
	}
}

func TestHandleCreate_CreatorGets403(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")

	body := strings.NewReader(`{"name":"Studio Nord"}`)
	req := testutil.NewAuthenticatedRequest("POST", "/api/company", body, testutil.AsTestUser(creator))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != 403 {
		t.Fatalf("status: got %d, want 403 (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Nur Manager") {
		t.Errorf("expected German capability message, got %s", rec.Body.String())
	}
}

func TestHandleJoin_InvalidCodeGets404(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")

	body := strings.NewReader(`{"code":"ZZZZZZ"}`)
	req := testutil.NewAuthenticatedRequest("POST", "/api/company/join", body, testutil.AsTestUser(creator))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleJoin(rec, req)

	if rec.Code != 404 {
		t.Fatalf("status: got %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Ungültiger Einladungscode") {
		t.Errorf("expected invalid-code message, got %s", rec.Body.String())
	}
}

func TestHandleJoin_FullTeamGets409(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateManager(ctx, "Max", "max@test.com")
	co := fx.CreateCompany(ctx, "Studio Nord", owner.ID, "HHHHHH", models.TierFree)
	first := fx.CreateCreator(ctx, "Erste", "erste@test.com")
	fx.CreateMembership(ctx, co.ID, first.ID, models.MembershipPending)

	second := fx.CreateCreator(ctx, "Zweite", "zweite@test.com")
	body := strings.NewReader(`{"code":"HHHHHH"}`)
	req := testutil.NewAuthenticatedRequest("POST", "/api/company/join", body, testutil.AsTestUser(second))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleJoin(rec, req)

	if rec.Code != 409 {
		t.Fatalf("status: got %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Team ist voll (1/1)") {
		t.Errorf("expected team-full message, got %s", rec.Body.String())
	}
}

func TestServeRoster_NoCompanyGets404(t *testing.T) {
	h, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")

	req := testutil.NewAuthenticatedRequest("GET", "/api/company/roster", nil, testutil.AsTestUser(creator))
	rec := httptest.NewRecorder()
	h.ServeRoster(rec, req)

	if rec.Code != 404 {
		t.Errorf("status: got %d, want 404 (body %s)", rec.Code, rec.Body.String())
	}
}
