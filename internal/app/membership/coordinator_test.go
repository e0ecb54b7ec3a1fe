package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dalemusser/creatorhub/internal/app/notify"
	"github.com/dalemusser/creatorhub/internal/app/system/indexes"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/dalemusser/creatorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// captureNotifier records dispatched notifications for assertions.
type captureNotifier struct {
	mu     sync.Mutex
	sent   []models.Notification
	emails []string
}

func (n *captureNotifier) Notify(_ context.Context, notif models.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notif)
	n.emails = append(n.emails, "")
}

func (n *captureNotifier) NotifyEmail(_ context.Context, notif models.Notification, email string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notif)
	n.emails = append(n.emails, email)
}

func (n *captureNotifier) all() []models.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

func (n *captureNotifier) allEmails() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.emails))
	copy(out, n.emails)
	return out
}

func setupCoordinator(t *testing.T) (*Coordinator, *captureNotifier, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	notifier := &captureNotifier{}
	c := New(db, notifier, zap.NewNop())
	return c, notifier, testutil.NewFixtures(t, db), db
}

func TestCreateCompany_ManagerBecomesOwner(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max Mustermann", "max@test.com")

	co, err := c.CreateCompany(ctx, &manager, "Studio Nord")
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	if co.OwnerID != manager.ID {
		t.Errorf("owner: got %s, want %s", co.OwnerID.Hex(), manager.ID.Hex())
	}
	if co.Tier != models.TierFree {
		t.Errorf("tier: got %q, want %q", co.Tier, models.TierFree)
	}
	if len(co.InviteCode) != CodeLength {
		t.Errorf("invite code length: got %d, want %d", len(co.InviteCode), CodeLength)
	}

	// The legacy profile field must point at the new company.
	assoc, err := c.Resolve(ctx, &manager)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !assoc.IsOwner || assoc.Company == nil || assoc.Company.ID != co.ID {
		t.Errorf("expected owner association with company %s, got %+v", co.ID.Hex(), assoc)
	}
	if assoc.Membership == nil || assoc.Membership.Role != models.RoleOwner {
		t.Errorf("expected synthesized owner membership, got %+v", assoc.Membership)
	}
}

func TestCreateCompany_CreatorRejected(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateCreator(ctx, "Carla Creator", "carla@test.com")

	_, err := c.CreateCompany(ctx, &creator, "Nope GmbH")
	if KindOf(err) != KindCapability {
		t.Fatalf("expected capability error, got %v", err)
	}
}

func TestCreateCompany_SecondCompanyRejected(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	if _, err := c.CreateCompany(ctx, &manager, "Erste GmbH"); err != nil {
		t.Fatalf("first CreateCompany failed: %v", err)
	}

	_, err := c.CreateCompany(ctx, &manager, "Zweite GmbH")
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "Du besitzt bereits eine Firma." {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestCreateCompany_EmptyName(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	_, err := c.CreateCompany(ctx, &manager, "   ")
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestJoinCompany_PendingAndNotifiesOwner(t *testing.T) {
	c, notifier, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	co, err := c.CreateCompany(ctx, &manager, "Studio Nord")
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")

	name, err := c.JoinCompany(ctx, &creator, co.InviteCode)
	if err != nil {
		t.Fatalf("JoinCompany failed: %v", err)
	}
	if name != "Studio Nord" {
		t.Errorf("company name: got %q, want %q", name, "Studio Nord")
	}

	assoc, err := c.Resolve(ctx, &creator)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if assoc.Membership == nil || assoc.Membership.Status != models.MembershipPending {
		t.Errorf("expected pending membership, got %+v", assoc.Membership)
	}
	if assoc.IsOwner {
		t.Error("joiner must not be owner")
	}

	sent := notifier.all()
	if len(sent) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(sent))
	}
	if sent[0].RecipientID != manager.ID || sent[0].Kind != models.NotifyJoinRequest {
		t.Errorf("unexpected notification: %+v", sent[0])
	}
	if got := notifier.allEmails()[0]; got != "max@test.com" {
		t.Errorf("owner email: got %q, want %q", got, "max@test.com")
	}
}

func TestJoinCompany_InvalidCode(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	_, err := c.JoinCompany(ctx, &creator, "ZZZZZZ")
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
	if err.Error() != "Ungültiger Einladungscode" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestJoinCompany_CodeCaseInsensitive(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	co, err := c.CreateCompany(ctx, &manager, "Studio Nord")
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")

	lower := "  " + strings.ToLower(co.InviteCode) + " "
	if _, err := c.JoinCompany(ctx, &creator, lower); err != nil {
		t.Fatalf("JoinCompany with lowercase code failed: %v", err)
	}
}

func TestJoinCompany_TeamFullOnFreeTier(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	co, err := c.CreateCompany(ctx, &manager, "Studio Nord")
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	first := fx.CreateCreator(ctx, "Erste", "erste@test.com")
	if _, err := c.JoinCompany(ctx, &first, co.InviteCode); err != nil {
		t.Fatalf("first join failed: %v", err)
	}

	second := fx.CreateCreator(ctx, "Zweite", "zweite@test.com")
	_, err = c.JoinCompany(ctx, &second, co.InviteCode)
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "Team ist voll (1/1)" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestJoinCompany_PendingMembersOccupySlots(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	co, err := c.CreateCompany(ctx, &manager, "Studio Pro")
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	// Pro tier: 5 slots. Fill them all with pending members.
	if err := c.companies.UpdateTier(ctx, co.ID, models.TierPro); err != nil {
		t.Fatalf("UpdateTier failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		u := fx.CreateCreator(ctx, fmt.Sprintf("Creator %d", i), fmt.Sprintf("c%d@test.com", i))
		if _, err := c.JoinCompany(ctx, &u, co.InviteCode); err != nil {
			t.Fatalf("join %d failed: %v", i, err)
		}
	}

	extra := fx.CreateCreator(ctx, "Extra", "extra@test.com")
	_, err = c.JoinCompany(ctx, &extra, co.InviteCode)
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict at capacity, got %v", err)
	}
	if err.Error() != "Team ist voll (5/5)" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestJoinCompany_AlreadyMember(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	co, err := c.CreateCompany(ctx, &manager, "Studio Nord")
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	if err := c.companies.UpdateTier(ctx, co.ID, models.TierPro); err != nil {
		t.Fatalf("UpdateTier failed: %v", err)
	}

	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	if _, err := c.JoinCompany(ctx, &creator, co.InviteCode); err != nil {
		t.Fatalf("first join failed: %v", err)
	}

	_, err = c.JoinCompany(ctx, &creator, co.InviteCode)
	if KindOf(err) != KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err.Error() != "Du bist bereits Mitglied dieser Firma." {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestApproveMember_FlowAndNotification(t *testing.T) {
	c, notifier, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	co, err := c.CreateCompany(ctx, &manager, "Studio Nord")
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	if _, err := c.JoinCompany(ctx, &creator, co.InviteCode); err != nil {
		t.Fatalf("JoinCompany failed: %v", err)
	}

	assoc, err := c.Resolve(ctx, &creator)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if err := c.ApproveMember(ctx, &manager, assoc.Membership.ID); err != nil {
		t.Fatalf("ApproveMember failed: %v", err)
	}

	after, err := c.Resolve(ctx, &creator)
	if err != nil {
		t.Fatalf("Resolve after approve failed: %v", err)
	}
	if after.Membership.Status != models.MembershipApproved {
		t.Errorf("status: got %q, want %q", after.Membership.Status, models.MembershipApproved)
	}

	sent := notifier.all()
	// Join request to owner, then approval to member.
	if len(sent) != 2 {
		t.Fatalf("expected two notifications, got %d", len(sent))
	}
	if sent[1].RecipientID != creator.ID || sent[1].Kind != models.NotifyMemberApproved {
		t.Errorf("unexpected approval notification: %+v", sent[1])
	}
	if got := notifier.allEmails()[1]; got != "carla@test.com" {
		t.Errorf("member email: got %q, want %q", got, "carla@test.com")
	}
}

func TestApproveMember_NonOwnerRejected(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	co, err := c.CreateCompany(ctx, &manager, "Studio Nord")
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	if _, err := c.JoinCompany(ctx, &creator, co.InviteCode); err != nil {
		t.Fatalf("JoinCompany failed: %v", err)
	}
	assoc, _ := c.Resolve(ctx, &creator)

	err = c.ApproveMember(ctx, &creator, assoc.Membership.ID)
	if KindOf(err) != KindCapability {
		t.Fatalf("expected capability error, got %v", err)
	}
}

func TestRemoveMember_ClearsLegacyRef(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	co, err := c.CreateCompany(ctx, &manager, "Studio Nord")
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	if _, err := c.JoinCompany(ctx, &creator, co.InviteCode); err != nil {
		t.Fatalf("JoinCompany failed: %v", err)
	}
	assoc, _ := c.Resolve(ctx, &creator)

	if err := c.RemoveMember(ctx, &manager, assoc.Membership.ID, creator.ID); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}

	fresh, err := c.users.GetByID(ctx, creator.ID)
	if err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	after, err := c.Resolve(ctx, fresh)
	if err != nil {
		t.Fatalf("Resolve after removal failed: %v", err)
	}
	if after.Company != nil || after.Membership != nil {
		t.Errorf("expected no association after removal, got %+v", after)
	}
	if fresh.CompanyID != nil {
		t.Error("legacy company_id must be cleared on removal")
	}
}

func TestLeaveCompany_IdempotentForCreators(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	co, err := c.CreateCompany(ctx, &manager, "Studio Nord")
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	if _, err := c.JoinCompany(ctx, &creator, co.InviteCode); err != nil {
		t.Fatalf("JoinCompany failed: %v", err)
	}

	if err := c.LeaveCompany(ctx, &creator); err != nil {
		t.Fatalf("LeaveCompany failed: %v", err)
	}
	// Leaving again without a membership must also succeed.
	if err := c.LeaveCompany(ctx, &creator); err != nil {
		t.Fatalf("second LeaveCompany failed: %v", err)
	}

	fresh, _ := c.users.GetByID(ctx, creator.ID)
	assoc, err := c.Resolve(ctx, fresh)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if assoc.Company != nil {
		t.Errorf("expected no company after leave, got %+v", assoc.Company)
	}
}

func TestLeaveCompany_OwnerRejected(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	if _, err := c.CreateCompany(ctx, &manager, "Studio Nord"); err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	err := c.LeaveCompany(ctx, &manager)
	if KindOf(err) != KindCapability {
		t.Fatalf("expected capability error, got %v", err)
	}
}

func TestResolve_LegacyFieldFallback(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateManager(ctx, "Max", "max@test.com")
	co := fx.CreateCompany(ctx, "Altbestand GmbH", owner.ID, "LEGACY", models.TierFree)

	// A creator with only the legacy profile field, no membership
	// record, as older account data looked.
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	fx.SetLegacyCompanyRef(ctx, creator.ID, co.ID)

	fresh, err := c.users.GetByID(ctx, creator.ID)
	if err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	assoc, err := c.Resolve(ctx, fresh)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if assoc.Company == nil || assoc.Company.ID != co.ID {
		t.Fatalf("expected legacy company, got %+v", assoc.Company)
	}
	if assoc.IsOwner {
		t.Error("legacy member must not resolve as owner")
	}
	if assoc.Membership == nil || assoc.Membership.Status != models.MembershipApproved {
		t.Errorf("legacy fallback synthesizes an approved membership, got %+v", assoc.Membership)
	}
}

func TestResolve_MembershipRecordBeatsLegacyField(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateManager(ctx, "Max", "max@test.com")
	current := fx.CreateCompany(ctx, "Aktuell GmbH", owner.ID, "AAAAAA", models.TierFree)

	other := fx.CreateManager(ctx, "Moritz", "moritz@test.com")
	stale := fx.CreateCompany(ctx, "Veraltet GmbH", other.ID, "BBBBBB", models.TierFree)

	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	fx.CreateMembership(ctx, current.ID, creator.ID, models.MembershipApproved)
	fx.SetLegacyCompanyRef(ctx, creator.ID, stale.ID)

	fresh, _ := c.users.GetByID(ctx, creator.ID)
	assoc, err := c.Resolve(ctx, fresh)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if assoc.Company == nil || assoc.Company.ID != current.ID {
		t.Errorf("membership record must beat the stale legacy field, got %+v", assoc.Company)
	}
}

func TestResolve_DanglingLegacyRefIgnored(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	ghost := fx.CreateManager(ctx, "Ghost", "ghost@test.com")
	gone := fx.CreateCompany(ctx, "Wegzug GmbH", ghost.ID, "CCCCCC", models.TierFree)
	fx.SetLegacyCompanyRef(ctx, creator.ID, gone.ID)

	ctx2, cancel2 := testutil.TestContext()
	defer cancel2()
	if err := fx.DB().Collection("companies").Drop(ctx2); err != nil {
		t.Fatalf("drop companies failed: %v", err)
	}

	fresh, _ := c.users.GetByID(ctx, creator.ID)
	assoc, err := c.Resolve(ctx, fresh)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if assoc.Company != nil {
		t.Errorf("dangling legacy reference must resolve to none, got %+v", assoc.Company)
	}
}

func TestRoster_DropsDeletedAccounts(t *testing.T) {
	c, _, fx, _ := setupCoordinator(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateManager(ctx, "Max", "max@test.com")
	co := fx.CreateCompany(ctx, "Studio Nord", owner.ID, "DDDDDD", models.TierPro)

	alive := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	fx.CreateMembership(ctx, co.ID, alive.ID, models.MembershipApproved)

	deleted := fx.CreateCreator(ctx, "Weg", "weg@test.com")
	fx.CreateMembership(ctx, co.ID, deleted.ID, models.MembershipApproved)
	if _, err := fx.DB().Collection("users").DeleteOne(ctx, bson.M{"_id": deleted.ID}); err != nil {
		t.Fatalf("delete user failed: %v", err)
	}

	entries, err := c.Roster(ctx, co.ID)
	if err != nil {
		t.Fatalf("Roster failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one roster entry, got %d", len(entries))
	}
	if entries[0].Profile.ID != alive.ID {
		t.Errorf("unexpected roster entry: %+v", entries[0])
	}
}

// unreachableMailer simulates a down SMTP host.
type unreachableMailer struct{}

func (unreachableMailer) Send(notify.Email) error {
	return errors.New("smtp unreachable")
}

func TestJoinCompany_EmailFailureDoesNotFailJoin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}
	fx := testutil.NewFixtures(t, db)

	c := New(db, notify.New(db, unreachableMailer{}, zap.NewNop()), zap.NewNop())

	manager := fx.CreateManager(ctx, "Max", "max@test.com")
	co, err := c.CreateCompany(ctx, &manager, "Studio Nord")
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")

	if _, err := c.JoinCompany(ctx, &creator, co.InviteCode); err != nil {
		t.Fatalf("JoinCompany failed despite best-effort email contract: %v", err)
	}

	// The in-app notification must still be written.
	count, err := db.Collection("notifications").CountDocuments(ctx, bson.M{"recipient_id": manager.ID})
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 1 {
		t.Errorf("persisted notifications: got %d, want 1", count)
	}

	assoc, err := c.Resolve(ctx, &creator)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if assoc.Membership == nil || assoc.Membership.Status != models.MembershipPending {
		t.Errorf("expected pending membership, got %+v", assoc.Membership)
	}
}
