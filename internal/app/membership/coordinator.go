// internal/app/membership/coordinator.go
//
// Package membership resolves a user's relationship to a company
// (owner, pending member, approved member, none) and owns the
// state-changing operations around it. Identity is always passed in
// explicitly; nothing here reads ambient session state.
package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"

	companystore "github.com/dalemusser/creatorhub/internal/app/store/companies"
	membershipstore "github.com/dalemusser/creatorhub/internal/app/store/memberships"
	userstore "github.com/dalemusser/creatorhub/internal/app/store/users"
	"github.com/dalemusser/creatorhub/internal/app/system/authz"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Notifier dispatches a notification best-effort. Implementations must
// never fail the calling operation: errors are logged inside, not
// returned. See internal/app/notify.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification)
	// NotifyEmail additionally mirrors the notification to the given
	// email address when delivery is configured.
	NotifyEmail(ctx context.Context, n models.Notification, email string)
}

// Coordinator is the membership & team-state core.
type Coordinator struct {
	companies   *companystore.Store
	memberships *membershipstore.Store
	users       *userstore.Store
	notifier    Notifier
	log         *zap.Logger
}

// New constructs a Coordinator over the shared database handle.
func New(db *mongo.Database, notifier Notifier, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		companies:   companystore.New(db),
		memberships: membershipstore.New(db),
		users:       userstore.New(db),
		notifier:    notifier,
		log:         logger,
	}
}

// Association is a user's resolved relationship to a company. For
// owners, Membership is synthesized (approved/owner) and never stored.
type Association struct {
	Company      *models.Company    `json:"company,omitempty"`
	Membership   *models.Membership `json:"membership,omitempty"`
	IsOwner      bool               `json:"is_owner"`
	Capabilities authz.Capabilities `json:"capabilities"`
}

// Approved reports whether the association grants access to company
// resources. Pending members see the company name but nothing inside.
func (a *Association) Approved() bool {
	if a.Company == nil {
		return false
	}
	if a.IsOwner {
		return true
	}
	return a.Membership != nil && a.Membership.Status == models.MembershipApproved
}

// Resolve derives the user's association. The fallback order is
// load-bearing: owned company first, then the canonical membership
// record, then the legacy company_id profile field. Reversing it would
// let stale legacy data override fresher membership records.
func (c *Coordinator) Resolve(ctx context.Context, user *models.User) (*Association, error) {
	assoc := &Association{Capabilities: authz.CapabilitiesFor(user.Role)}

	// 1) Owners: look for a company owned by the caller.
	if assoc.Capabilities.CanOwnCompany {
		co, err := c.companies.GetByOwner(ctx, user.ID)
		switch {
		case err == nil:
			assoc.Company = co
			assoc.IsOwner = true
			assoc.Membership = synthesizeOwner(co.ID, user.ID)
			return assoc, nil
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("resolve owned company: %w", err)
		}
	}

	// 2) Canonical membership record, adopted verbatim.
	m, err := c.memberships.GetByUser(ctx, user.ID)
	switch {
	case err == nil:
		assoc.Membership = m
		co, err := c.companies.GetByID(ctx, m.CompanyID)
		if err == nil {
			assoc.Company = co
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("resolve member company: %w", err)
		}
		return assoc, nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, fmt.Errorf("resolve membership: %w", err)
	}

	// 3) Legacy single-field reference on the profile.
	if user.CompanyID != nil {
		co, err := c.companies.GetByID(ctx, *user.CompanyID)
		switch {
		case err == nil:
			assoc.Company = co
			assoc.IsOwner = co.OwnerID == user.ID
			role := user.Role
			if assoc.IsOwner {
				role = models.RoleOwner
			}
			assoc.Membership = &models.Membership{
				CompanyID: co.ID,
				UserID:    user.ID,
				Status:    models.MembershipApproved,
				Role:      role,
			}
			return assoc, nil
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, fmt.Errorf("resolve legacy company: %w", err)
		}
		// Dangling legacy reference: treat as no association.
	}

	// 4) No association.
	return assoc, nil
}

// CreateCompany creates a company owned by the actor, tier free, with
// a fresh invite code, and writes the legacy company_id on the actor's
// profile. Returns the created company including its invite code.
func (c *Coordinator) CreateCompany(ctx context.Context, actor *models.User, name string) (*models.Company, error) {
	if !authz.CapabilitiesFor(actor.Role).CanOwnCompany {
		return nil, capabilityErr(msgOnlyManagers)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationErr(msgEmptyName)
	}

	// Fast-path pre-check; the unique index on owner_id is what
	// actually prevents the double-submit race.
	_, err := c.companies.GetByOwner(ctx, actor.ID)
	if err == nil {
		return nil, conflictErr(msgAlreadyOwner)
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("check existing company: %w", err)
	}

	co, err := c.companies.Create(ctx, models.Company{
		Name:       name,
		OwnerID:    actor.ID,
		OwnerEmail: actor.Email,
		InviteCode: NewInviteCode(),
		Tier:       models.TierFree,
	})
	if err != nil {
		if errors.Is(err, companystore.ErrDuplicateOwner) {
			return nil, conflictErr(msgAlreadyOwner)
		}
		return nil, fmt.Errorf("create company: %w", err)
	}

	if err := c.users.SetCompanyRef(ctx, actor.ID, co.ID); err != nil {
		return nil, fmt.Errorf("set legacy company ref: %w", err)
	}
	return &co, nil
}

// JoinCompany joins the actor to the company matching the invite code,
// in pending state. Returns the company's display name for the
// caller's confirmation message. Slot limits compare against the total
// membership count (any status) at join time only.
func (c *Coordinator) JoinCompany(ctx context.Context, actor *models.User, code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", notFoundErr(msgInvalidCode)
	}

	co, err := c.companies.GetByInviteCode(ctx, code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", notFoundErr(msgInvalidCode)
		}
		return "", fmt.Errorf("lookup invite code: %w", err)
	}

	count, err := c.memberships.CountByCompany(ctx, co.ID)
	if err != nil {
		return "", fmt.Errorf("count members: %w", err)
	}
	limit := models.SlotLimit(co.Tier)
	if count >= int64(limit) {
		return "", conflictErr(fmt.Sprintf("Team ist voll (%d/%d)", count, limit))
	}

	exists, err := c.memberships.Exists(ctx, co.ID, actor.ID)
	if err != nil {
		return "", fmt.Errorf("check membership: %w", err)
	}
	if exists {
		return "", conflictErr(msgAlreadyMember)
	}

	if _, err := c.memberships.Create(ctx, models.Membership{
		CompanyID: co.ID,
		UserID:    actor.ID,
		Status:    models.MembershipPending,
		Role:      actor.Role,
	}); err != nil {
		if errors.Is(err, membershipstore.ErrDuplicateMembership) {
			return "", conflictErr(msgAlreadyMember)
		}
		return "", fmt.Errorf("create membership: %w", err)
	}

	if err := c.users.SetCompanyRef(ctx, actor.ID, co.ID); err != nil {
		return "", fmt.Errorf("set legacy company ref: %w", err)
	}

	c.notifier.NotifyEmail(ctx, models.Notification{
		RecipientID: co.OwnerID,
		SenderID:    &actor.ID,
		Kind:        models.NotifyJoinRequest,
		Title:       "Neue Beitrittsanfrage",
		Message:     fmt.Sprintf("%s möchte %s beitreten.", actor.FullName, co.Name),
		Link:        "/team",
	}, co.OwnerEmail)

	return co.Name, nil
}

// ApproveMember transitions a pending membership to approved. Only the
// owner of the membership's company may approve.
func (c *Coordinator) ApproveMember(ctx context.Context, actor *models.User, membershipID primitive.ObjectID) error {
	m, err := c.memberships.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notFoundErr("Mitgliedschaft nicht gefunden.")
		}
		return fmt.Errorf("load membership: %w", err)
	}
	co, err := c.requireOwner(ctx, actor, m.CompanyID)
	if err != nil {
		return err
	}

	if err := c.memberships.SetStatus(ctx, membershipID, models.MembershipApproved); err != nil {
		return fmt.Errorf("approve membership: %w", err)
	}

	// Email address is best-effort; a failed lookup must not undo the
	// approval.
	var memberEmail string
	if member, err := c.users.GetByID(ctx, m.UserID); err == nil {
		memberEmail = member.Email
	} else {
		c.log.Warn("member lookup for approval email failed",
			zap.String("user_id", m.UserID.Hex()), zap.Error(err))
	}
	c.notifier.NotifyEmail(ctx, models.Notification{
		RecipientID: m.UserID,
		SenderID:    &actor.ID,
		Kind:        models.NotifyMemberApproved,
		Title:       "Beitritt bestätigt",
		Message:     fmt.Sprintf("Du bist jetzt Mitglied von %s.", co.Name),
		Link:        "/dashboard",
	}, memberEmail)
	return nil
}

// RemoveMember deletes a membership and clears the member's legacy
// company_id field. Owner-privileged. The two writes are not
// transactional; a crash in between leaves the cleared-field side
// pending, which is self-consistent because the canonical membership
// is already gone.
func (c *Coordinator) RemoveMember(ctx context.Context, actor *models.User, membershipID, userID primitive.ObjectID) error {
	m, err := c.memberships.GetByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return notFoundErr("Mitgliedschaft nicht gefunden.")
		}
		return fmt.Errorf("load membership: %w", err)
	}
	if _, err := c.requireOwner(ctx, actor, m.CompanyID); err != nil {
		return err
	}

	if err := c.memberships.Delete(ctx, membershipID); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if err := c.users.ClearCompanyRef(ctx, userID); err != nil {
		return fmt.Errorf("clear legacy company ref: %w", err)
	}
	return nil
}

// LeaveCompany deletes the actor's membership if one exists and always
// clears the legacy company_id field, so it is idempotent. Owners are
// rejected: leaving would orphan the company with no transfer path.
func (c *Coordinator) LeaveCompany(ctx context.Context, actor *models.User) error {
	if authz.CapabilitiesFor(actor.Role).CanOwnCompany {
		if _, err := c.companies.GetByOwner(ctx, actor.ID); err == nil {
			return capabilityErr(msgOwnerNoLeave)
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("check owned company: %w", err)
		}
	}

	if _, err := c.memberships.DeleteByUser(ctx, actor.ID); err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if err := c.users.ClearCompanyRef(ctx, actor.ID); err != nil {
		return fmt.Errorf("clear legacy company ref: %w", err)
	}
	return nil
}

// Roster resolves the current member list for a company: each
// membership joined with the referenced profile. Memberships whose
// user cannot be found are dropped silently; a deleted account must
// not break team views.
func (c *Coordinator) Roster(ctx context.Context, companyID primitive.ObjectID) ([]models.RosterEntry, error) {
	memberships, err := c.memberships.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if len(memberships) == 0 {
		return []models.RosterEntry{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.UserID)
	}
	users, err := c.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve profiles: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	entries := make([]models.RosterEntry, 0, len(memberships))
	for _, m := range memberships {
		u, ok := byID[m.UserID]
		if !ok {
			continue
		}
		entries = append(entries, models.RosterEntry{Membership: m, Profile: u})
	}
	return entries, nil
}

func (c *Coordinator) requireOwner(ctx context.Context, actor *models.User, companyID primitive.ObjectID) (*models.Company, error) {
	co, err := c.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFoundErr("Firma nicht gefunden.")
		}
		return nil, fmt.Errorf("load company: %w", err)
	}
	if co.OwnerID != actor.ID {
		return nil, capabilityErr(msgNotOwner)
	}
	return co, nil
}

func synthesizeOwner(companyID, userID primitive.ObjectID) *models.Membership {
	return &models.Membership{
		CompanyID: companyID,
		UserID:    userID,
		Status:    models.MembershipApproved,
		Role:      models.RoleOwner,
	}
}
