// internal/app/features/billing/handler.go
package billing

import (
	"context"
	"net/http"

	"github.com/dalemusser/creatorhub/internal/app/membership"
	companystore "github.com/dalemusser/creatorhub/internal/app/store/companies"
	userstore "github.com/dalemusser/creatorhub/internal/app/store/users"
	"github.com/dalemusser/creatorhub/internal/app/system/authz"
	"github.com/dalemusser/creatorhub/internal/app/system/timeouts"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Plan describes one subscription tier for the pricing page.
type Plan struct {
	Tier       string `json:"tier"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"` // per month
	Slots      int    `json:"slots"`
}

// plans is the fixed catalog. Slot counts must match what the
// membership coordinator enforces on join.
var plans = []Plan{
	{Tier: models.TierFree, Name: "Free", PriceCents: 0, Slots: models.SlotLimit(models.TierFree)},
	{Tier: models.TierPro, Name: "Pro", PriceCents: 1900, Slots: models.SlotLimit(models.TierPro)},
	{Tier: models.TierBusiness, Name: "Business", PriceCents: 4900, Slots: models.SlotLimit(models.TierBusiness)},
}

// Handler serves the plan catalog and tier changes.
type Handler struct {
	Coordinator *membership.Coordinator
	Users       *userstore.Store
	Companies   *companystore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, coordinator *membership.Coordinator, logger *zap.Logger) *Handler {
	return &Handler{
		Coordinator: coordinator,
		Users:       userstore.New(db),
		Companies:   companystore.New(db),
		Log:         logger,
	}
}

// ServePlans handles GET /api/billing/plans.
func (h *Handler) ServePlans(w http.ResponseWriter, r *http.Request) {
	webjson.Write(w, http.StatusOK, plans)
}

type selectRequest struct {
	Tier string `json:"tier"`
}

// HandleSelectTier handles POST /api/billing/tier: owner-only tier
// change. Downgrading below the current member count is allowed; the
// lower limit only blocks new joins.
func (h *Handler) HandleSelectTier(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validTier(req.Tier) {
		webjson.Error(w, http.StatusBadRequest, "unknown tier")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	assoc, err := h.Coordinator.Resolve(ctx, u)
	if err != nil {
		h.Log.Error("association resolve failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if assoc.Company == nil || !assoc.IsOwner {
		webjson.Error(w, http.StatusForbidden, "Nur der Inhaber kann den Tarif ändern.")
		return
	}

	if err := h.Companies.UpdateTier(ctx, assoc.Company.ID, req.Tier); err != nil {
		h.Log.Error("update tier failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.Log.Info("tier changed",
		zap.String("company_id", assoc.Company.ID.Hex()),
		zap.String("tier", req.Tier))
	webjson.Write(w, http.StatusOK, map[string]string{"tier": req.Tier})
}

func validTier(tier string) bool {
	for _, p := range plans {
		if p.Tier == tier {
			return true
		}
	}
	return false
}
