// internal/app/features/finance/handler.go
package finance

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/creatorhub/internal/app/membership"
	financestore "github.com/dalemusser/creatorhub/internal/app/store/finance"
	userstore "github.com/dalemusser/creatorhub/internal/app/store/users"
	"github.com/dalemusser/creatorhub/internal/app/system/authz"
	"github.com/dalemusser/creatorhub/internal/app/system/timeouts"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const listLimit = 200

// Handler serves the company ledger.
type Handler struct {
	Coordinator *membership.Coordinator
	Users       *userstore.Store
	Finance     *financestore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, coordinator *membership.Coordinator, logger *zap.Logger) *Handler {
	return &Handler{
		Coordinator: coordinator,
		Users:       userstore.New(db),
		Finance:     financestore.New(db),
		Log:         logger,
	}
}

func (h *Handler) scope(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.User, primitive.ObjectID, bool) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, primitive.NilObjectID, false
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, primitive.NilObjectID, false
	}
	assoc, err := h.Coordinator.Resolve(ctx, u)
	if err != nil {
		h.Log.Error("association resolve failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return nil, primitive.NilObjectID, false
	}
	if !assoc.Approved() {
		webjson.Error(w, http.StatusForbidden, "keine Firma")
		return nil, primitive.NilObjectID, false
	}
	return u, assoc.Company.ID, true
}

// ServeList handles GET /api/finance: the company ledger, newest
// first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	entries, err := h.Finance.ListByCompany(ctx, companyID, listLimit)
	if err != nil {
		h.Log.Error("list finance entries failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, entries)
}

// ServeSummary handles GET /api/finance/summary: per-month income and
// expense totals.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	summary, err := h.Finance.SummaryByMonth(ctx, companyID)
	if err != nil {
		h.Log.Error("finance summary failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, summary)
}

type entryRequest struct {
	Kind        string    `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Category    string    `json:"category"`
	Note        string    `json:"note"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// HandleCreate handles POST /api/finance.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Kind != models.FinanceIncome && req.Kind != models.FinanceExpense {
		webjson.Error(w, http.StatusBadRequest, "Ungültige Buchungsart.")
		return
	}
	if req.AmountCents <= 0 {
		webjson.Error(w, http.StatusBadRequest, "Betrag muss positiv sein.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	entry, err := h.Finance.Create(ctx, models.FinanceEntry{
		CompanyID:   companyID,
		CreatorID:   u.ID,
		Kind:        req.Kind,
		AmountCents: req.AmountCents,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		Category:    strings.TrimSpace(req.Category),
		Note:        req.Note,
		OccurredAt:  req.OccurredAt,
	})
	if err != nil {
		h.Log.Error("create finance entry failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusCreated, entry)
}

// HandleDelete handles DELETE /api/finance/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	if err := h.Finance.Delete(ctx, id, companyID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			webjson.Error(w, http.StatusNotFound, "entry not found")
			return
		}
		h.Log.Error("delete finance entry failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}
