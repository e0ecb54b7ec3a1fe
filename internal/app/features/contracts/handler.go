// internal/app/features/contracts/handler.go
package contracts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/creatorhub/internal/app/membership"
	contractstore "github.com/dalemusser/creatorhub/internal/app/store/contracts"
	userstore "github.com/dalemusser/creatorhub/internal/app/store/users"
	"github.com/dalemusser/creatorhub/internal/app/system/authz"
	"github.com/dalemusser/creatorhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/creatorhub/internal/app/system/limits"
	"github.com/dalemusser/creatorhub/internal/app/system/timeouts"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves NDA contracts. Owners issue them per member; members
// sign their own.
type Handler struct {
	Coordinator *membership.Coordinator
	Users       *userstore.Store
	Contracts   *contractstore.Store
	Notifier    membership.Notifier
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, coordinator *membership.Coordinator, notifier membership.Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		Coordinator: coordinator,
		Users:       userstore.New(db),
		Contracts:   contractstore.New(db),
		Notifier:    notifier,
		Log:         logger,
	}
}

// scope resolves the caller to an approved company member.
func (h *Handler) scope(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.User, *membership.Association, bool) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, nil, false
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, nil, false
	}
	assoc, err := h.Coordinator.Resolve(ctx, u)
	if err != nil {
		h.Log.Error("association resolve failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return nil, nil, false
	}
	if !assoc.Approved() {
		webjson.Error(w, http.StatusForbidden, "keine Firma")
		return nil, nil, false
	}
	return u, assoc, true
}

// ServeList handles GET /api/contracts. Owners see every contract in
// the company; members see only their own.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, assoc, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	var (
		list []models.Contract
		err  error
	)
	if assoc.IsOwner {
		list, err = h.Contracts.ListByCompany(ctx, assoc.Company.ID)
	} else {
		list, err = h.Contracts.ListByUser(ctx, u.ID)
	}
	if err != nil {
		h.Log.Error("list contracts failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, list)
}

type createRequest struct {
	UserID string `json:"user_id"`
	Body   string `json:"body"`
}

// HandleCreate handles POST /api/contracts: owner issues an NDA to one
// member. The body is sanitized HTML; the member gets a best-effort
// notification.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	body := htmlsanitize.Sanitize(req.Body)
	if strings.TrimSpace(body) == "" {
		webjson.Error(w, http.StatusBadRequest, "Vertragstext darf nicht leer sein.")
		return
	}
	if len(body) > limits.MaxContractBodySize {
		webjson.Error(w, http.StatusBadRequest, "Vertragstext ist zu lang.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, assoc, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}
	if !assoc.IsOwner {
		webjson.Error(w, http.StatusForbidden, "Nur der Inhaber kann Verträge erstellen.")
		return
	}

	c, err := h.Contracts.Create(ctx, models.Contract{
		CompanyID: assoc.Company.ID,
		UserID:    userID,
		Body:      body,
	})
	if err != nil {
		h.Log.Error("create contract failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Notifier.Notify(ctx, models.Notification{
		RecipientID: userID,
		SenderID:    &u.ID,
		Kind:        models.NotifyContractReady,
		Title:       "Vertrag zur Unterschrift",
		Message:     "Ein Vertrag von " + assoc.Company.Name + " wartet auf deine Unterschrift.",
		Link:        "/contracts",
	})
	webjson.Write(w, http.StatusCreated, c)
}

// ServeContract handles GET /api/contracts/{id}. Owners may read any
// contract in their company; members only their own.
func (h *Handler) ServeContract(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid contract id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, assoc, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	c, err := h.Contracts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			webjson.Error(w, http.StatusNotFound, "contract not found")
			return
		}
		h.Log.Error("load contract failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	ownerRead := assoc.IsOwner && c.CompanyID == assoc.Company.ID
	if !ownerRead && c.UserID != u.ID {
		webjson.Error(w, http.StatusNotFound, "contract not found")
		return
	}
	webjson.Write(w, http.StatusOK, c)
}

type signRequest struct {
	SignatureName string `json:"signature_name"`
}

// HandleSign handles POST /api/contracts/{id}/sign. Only the contract
// subject can sign, exactly once.
func (h *Handler) HandleSign(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	var req signRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.SignatureName) == "" {
		webjson.Error(w, http.StatusBadRequest, "Unterschrift darf nicht leer sein.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, _, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	if err := h.Contracts.Sign(ctx, id, u.ID, req.SignatureName); err != nil {
		switch {
		case errors.Is(err, contractstore.ErrAlreadySigned):
			webjson.Error(w, http.StatusConflict, "Vertrag ist bereits unterschrieben.")
		case errors.Is(err, mongo.ErrNoDocuments):
			webjson.Error(w, http.StatusNotFound, "contract not found")
		default:
			h.Log.Error("sign contract failed", zap.Error(err))
			webjson.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": "signed"})
}
