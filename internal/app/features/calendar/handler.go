// internal/app/features/calendar/handler.go
package calendar

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/creatorhub/internal/app/membership"
	eventstore "github.com/dalemusser/creatorhub/internal/app/store/events"
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

// Handler serves the shared team calendar.
type Handler struct {
	Coordinator *membership.Coordinator
	Users       *userstore.Store
	Events      *eventstore.Store
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, coordinator *membership.Coordinator, logger *zap.Logger) *Handler {
	return &Handler{
		Coordinator: coordinator,
		Users:       userstore.New(db),
		Events:      eventstore.New(db),
		Log:         logger,
	}
}

// scope resolves the caller to an approved company member and returns
// the caller plus their company id. It writes the error response
// itself when access is denied.
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

// ServeList handles GET /api/calendar?from=&to= (RFC 3339). The
// default window is the current month.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	from, to, err := parseWindow(r)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.Events.ListByCompany(ctx, companyID, from, to)
	if err != nil {
		h.Log.Error("list events failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, events)
}

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	AllDay      bool      `json:"all_day"`
}

// HandleCreate handles POST /api/calendar.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		webjson.Error(w, http.StatusBadRequest, "Titel darf nicht leer sein.")
		return
	}
	if req.StartsAt.IsZero() || req.EndsAt.Before(req.StartsAt) {
		webjson.Error(w, http.StatusBadRequest, "Ungültiger Zeitraum.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	ev, err := h.Events.Create(ctx, models.Event{
		CompanyID:   companyID,
		CreatorID:   u.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		AllDay:      req.AllDay,
	})
	if err != nil {
		h.Log.Error("create event failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusCreated, ev)
}

// HandleUpdate handles PUT /api/calendar/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid event id")
		return
	}
	var req eventRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	err = h.Events.Update(ctx, id, companyID, models.Event{
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		AllDay:      req.AllDay,
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			webjson.Error(w, http.StatusNotFound, "event not found")
			return
		}
		h.Log.Error("update event failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": "updated"})
}

// HandleDelete handles DELETE /api/calendar/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid event id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	if err := h.Events.Delete(ctx, id, companyID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			webjson.Error(w, http.StatusNotFound, "event not found")
			return
		}
		h.Log.Error("delete event failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from parameter")
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to parameter")
		}
		to = t
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, errors.New("to precedes from")
	}
	return from, to, nil
}
