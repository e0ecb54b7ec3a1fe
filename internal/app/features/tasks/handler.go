// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/creatorhub/internal/app/membership"
	taskstore "github.com/dalemusser/creatorhub/internal/app/store/tasks"
	userstore "github.com/dalemusser/creatorhub/internal/app/store/users"
	"github.com/dalemusser/creatorhub/internal/app/system/authz"
	"github.com/dalemusser/creatorhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/creatorhub/internal/app/system/timeouts"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the content production pipeline.
type Handler struct {
	Coordinator *membership.Coordinator
	Users       *userstore.Store
	Tasks       *taskstore.Store
	Notifier    membership.Notifier
	Log         *zap.Logger
}

func NewHandler(db *mongo.Database, coordinator *membership.Coordinator, notifier membership.Notifier, logger *zap.Logger) *Handler {
	return &Handler{
		Coordinator: coordinator,
		Users:       userstore.New(db),
		Tasks:       taskstore.New(db),
		Notifier:    notifier,
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

// ServeList handles GET /api/tasks?stage=. Without a stage filter the
// whole board comes back.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	stage := r.URL.Query().Get("stage")
	if stage != "" && !models.ValidStage(stage) {
		webjson.Error(w, http.StatusBadRequest, "unknown stage")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	list, err := h.Tasks.ListByCompany(ctx, companyID, stage)
	if err != nil {
		h.Log.Error("list tasks failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, list)
}

type createRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Stage       string     `json:"stage"`
	DueAt       *time.Time `json:"due_at"`
}

// HandleCreate handles POST /api/tasks. New tasks default to the idea
// stage; descriptions are sanitized before storage.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		webjson.Error(w, http.StatusBadRequest, "Titel darf nicht leer sein.")
		return
	}
	if req.Stage == "" {
		req.Stage = models.StageIdea
	}
	if !models.ValidStage(req.Stage) {
		webjson.Error(w, http.StatusBadRequest, "unknown stage")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	t, err := h.Tasks.Create(ctx, models.Task{
		CompanyID:   companyID,
		CreatorID:   u.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: htmlsanitize.Sanitize(req.Description),
		Stage:       req.Stage,
		DueAt:       req.DueAt,
	})
	if err != nil {
		h.Log.Error("create task failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusCreated, t)
}

type stageRequest struct {
	Stage string `json:"stage"`
}

// HandleSetStage handles POST /api/tasks/{id}/stage.
func (h *Handler) HandleSetStage(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var req stageRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.ValidStage(req.Stage) {
		webjson.Error(w, http.StatusBadRequest, "unknown stage")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	if err := h.Tasks.SetStage(ctx, id, companyID, req.Stage); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			webjson.Error(w, http.StatusNotFound, "task not found")
			return
		}
		h.Log.Error("set stage failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": "updated"})
}

type assignRequest struct {
	AssigneeID string `json:"assignee_id"` // empty string unassigns
}

// HandleAssign handles POST /api/tasks/{id}/assign. Assignment sends a
// best-effort notification to the assignee; a failed dispatch never
// fails the assignment.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var req assignRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var assigneeID *primitive.ObjectID
	if req.AssigneeID != "" {
		aid, err := primitive.ObjectIDFromHex(req.AssigneeID)
		if err != nil {
			webjson.Error(w, http.StatusBadRequest, "invalid assignee id")
			return
		}
		assigneeID = &aid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	if err := h.Tasks.Assign(ctx, id, companyID, assigneeID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			webjson.Error(w, http.StatusNotFound, "task not found")
			return
		}
		h.Log.Error("assign task failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if assigneeID != nil && *assigneeID != u.ID {
		t, err := h.Tasks.GetByID(ctx, id, companyID)
		title := ""
		if err == nil {
			title = t.Title
		}
		h.Notifier.Notify(ctx, models.Notification{
			RecipientID: *assigneeID,
			SenderID:    &u.ID,
			Kind:        models.NotifyTaskAssigned,
			Title:       "Neue Aufgabe",
			Message:     u.FullName + " hat dir eine Aufgabe zugewiesen: " + title,
			Link:        "/tasks",
		})
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": "assigned"})
}

// HandleDelete handles DELETE /api/tasks/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid task id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, companyID, ok := h.scope(ctx, w, r)
	if !ok {
		return
	}

	if err := h.Tasks.Delete(ctx, id, companyID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			webjson.Error(w, http.StatusNotFound, "task not found")
			return
		}
		h.Log.Error("delete task failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": "deleted"})
}
