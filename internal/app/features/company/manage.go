// internal/app/features/company/manage.go
package company

import (
	"context"
	"net/http"

	"github.com/dalemusser/creatorhub/internal/app/system/timeouts"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type createRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /api/company: found a new company. The
// response includes the invite code the owner hands out.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, ok := h.actor(ctx, r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	co, err := h.Coordinator.CreateCompany(ctx, u, req.Name)
	if err != nil {
		h.writeCoordinatorError(w, "create company", err)
		return
	}
	webjson.Write(w, http.StatusCreated, co)
}

type joinRequest struct {
	Code string `json:"code"`
}

// HandleJoin handles POST /api/company/join. On success the caller is
// a pending member; the company name comes back for the confirmation
// message.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, ok := h.actor(ctx, r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	name, err := h.Coordinator.JoinCompany(ctx, u, req.Code)
	if err != nil {
		h.writeCoordinatorError(w, "join company", err)
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{
		"company_name": name,
		"status":       "pending",
	})
}

// HandleApprove handles POST /api/company/members/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	membershipID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid membership id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, ok := h.actor(ctx, r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Coordinator.ApproveMember(ctx, u, membershipID); err != nil {
		h.writeCoordinatorError(w, "approve member", err)
		return
	}
	// The roster reflects the change through the live subscription.
	webjson.Write(w, http.StatusOK, map[string]string{"status": "approved"})
}

type removeRequest struct {
	UserID string `json:"user_id"`
}

// HandleRemove handles POST /api/company/members/{id}/remove: deletes
// the membership and clears the member's legacy company reference.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	membershipID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid membership id")
		return
	}
	var req removeRequest
	if err := webjson.Decode(w, r, &req); err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		webjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, ok := h.actor(ctx, r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Coordinator.RemoveMember(ctx, u, membershipID, userID); err != nil {
		h.writeCoordinatorError(w, "remove member", err)
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": "removed"})
}

// HandleLeave handles POST /api/company/leave. Idempotent for members
// without a membership record; owners are rejected.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	u, ok := h.actor(ctx, r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Coordinator.LeaveCompany(ctx, u); err != nil {
		h.writeCoordinatorError(w, "leave company", err)
		return
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": "left"})
}
