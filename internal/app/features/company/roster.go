// internal/app/features/company/roster.go
package company

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/creatorhub/internal/app/system/timeouts"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// heartbeatInterval keeps intermediaries from timing out idle roster
// streams.
const heartbeatInterval = 25 * time.Second

// ServeRoster handles GET /api/company/roster: a one-shot snapshot of
// the caller's company roster.
func (h *Handler) ServeRoster(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	companyID, ok := h.resolveCompany(ctx, w, r)
	if !ok {
		return
	}

	entries, err := h.Coordinator.Roster(ctx, companyID)
	if err != nil {
		h.Log.Error("roster load failed",
			zap.String("company_id", companyID.Hex()),
			zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	webjson.Write(w, http.StatusOK, entries)
}

// ServeRosterStream handles GET /api/company/roster/stream: a
// server-sent event stream that pushes the full roster on every
// membership change. The subscription is torn down when the client
// disconnects.
func (h *Handler) ServeRosterStream(w http.ResponseWriter, r *http.Request) {
	resolveCtx, cancelResolve := context.WithTimeout(r.Context(), timeouts.Medium())
	companyID, ok := h.resolveCompany(resolveCtx, w, r)
	cancelResolve()
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		webjson.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// The subscription channel arrives seeded with the watcher's
	// current roster, so the client gets an event before the first
	// membership change.
	updates, cancel := h.Hub.Subscribe(companyID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case entries := <-updates:
			writeRosterEvent(w, entries)
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": heartbeat\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// resolveCompany finds the caller's company, writing the error
// response itself when there is none.
func (h *Handler) resolveCompany(ctx context.Context, w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	u, ok := h.actor(ctx, r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return primitive.NilObjectID, false
	}

	assoc, err := h.Coordinator.Resolve(ctx, u)
	if err != nil {
		h.Log.Error("association resolve failed",
			zap.String("user_id", u.ID.Hex()),
			zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
		return primitive.NilObjectID, false
	}
	if assoc.Company == nil {
		webjson.Error(w, http.StatusNotFound, "keine Firma")
		return primitive.NilObjectID, false
	}
	return assoc.Company.ID, true
}

func writeRosterEvent(w http.ResponseWriter, entries []models.RosterEntry) {
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	w.Write([]byte("event: roster\ndata: "))
	w.Write(payload)
	w.Write([]byte("\n\n"))
}
