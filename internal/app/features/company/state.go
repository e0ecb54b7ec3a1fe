// internal/app/features/company/state.go
package company

import (
	"context"
	"net/http"

	"github.com/dalemusser/creatorhub/internal/app/membership"
	"github.com/dalemusser/creatorhub/internal/app/system/authz"
	"github.com/dalemusser/creatorhub/internal/app/system/timeouts"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"go.uber.org/zap"
)

// ServeState handles GET /api/company: the caller's resolved
// association. Resolution failures degrade to an empty association
// instead of erroring; no user action initiated this read and the
// dashboard must still render.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, ok := h.actor(ctx, r)
	if !ok {
		webjson.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	assoc, err := h.Coordinator.Resolve(ctx, u)
	if err != nil {
		h.Log.Warn("association resolve failed, serving empty state",
			zap.String("user_id", u.ID.Hex()),
			zap.Error(err))
		assoc = &membership.Association{Capabilities: authz.CapabilitiesFor(u.Role)}
	}
	webjson.Write(w, http.StatusOK, assoc)
}
