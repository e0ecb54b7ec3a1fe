// internal/app/features/company/handler.go
package company

import (
	"context"
	"net/http"

	"github.com/dalemusser/creatorhub/internal/app/membership"
	userstore "github.com/dalemusser/creatorhub/internal/app/store/users"
	"github.com/dalemusser/creatorhub/internal/app/system/authz"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the membership API surface: company state, create,
// join, approve, remove, leave, and the live roster.
type Handler struct {
	Coordinator *membership.Coordinator
	Hub         *membership.Hub
	Users       *userstore.Store
	Log         *zap.Logger
}

// NewHandler constructs the company handler.
func NewHandler(db *mongo.Database, coordinator *membership.Coordinator, hub *membership.Hub, logger *zap.Logger) *Handler {
	return &Handler{
		Coordinator: coordinator,
		Hub:         hub,
		Users:       userstore.New(db),
		Log:         logger,
	}
}

// actor loads the full user document for the signed-in caller so the
// coordinator always receives explicit identity, never session scraps.
func (h *Handler) actor(ctx context.Context, r *http.Request) (*models.User, bool) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		return nil, false
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return nil, false
	}
	return u, true
}

// writeCoordinatorError maps a coordinator error to an HTTP status and
// surfaces its user-facing message verbatim.
func (h *Handler) writeCoordinatorError(w http.ResponseWriter, op string, err error) {
	switch membership.KindOf(err) {
	case membership.KindCapability:
		webjson.Error(w, http.StatusForbidden, err.Error())
	case membership.KindValidation:
		webjson.Error(w, http.StatusBadRequest, err.Error())
	case membership.KindConflict:
		webjson.Error(w, http.StatusConflict, err.Error())
	case membership.KindNotFound:
		webjson.Error(w, http.StatusNotFound, err.Error())
	default:
		h.Log.Error(op+" failed", zap.Error(err))
		webjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}
