// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/creatorhub/internal/app/system/auth"
	"github.com/dalemusser/creatorhub/internal/app/system/webjson"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// HandleLogout clears the session cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := auth.SignOut(w, r); err != nil {
		h.Log.Warn("logout failed", zap.Error(err))
	}
	webjson.Write(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
