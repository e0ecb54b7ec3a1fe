// internal/app/features/billing/routes.go
package billing

import (
	"github.com/dalemusser/creatorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the billing endpoints. The plan catalog is public; the
// tier change requires a signed-in owner.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/plans", h.ServePlans)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/tier", h.HandleSelectTier)
	})
	return r
}
