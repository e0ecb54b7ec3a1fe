// internal/app/features/company/routes.go
package company

import (
	"github.com/dalemusser/creatorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the membership API.
// Typically: r.Mount("/api/company", company.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		pr.Get("/", h.ServeState)
		pr.Post("/", h.HandleCreate)
		pr.Post("/join", h.HandleJoin)
		pr.Post("/leave", h.HandleLeave)

		pr.Get("/roster", h.ServeRoster)
		pr.Get("/roster/stream", h.ServeRosterStream)

		pr.Post("/members/{id}/approve", h.HandleApprove)
		pr.Post("/members/{id}/remove", h.HandleRemove)
	})

	return r
}
