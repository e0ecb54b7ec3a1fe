// internal/app/features/calendar/routes.go
package calendar

import (
	"github.com/dalemusser/creatorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the team calendar endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})
	return r
}
