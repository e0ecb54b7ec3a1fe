// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/dalemusser/creatorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the pipeline board endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Post("/{id}/stage", h.HandleSetStage)
		pr.Post("/{id}/assign", h.HandleAssign)
		pr.Delete("/{id}", h.HandleDelete)
	})
	return r
}
