// internal/app/features/contracts/routes.go
package contracts

import (
	"github.com/dalemusser/creatorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the contract endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleCreate)
		pr.Get("/{id}", h.ServeContract)
		pr.Post("/{id}/sign", h.HandleSign)
	})
	return r
}
