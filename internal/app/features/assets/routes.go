// internal/app/features/assets/routes.go
package assets

import (
	"github.com/dalemusser/creatorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the media library endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Post("/", h.HandleUpload)
		pr.Get("/{id}/download", h.ServeDownload)
		pr.Delete("/{id}", h.HandleDelete)
	})
	return r
}
