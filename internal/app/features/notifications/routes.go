// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/creatorhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the notification inbox endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Get("/unread_count", h.ServeUnreadCount)
		pr.Post("/{id}/read", h.HandleMarkRead)
	})
	return r
}
