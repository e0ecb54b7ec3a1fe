// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes mounts registration, password login, and the Google flow.
// Typically: r.Mount("/api/auth", login.Routes(handler))
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Get("/google", h.ServeGoogleLogin)
	r.Get("/google/callback", h.ServeGoogleCallback)
	return r
}
