// internal/app/features/authapi/routes.go
package authapi

import (
	"github.com/dalemusser/campusvoice/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves /api/auth.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	r.With(auth.RequireSignedIn).Get("/user", h.ServeUser)
	return r
}
