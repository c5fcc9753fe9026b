// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/campusvoice/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes serves /api/notifications.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeList)
	r.Patch("/read", h.HandleMarkAllRead)
	r.Get("/stream", h.ServeStream)
	return r
}
