// internal/app/features/complaints/routes.go
package complaints

import (
	"github.com/dalemusser/campusvoice/internal/app/system/auth"
	"github.com/dalemusser/campusvoice/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes serves /api/complaints. Every endpoint requires a signed-in user.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.With(auth.RequireRole(models.RoleFaculty)).Get("/all", h.ServeAll)
	r.Get("/user", h.ServeOwn)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.ServeOne)
		r.Post("/vote", h.HandleVote)
		r.With(auth.RequireRole(models.RoleFaculty)).Patch("/status", h.HandleStatus)
		r.Get("/comments", h.ServeComments)
		r.Post("/comments", h.HandleAddComment)
	})
	return r
}
