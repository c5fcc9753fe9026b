// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/campusvoice/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Handler renders JSON bodies for requests the router cannot match.
type Handler struct {
	Log *zap.Logger
}

// NewHandler constructs an errors Handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// NotFound answers unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Log.Debug("route not found", zap.String("method", r.Method), zap.String("path", r.URL.Path))
	apperr.Write(w, r, h.Log, apperr.NotFound("Not found"))
}

// MethodNotAllowed answers known paths hit with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apperr.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Method not allowed"})
}
