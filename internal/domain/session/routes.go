package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parkspot/parkspot-api/internal/middleware"
)

// Routes returns session router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireGuard())

	r.Post("/{bookingID}/start", h.Start)
	r.Post("/{bookingID}/end", h.End)

	return r
}
