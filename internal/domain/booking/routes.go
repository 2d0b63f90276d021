package booking

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parkspot/parkspot-api/internal/middleware"
)

// Routes returns booking router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/availability", h.CheckAvailability)
	r.With(middleware.RequireDriver()).Post("/", h.Commit)
	r.With(middleware.RequireDriver()).Get("/mine", h.ListMine)
	r.With(middleware.RequireOwner()).Get("/spot/{spotID}", h.ListForSpot)
	r.Get("/{id}", h.Get)
	r.With(middleware.RequireOwner()).Delete("/{id}", h.Delete)

	return r
}
