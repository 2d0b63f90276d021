package spot

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parkspot/parkspot-api/internal/middleware"
)

// Routes returns spot router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/", h.List)
	r.With(middleware.RequireOwner()).Get("/mine", h.ListMine)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOwner())
		r.Post("/", h.Create)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/photo", h.UploadPhoto)
	})

	return r
}
