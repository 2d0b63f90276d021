package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns user router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/me", h.Me)
	r.Put("/me/driver-profile", h.SetupDriverProfile)
	r.Put("/me/device-token", h.UpdateDeviceToken)

	return r
}
