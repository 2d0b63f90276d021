package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parkspot/parkspot-api/internal/middleware"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/response"
)

// Handler handles analytics HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates analytics handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Today handles GET /analytics/today
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Today(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("failed to build dashboard")
		response.InternalError(w)
		return
	}
	response.OK(w, d)
}

// Routes returns analytics router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(middleware.RequireOwner())

	r.Get("/today", h.Today)

	return r
}
