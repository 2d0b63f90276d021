package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/domain/spot"
	"github.com/parkspot/parkspot-api/internal/middleware"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/response"
)

// Handler handles session HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates session handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Start handles POST /sessions/{bookingID}/start
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.service.Start)
}

// End handles POST /sessions/{bookingID}/end
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.service.End)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, guardID, bookingID uuid.UUID) (*Result, error)) {
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	res, err := op(r.Context(), middleware.GetUserID(r.Context()), bookingID)
	switch {
	case err == nil:
		response.OK(w, newResponse(res))
	case errors.Is(err, ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrInvalidTransition):
		response.ConflictCode(w, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, spot.ErrSlotBounds):
		response.ConflictCode(w, "SLOT_BOUNDS", "Slot counter out of range; booking status was updated")
	case errors.Is(err, spot.ErrSpotNotFound):
		response.NotFound(w, "Parking spot not found")
	default:
		logger.FromContext(r.Context()).Error().Err(err).Msg("session request failed")
		response.InternalError(w)
	}
}
