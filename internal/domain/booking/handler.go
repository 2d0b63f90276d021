package booking

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/middleware"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/response"
	"github.com/parkspot/parkspot-api/internal/pkg/validator"
)

// Handler handles booking HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates booking handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func decodeWindow(w http.ResponseWriter, r *http.Request) (*WindowRequest, bool) {
	var req WindowRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return nil, false
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return nil, false
	}
	return &req, true
}

// CheckAvailability handles POST /bookings/availability
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWindow(w, r)
	if !ok {
		return
	}

	a, err := h.service.CheckAvailability(r.Context(), req.SpotID, Window{Start: req.StartTime, End: req.EndTime})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	response.OK(w, &AvailabilityResponse{
		SpotID:       req.SpotID,
		TotalSlots:   a.Spot.TotalSlots,
		Overlapping:  a.Overlapping,
		AvailableNow: a.AvailableNow,
		Blocked:      a.Blocked,
		Hours:        a.Hours,
		TotalPrice:   a.Price,
	})
}

// Commit handles POST /bookings
func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWindow(w, r)
	if !ok {
		return
	}

	b, err := h.service.Commit(r.Context(), middleware.GetUserID(r.Context()), req.SpotID, Window{Start: req.StartTime, End: req.EndTime})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.Created(w, NewBookingResponse(b))
}

// ListMine handles GET /bookings/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListByDriver(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.List(w, NewBookingList(list), len(list))
}

// ListForSpot handles GET /bookings/spot/{spotID}
func (h *Handler) ListForSpot(w http.ResponseWriter, r *http.Request) {
	spotID, err := uuid.Parse(chi.URLParam(r, "spotID"))
	if err != nil {
		response.BadRequest(w, "Invalid spot ID")
		return
	}

	list, err := h.service.ListBySpot(r.Context(), middleware.GetUserID(r.Context()), spotID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.List(w, NewBookingList(list), len(list))
}

// Get handles GET /bookings/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	ctx := r.Context()
	b, err := h.service.GetByID(ctx, middleware.GetUserID(ctx), middleware.GetRole(ctx), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, NewBookingResponse(b))
}

// Delete handles DELETE /bookings/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid booking ID")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidWindow):
		response.ValidationError(w, map[string]string{"end_time": "End time must be after start time"})
	case errors.Is(err, ErrSpotNotFound):
		response.NotFound(w, "Parking spot not found")
	case errors.Is(err, ErrBookingNotFound):
		response.NotFound(w, "Booking not found")
	case errors.Is(err, ErrNoSlotsAvailable):
		response.ConflictCode(w, "NO_SLOTS_AVAILABLE", "No slots available for the selected time")
	case errors.Is(err, ErrNotAllowed), errors.Is(err, ErrNotSpotOwner):
		response.Forbidden(w, err.Error())
	default:
		logger.FromContext(r.Context()).Error().Err(err).Msg("booking request failed")
		response.InternalError(w)
	}
}
