package spot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/middleware"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/response"
	"github.com/parkspot/parkspot-api/internal/pkg/validator"
)

// Handler handles spot HTTP requests
type Handler struct {
	service  *Service
	currency string
}

// NewHandler creates spot handler
func NewHandler(service *Service, currency string) *Handler {
	return &Handler{service: service, currency: currency}
}

// List handles GET /spots?lat=&lng=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	origin, ok := parseOrigin(r)
	if !ok {
		response.BadRequest(w, "lat and lng must be given together as numbers")
		return
	}

	spots, err := h.service.ListNearby(r.Context(), origin)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	items := make([]*SpotResponse, 0, len(spots))
	for _, n := range spots {
		resp := NewSpotResponse(n.Spot, h.currency)
		resp.DistanceKm = n.DistanceKm
		items = append(items, resp)
	}
	response.List(w, items, len(items))
}

// ListMine handles GET /spots/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	spots, err := h.service.ListByOwner(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	items := make([]*SpotResponse, 0, len(spots))
	for _, sp := range spots {
		items = append(items, NewSpotResponse(sp, h.currency))
	}
	response.List(w, items, len(items))
}

// Get handles GET /spots/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid spot ID")
		return
	}

	spot, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, NewSpotResponse(spot, h.currency))
}

// Create handles POST /spots
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSpotRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	spot, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.Created(w, NewSpotResponse(spot, h.currency))
}

// Update handles PATCH /spots/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid spot ID")
		return
	}

	var req UpdateSpotRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if req.VehicleTypes != nil && len(req.VehicleTypes) == 0 {
		response.ValidationError(w, map[string]string{"vehicle_types": "Select at least one vehicle type"})
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	spot, err := h.service.Update(r.Context(), middleware.GetUserID(r.Context()), id, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, NewSpotResponse(spot, h.currency))
}

// Delete handles DELETE /spots/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid spot ID")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	response.NoContent(w)
}

// UploadPhoto handles POST /spots/{id}/photo (multipart field "photo")
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid spot ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.service.maxPhotoBytes+(1<<20))
	file, _, err := r.FormFile("photo")
	if err != nil {
		response.BadRequest(w, "Multipart field 'photo' is required")
		return
	}
	defer file.Close()

	spot, err := h.service.UploadPhoto(r.Context(), middleware.GetUserID(r.Context()), id, file)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, NewSpotResponse(spot, h.currency))
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSpotNotFound):
		response.NotFound(w, "Parking spot not found")
	case errors.Is(err, ErrNotSpotOwner):
		response.Forbidden(w, "Only the owner can modify this spot")
	case errors.Is(err, ErrInvalidOperatingHours):
		response.ValidationError(w, map[string]string{"operating_hours_end_ms": "End time must be after start time"})
	case errors.Is(err, ErrLocationRequired):
		response.ValidationError(w, map[string]string{"location": "Please select a location on the map"})
	case errors.Is(err, ErrNothingToUpdate):
		response.BadRequest(w, "No fields to update")
	case errors.Is(err, ErrPhotoTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Photo exceeds the size limit")
	case errors.Is(err, ErrPhotoInvalid):
		response.ValidationError(w, map[string]string{"photo": "Photo must be a JPEG, PNG or GIF image"})
	default:
		logger.FromContext(r.Context()).Error().Err(err).Msg("spot request failed")
		response.InternalError(w)
	}
}

// parseOrigin reads optional ?lat=&lng=. Both or neither must be present.
func parseOrigin(r *http.Request) (*Point, bool) {
	latStr, lngStr := r.URL.Query().Get("lat"), r.URL.Query().Get("lng")
	if latStr == "" && lngStr == "" {
		return nil, true
	}
	lat, err1 := strconv.ParseFloat(latStr, 64)
	lng, err2 := strconv.ParseFloat(lngStr, 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, false
	}
	return &Point{Lat: lat, Lng: lng}, true
}
