package user

import (
	"errors"
	"net/http"

	"github.com/parkspot/parkspot-api/internal/middleware"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/response"
	"github.com/parkspot/parkspot-api/internal/pkg/validator"
)

// Handler handles user HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates user handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Me handles GET /users/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetProfile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, NewProfileResponse(u))
}

// SetupDriverProfile handles PUT /users/me/driver-profile
func (h *Handler) SetupDriverProfile(w http.ResponseWriter, r *http.Request) {
	var req DriverProfileRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	u, err := h.service.SetupDriverProfile(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	response.OK(w, NewProfileResponse(u))
}

// UpdateDeviceToken handles PUT /users/me/device-token
func (h *Handler) UpdateDeviceToken(w http.ResponseWriter, r *http.Request) {
	var req DeviceTokenRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.UpdateDeviceToken(r.Context(), middleware.GetUserID(r.Context()), req.Token); err != nil {
		h.handleError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrNotDriver):
		response.Forbidden(w, "Only drivers have a driver profile")
	default:
		logger.FromContext(r.Context()).Error().Err(err).Msg("user request failed")
		response.InternalError(w)
	}
}
