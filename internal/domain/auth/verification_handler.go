package auth

import (
	"errors"
	"net/http"

	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/response"
	"github.com/parkspot/parkspot-api/internal/pkg/validator"
)

const resetRequestedMessage = "If your email is registered, you will receive a reset link"

// VerifyEmail handles POST /auth/verify
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	profile, err := h.service.VerifyEmail(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidVerificationCode):
			response.Error(w, http.StatusBadRequest, "INVALID_VERIFICATION_CODE", "Invalid or expired verification code")
		case errors.Is(err, ErrEmailAlreadyVerified):
			response.ConflictCode(w, "EMAIL_ALREADY_VERIFIED", "Email already verified")
		default:
			logger.FromContext(r.Context()).Error().Err(err).Msg("email verification failed")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, profile)
}

// ResendVerification handles POST /auth/resend-verification
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.ResendVerification(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Unauthorized(w, "Invalid email or password")
		case errors.Is(err, ErrEmailAlreadyVerified):
			response.ConflictCode(w, "EMAIL_ALREADY_VERIFIED", "Email already verified")
		default:
			logger.FromContext(r.Context()).Error().Err(err).Msg("resend verification failed")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, map[string]string{"status": "sent"})
}

// ForgotPassword handles POST /auth/forgot-password.
// The answer never reveals whether the email is registered.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("forgot password failed")
	}

	response.OK(w, map[string]string{"message": resetRequestedMessage})
}

// ResetPassword handles POST /auth/reset-password
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			response.Error(w, http.StatusBadRequest, "INVALID_RESET_TOKEN", "Invalid or expired reset token")
			return
		}
		logger.FromContext(r.Context()).Error().Err(err).Msg("password reset failed")
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]string{"status": "password_reset"})
}
