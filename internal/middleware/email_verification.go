package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/response"
)

// ErrAccountNotFound is returned by a checker when the token's user no longer exists.
var ErrAccountNotFound = errors.New("account not found")

// EmailVerificationChecker reports whether an account has confirmed its email.
type EmailVerificationChecker interface {
	IsEmailVerified(ctx context.Context, userID uuid.UUID) (bool, error)
}

// RequireVerifiedEmail blocks authenticated users whose email is not verified.
// It must run after Auth.
func RequireVerifiedEmail(users EmailVerificationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := GetUserID(r.Context())
			if userID == uuid.Nil {
				response.Unauthorized(w, "Authentication required")
				return
			}

			verified, err := users.IsEmailVerified(r.Context(), userID)
			if err != nil {
				if errors.Is(err, ErrAccountNotFound) {
					response.Unauthorized(w, "Authentication required")
					return
				}
				logger.FromContext(r.Context()).Error().Err(err).Msg("Failed to check email verification")
				response.InternalError(w)
				return
			}

			if !verified {
				response.Error(w, http.StatusForbidden, "EMAIL_NOT_VERIFIED", "Email is not verified")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
