package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/pkg/jwt"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/response"
)

type contextKey string

const (
	UserIDKey contextKey = "user_id"
	RoleKey   contextKey = "role"
)

const (
	RoleDriver = "driver"
	RoleOwner  = "owner"
	RoleGuard  = "guard"
)

// ErrUnknownFirebaseUser is returned by a resolver when no local account is linked.
var ErrUnknownFirebaseUser = errors.New("no account linked to firebase user")

// IDTokenVerifier verifies a Firebase ID token and returns its uid.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

// FirebaseUserResolver maps a Firebase uid to the local user id and role.
type FirebaseUserResolver interface {
	ResolveFirebaseUser(ctx context.Context, firebaseUID string) (uuid.UUID, string, error)
}

// FirebaseAuth enables Firebase ID tokens as a fallback credential.
type FirebaseAuth struct {
	Verifier IDTokenVerifier
	Users    FirebaseUserResolver
}

// Auth returns middleware that validates JWT
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return AuthWithFirebase(jwtService, nil)
}

// AuthWithFirebase validates the API's own access token first and, when fb is set,
// accepts a Firebase ID token for a linked account.
func AuthWithFirebase(jwtService *jwt.Service, fb *FirebaseAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := tokenFromRequest(r)
			if !ok {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			if err == nil {
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, claims.Role)))
				return
			}
			if errors.Is(err, jwt.ErrExpiredToken) {
				response.Unauthorized(w, "Token expired")
				return
			}
			if fb == nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			uid, err := fb.Verifier.VerifyIDToken(r.Context(), token)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}
			userID, role, err := fb.Users.ResolveFirebaseUser(r.Context(), uid)
			if err != nil {
				if errors.Is(err, ErrUnknownFirebaseUser) {
					response.Unauthorized(w, "No account linked to this Firebase user")
					return
				}
				logger.FromContext(r.Context()).Error().Err(err).Msg("Failed to resolve firebase user")
				response.InternalError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID, role)))
		})
	}
}

// tokenFromRequest reads the Bearer header. Browsers cannot set headers on a
// websocket handshake, so upgrades may pass ?token= instead.
func tokenFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		if t := r.URL.Query().Get("token"); t != "" {
			return t, true
		}
	}
	return "", false
}

// WithUser stores the authenticated identity in ctx.
func WithUser(ctx context.Context, userID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, RoleKey, role)
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetRole extracts role from context
func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(RoleKey).(string); ok {
		return role
	}
	return ""
}

// RequireRole returns middleware that checks user role
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetRole(r.Context())

			for _, role := range roles {
				if userRole == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, "Insufficient permissions")
		})
	}
}

func RequireDriver() func(http.Handler) http.Handler { return RequireRole(RoleDriver) }
func RequireOwner() func(http.Handler) http.Handler  { return RequireRole(RoleOwner) }
func RequireGuard() func(http.Handler) http.Handler  { return RequireRole(RoleGuard) }
