package auth

import (
	"github.com/parkspot/parkspot-api/internal/domain/user"
)

// RegisterRequest for POST /auth/register
type RegisterRequest struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	Role        string `json:"role" validate:"required,user_role"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
}

// LoginRequest for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest for POST /auth/refresh and /auth/logout
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// VerifyEmailRequest for POST /auth/verify
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// ForgotPasswordRequest for POST /auth/forgot-password
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest for POST /auth/reset-password
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=128"`
}

// TokensResponse carries the issued token pair
type TokensResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthResponse is returned by register, login and refresh
type AuthResponse struct {
	User   *user.ProfileResponse `json:"user"`
	Tokens TokensResponse        `json:"tokens"`
}

// RegisterResponse is returned by register. Tokens are issued only after the
// email is verified and the user logs in.
type RegisterResponse struct {
	User                 *user.ProfileResponse `json:"user"`
	VerificationRequired bool                  `json:"verification_required"`
}
