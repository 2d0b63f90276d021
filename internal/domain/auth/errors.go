package auth

import "errors"

var (
	ErrEmailAlreadyExists   = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidRole          = errors.New("invalid role, must be 'driver', 'owner' or 'guard'")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrUserNotFound         = errors.New("user not found")
	ErrRefreshTokenRequired = errors.New("refresh token is required")

	ErrEmailNotVerified        = errors.New("email not verified")
	ErrEmailAlreadyVerified    = errors.New("email already verified")
	ErrInvalidVerificationCode = errors.New("invalid or expired verification code")
	ErrInvalidResetToken       = errors.New("invalid or expired reset token")
)
