package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/parkspot/parkspot-api/internal/domain/user"
	"github.com/parkspot/parkspot-api/internal/pkg/email"
	"github.com/parkspot/parkspot-api/internal/pkg/jwt"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/password"
)

// Verification code settings
const (
	VerificationCodeLength = 6
	VerificationCodeTTL    = 15 * time.Minute
	ResetTokenTTL          = 1 * time.Hour
)

// Mailer queues templated emails. *email.Service satisfies it.
type Mailer interface {
	Queue(to, toName, templateName, subject string, data interface{})
}

// Verification wires the account email flows into the auth service.
type Verification struct {
	Codes  CodeStore
	Mailer Mailer
	// AppURL is the client origin used in password reset links.
	AppURL string
}

// VerifyEmail confirms the address with the mailed code.
func (s *Service) VerifyEmail(ctx context.Context, req *VerifyEmailRequest) (*user.ProfileResponse, error) {
	u, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidVerificationCode
	}
	if u.EmailVerified {
		return nil, ErrEmailAlreadyVerified
	}

	ok, err := s.verification.Codes.CheckVerificationCode(ctx, u.ID, req.Code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidVerificationCode
	}

	if err := s.userRepo.UpdateEmailVerified(ctx, u.ID, true); err != nil {
		return nil, err
	}
	u.EmailVerified = true

	logger.FromContext(ctx).Info().Str("user_id", u.ID.String()).Msg("Email verified")
	return user.NewProfileResponse(u), nil
}

// ResendVerification mails a fresh code. The password is required so the
// endpoint cannot be used to spam arbitrary addresses.
func (s *Service) ResendVerification(ctx context.Context, req *LoginRequest) error {
	u, err := s.checkCredentials(ctx, req)
	if err != nil {
		return err
	}
	if u.EmailVerified {
		return ErrEmailAlreadyVerified
	}
	return s.sendVerificationCode(ctx, u)
}

// ForgotPassword mails a reset link. Unknown emails succeed silently.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	u, err := s.userRepo.GetByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}

	token, err := jwt.GenerateRefreshToken()
	if err != nil {
		return err
	}
	if err := s.verification.Codes.SaveResetToken(ctx, jwt.HashToken(token), u.ID, ResetTokenTTL); err != nil {
		return err
	}

	s.verification.Mailer.Queue(u.Email, u.FullName, email.TemplatePasswordReset, "Reset your ParkSpot password", map[string]string{
		"UserName":         u.FullName,
		"ResetURL":         fmt.Sprintf("%s/reset-password?token=%s", s.verification.AppURL, token),
		"ExpiresInMinutes": strconv.Itoa(int(ResetTokenTTL.Minutes())),
	})

	logger.FromContext(ctx).Info().Str("user_id", u.ID.String()).Msg("Password reset requested")
	return nil
}

// ResetPassword sets a new password with a single-use reset token.
func (s *Service) ResetPassword(ctx context.Context, req *ResetPasswordRequest) error {
	userID, err := s.verification.Codes.ConsumeResetToken(ctx, jwt.HashToken(req.Token))
	if err != nil {
		return err
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}

	logger.FromContext(ctx).Info().Str("user_id", userID.String()).Msg("Password reset")
	return nil
}

func (s *Service) sendVerificationCode(ctx context.Context, u *user.User) error {
	code, err := generateNumericCode(VerificationCodeLength)
	if err != nil {
		return err
	}
	if err := s.verification.Codes.SaveVerificationCode(ctx, u.ID, code, VerificationCodeTTL); err != nil {
		return err
	}

	s.verification.Mailer.Queue(u.Email, u.FullName, email.TemplateVerification, "Verify your ParkSpot email", map[string]string{
		"UserName":         u.FullName,
		"Code":             code,
		"ExpiresInMinutes": strconv.Itoa(int(VerificationCodeTTL.Minutes())),
	})
	return nil
}

func generateNumericCode(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
