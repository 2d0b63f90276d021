package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/domain/user"
	"github.com/parkspot/parkspot-api/internal/pkg/jwt"
	"github.com/parkspot/parkspot-api/internal/pkg/logger"
	"github.com/parkspot/parkspot-api/internal/pkg/password"
)

// Service handles authentication business logic
type Service struct {
	userRepo     user.Repository
	jwtService   *jwt.Service
	refresh      RefreshStore
	verification Verification
}

// NewService creates auth service
func NewService(userRepo user.Repository, jwtService *jwt.Service, refresh RefreshStore, verification Verification) *Service {
	return &Service{
		userRepo:     userRepo,
		jwtService:   jwtService,
		refresh:      refresh,
		verification: verification,
	}
}

// Register creates an unverified account and mails the verification code.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	req.Email = normalizeEmail(req.Email)

	if !user.IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:            uuid.New(),
		FullName:      strings.TrimSpace(req.FullName),
		Email:         req.Email,
		PasswordHash:  hash,
		Role:          user.Role(req.Role),
		PhoneNumber:   strings.TrimSpace(req.PhoneNumber),
		ProfileStatus: user.ProfilePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	// The account exists either way; a failed send is recovered with resend-verification.
	if err := s.sendVerificationCode(ctx, u); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("user_id", u.ID.String()).Msg("Failed to send verification code")
	}

	return &RegisterResponse{User: user.NewProfileResponse(u), VerificationRequired: true}, nil
}

// Login authenticates user. Unverified accounts are refused.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.checkCredentials(ctx, req)
	if err != nil {
		return nil, err
	}
	if !u.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return s.generateTokens(ctx, u)
}

func (s *Service) checkCredentials(ctx context.Context, req *LoginRequest) (*user.User, error) {
	req.Email = normalizeEmail(req.Email)

	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if u == nil || !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Refresh rotates the refresh token and issues a new pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	refreshHash := jwt.HashToken(refreshToken)
	userID, err := s.refresh.Lookup(ctx, refreshHash)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	_ = s.refresh.Delete(ctx, refreshHash)

	return s.generateTokens(ctx, u)
}

// Logout invalidates refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.refresh.Delete(ctx, jwt.HashToken(refreshToken))
}

// GetCurrentUser returns current user by ID
func (s *Service) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*user.ProfileResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return user.NewProfileResponse(u), nil
}

func (s *Service) generateTokens(ctx context.Context, u *user.User) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.refresh.Save(ctx, jwt.HashToken(refreshToken), u.ID, s.jwtService.RefreshTTL()); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User: user.NewProfileResponse(u),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.AccessTTL().Seconds()),
		},
	}, nil
}
