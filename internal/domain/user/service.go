package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/middleware"
)

// Service handles user profile business logic
type Service struct {
	repo Repository
}

// NewService creates user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetProfile returns the caller's profile
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// SetupDriverProfile completes onboarding; the profile is approved immediately.
func (s *Service) SetupDriverProfile(ctx context.Context, userID uuid.UUID, req *DriverProfileRequest) (*User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsDriver() {
		return nil, ErrNotDriver
	}

	vehicle := VehicleInfo{
		LicensePlate: req.VehicleInfo.LicensePlate,
		Model:        req.VehicleInfo.Model,
		Color:        req.VehicleInfo.Color,
	}
	if err := s.repo.UpdateDriverProfile(ctx, userID, req.PhoneNumber, req.LicenseNumber, vehicle); err != nil {
		return nil, err
	}

	u.PhoneNumber = req.PhoneNumber
	u.LicenseNumber = req.LicenseNumber
	u.VehicleInfo = vehicle
	u.ProfileStatus = ProfileApproved
	return u, nil
}

// UpdateDeviceToken stores the FCM token used by the notifier
func (s *Service) UpdateDeviceToken(ctx context.Context, userID uuid.UUID, token string) error {
	return s.repo.UpdateDeviceToken(ctx, userID, token)
}

// DeviceToken returns the stored FCM token, or "" when none is registered.
func (s *Service) DeviceToken(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil || !u.DeviceToken.Valid {
		return "", nil
	}
	return u.DeviceToken.String, nil
}

// ClearDeviceToken forgets a token FCM reported as unregistered
func (s *Service) ClearDeviceToken(ctx context.Context, userID uuid.UUID) error {
	return s.repo.ClearDeviceToken(ctx, userID)
}

// ResolveFirebaseUser maps a Firebase uid onto the local account for the auth middleware.
func (s *Service) ResolveFirebaseUser(ctx context.Context, firebaseUID string) (uuid.UUID, string, error) {
	u, err := s.repo.GetByFirebaseUID(ctx, firebaseUID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("resolve firebase user: %w", err)
	}
	if u == nil {
		return uuid.Nil, "", middleware.ErrUnknownFirebaseUser
	}
	return u.ID, string(u.Role), nil
}

// IsEmailVerified backs the verified-email route guard.
func (s *Service) IsEmailVerified(ctx context.Context, userID uuid.UUID) (bool, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check email verified: %w", err)
	}
	if u == nil {
		return false, middleware.ErrAccountNotFound
	}
	return u.EmailVerified, nil
}
