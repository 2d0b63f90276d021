package user

import (
	"time"

	"github.com/google/uuid"
)

// DriverProfileRequest completes driver onboarding
type DriverProfileRequest struct {
	PhoneNumber   string             `json:"phone_number" validate:"required,min=6,max=20"`
	LicenseNumber string             `json:"license_number" validate:"required,max=50"`
	VehicleInfo   VehicleInfoRequest `json:"vehicle_info" validate:"required"`
}

type VehicleInfoRequest struct {
	LicensePlate string `json:"license_plate" validate:"required,max=20"`
	Model        string `json:"model" validate:"required,max=100"`
	Color        string `json:"color" validate:"required,max=30"`
}

// DeviceTokenRequest registers the FCM token of the caller's device
type DeviceTokenRequest struct {
	Token string `json:"token" validate:"required,max=4096"`
}

// ProfileResponse is the public view of a user
type ProfileResponse struct {
	ID            uuid.UUID     `json:"id"`
	FullName      string        `json:"full_name"`
	Email         string        `json:"email"`
	Role          Role          `json:"role"`
	EmailVerified bool          `json:"email_verified"`
	PhoneNumber   string        `json:"phone_number,omitempty"`
	LicenseNumber string        `json:"license_number,omitempty"`
	VehicleInfo   *VehicleInfo  `json:"vehicle_info,omitempty"`
	ProfileStatus ProfileStatus `json:"profile_status"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewProfileResponse maps a user to its response
func NewProfileResponse(u *User) *ProfileResponse {
	resp := &ProfileResponse{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		PhoneNumber:   u.PhoneNumber,
		LicenseNumber: u.LicenseNumber,
		ProfileStatus: u.ProfileStatus,
		CreatedAt:     u.CreatedAt,
	}
	if u.VehicleInfo != (VehicleInfo{}) {
		vi := u.VehicleInfo
		resp.VehicleInfo = &vi
	}
	return resp
}
