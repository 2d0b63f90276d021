package user

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system
type Role string

const (
	RoleDriver Role = "driver"
	RoleOwner  Role = "owner"
	RoleGuard  Role = "guard"
)

// ProfileStatus tracks driver onboarding
type ProfileStatus string

const (
	ProfilePending  ProfileStatus = "pending"
	ProfileApproved ProfileStatus = "approved"
)

// VehicleInfo is stored as JSONB
type VehicleInfo struct {
	LicensePlate string `json:"license_plate"`
	Model        string `json:"model"`
	Color        string `json:"color"`
}

func (v VehicleInfo) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *VehicleInfo) Scan(src interface{}) error {
	switch data := src.(type) {
	case nil:
		*v = VehicleInfo{}
		return nil
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	default:
		return errors.New("vehicle_info: unsupported scan type")
	}
}

// User represents an account (matches users table)
type User struct {
	ID            uuid.UUID      `db:"id"`
	FirebaseUID   sql.NullString `db:"firebase_uid"`
	FullName      string         `db:"full_name"`
	Email         string         `db:"email"`
	PasswordHash  string         `db:"password_hash"`
	Role          Role           `db:"role"`
	EmailVerified bool           `db:"email_verified"`
	PhoneNumber   string         `db:"phone_number"`
	LicenseNumber string         `db:"license_number"`
	VehicleInfo   VehicleInfo    `db:"vehicle_info"`
	ProfileStatus ProfileStatus  `db:"profile_status"`
	DeviceToken   sql.NullString `db:"device_token"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (u *User) IsDriver() bool { return u.Role == RoleDriver }
func (u *User) IsOwner() bool  { return u.Role == RoleOwner }
func (u *User) IsGuard() bool  { return u.Role == RoleGuard }

// IsValidRole checks if role is valid for registration
func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleDriver, RoleOwner, RoleGuard:
		return true
	}
	return false
}
