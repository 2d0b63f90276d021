package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines user data access interface
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*User, error)
	UpdateDriverProfile(ctx context.Context, id uuid.UUID, phone, license string, vehicle VehicleInfo) error
	UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error
	ClearDeviceToken(ctx context.Context, id uuid.UUID) error
	UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// repository implements Repository
type repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectUser = `
	SELECT id, firebase_uid, full_name, email, password_hash, role, email_verified, phone_number,
	       license_number, vehicle_info, profile_status, device_token, created_at, updated_at
	FROM users
`

// Create creates a new user
func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, firebase_uid, full_name, email, password_hash, role, email_verified,
		                   phone_number, license_number, vehicle_info, profile_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.FirebaseUID,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.EmailVerified,
		user.PhoneNumber,
		user.LicenseNumber,
		user.VehicleInfo,
		user.ProfileStatus,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("user repository create: %w", err)
	}

	return nil
}

// GetByID returns user by ID
func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

// GetByEmail returns user by email
func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

// GetByFirebaseUID returns the account linked to a Firebase identity
func (r *repository) GetByFirebaseUID(ctx context.Context, uid string) (*User, error) {
	return r.getOne(ctx, selectUser+` WHERE firebase_uid = $1`, uid)
}

func (r *repository) getOne(ctx context.Context, query string, arg interface{}) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdateDriverProfile stores driver details and approves the profile
func (r *repository) UpdateDriverProfile(ctx context.Context, id uuid.UUID, phone, license string, vehicle VehicleInfo) error {
	query := `
		UPDATE users
		SET phone_number = $2, license_number = $3, vehicle_info = $4,
		    profile_status = $5, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, phone, license, vehicle, ProfileApproved)
	if err != nil {
		return fmt.Errorf("user repository update driver profile: %w", err)
	}
	return requireRow(res)
}

func (r *repository) UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error {
	query := `UPDATE users SET device_token = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, token)
	if err != nil {
		return fmt.Errorf("user repository update device token: %w", err)
	}
	return requireRow(res)
}

func (r *repository) ClearDeviceToken(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET device_token = NULL, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("user repository clear device token: %w", err)
	}
	return nil
}

// UpdateEmailVerified flips the verification flag
func (r *repository) UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	query := `UPDATE users SET email_verified = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, verified)
	if err != nil {
		return fmt.Errorf("user repository update email verified: %w", err)
	}
	return requireRow(res)
}

// UpdatePassword stores a new bcrypt hash
func (r *repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("user repository update password: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
