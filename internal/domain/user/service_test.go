package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/parkspot/parkspot-api/internal/middleware"
)

type fakeRepo struct {
	users map[uuid.UUID]*User
	err   error
}

func newFakeRepo(users ...*User) *fakeRepo {
	f := &fakeRepo{users: map[uuid.UUID]*User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeRepo) Create(ctx context.Context, u *User) error {
	f.users[u.ID] = u
	return nil
}
func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}
func (f *fakeRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeRepo) GetByFirebaseUID(ctx context.Context, uid string) (*User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.FirebaseUID.Valid && u.FirebaseUID.String == uid {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeRepo) UpdateDriverProfile(ctx context.Context, id uuid.UUID, phone, license string, vehicle VehicleInfo) error {
	u, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PhoneNumber, u.LicenseNumber, u.VehicleInfo, u.ProfileStatus = phone, license, vehicle, ProfileApproved
	return nil
}
func (f *fakeRepo) UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error {
	u, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.DeviceToken = sql.NullString{String: token, Valid: true}
	return nil
}
func (f *fakeRepo) ClearDeviceToken(ctx context.Context, id uuid.UUID) error {
	if u, ok := f.users[id]; ok {
		u.DeviceToken = sql.NullString{}
	}
	return nil
}

func (f *fakeRepo) UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	u, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.EmailVerified = verified
	return nil
}
func (f *fakeRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func TestSetupDriverProfileApproves(t *testing.T) {
	driver := &User{ID: uuid.New(), Role: RoleDriver, ProfileStatus: ProfilePending}
	repo := newFakeRepo(driver)
	svc := NewService(repo)

	u, err := svc.SetupDriverProfile(context.Background(), driver.ID, &DriverProfileRequest{
		PhoneNumber:   "01700000000",
		LicenseNumber: "DK-123",
		VehicleInfo:   VehicleInfoRequest{LicensePlate: "DHA-1234", Model: "Axio", Color: "White"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ProfileStatus != ProfileApproved || repo.users[driver.ID].ProfileStatus != ProfileApproved {
		t.Fatalf("expected profile to be approved")
	}
	if repo.users[driver.ID].VehicleInfo.LicensePlate != "DHA-1234" {
		t.Fatalf("vehicle info not stored: %+v", repo.users[driver.ID].VehicleInfo)
	}
}

func TestSetupDriverProfileRejectsOtherRoles(t *testing.T) {
	owner := &User{ID: uuid.New(), Role: RoleOwner}
	svc := NewService(newFakeRepo(owner))

	_, err := svc.SetupDriverProfile(context.Background(), owner.ID, &DriverProfileRequest{})
	if !errors.Is(err, ErrNotDriver) {
		t.Fatalf("expected ErrNotDriver, got %v", err)
	}

	_, err = svc.SetupDriverProfile(context.Background(), uuid.New(), &DriverProfileRequest{})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeviceTokenRoundTrip(t *testing.T) {
	driver := &User{ID: uuid.New(), Role: RoleDriver}
	svc := NewService(newFakeRepo(driver))
	ctx := context.Background()

	if tok, _ := svc.DeviceToken(ctx, driver.ID); tok != "" {
		t.Fatalf("expected no token, got %q", tok)
	}
	if err := svc.UpdateDeviceToken(ctx, driver.ID, "fcm-token"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if tok, _ := svc.DeviceToken(ctx, driver.ID); tok != "fcm-token" {
		t.Fatalf("expected fcm-token, got %q", tok)
	}
	_ = svc.ClearDeviceToken(ctx, driver.ID)
	if tok, _ := svc.DeviceToken(ctx, driver.ID); tok != "" {
		t.Fatalf("expected token cleared, got %q", tok)
	}
}

func TestResolveFirebaseUser(t *testing.T) {
	guard := &User{ID: uuid.New(), Role: RoleGuard, FirebaseUID: sql.NullString{String: "fb-guard", Valid: true}}
	svc := NewService(newFakeRepo(guard))

	id, role, err := svc.ResolveFirebaseUser(context.Background(), "fb-guard")
	if err != nil || id != guard.ID || role != "guard" {
		t.Fatalf("unexpected resolution id=%s role=%s err=%v", id, role, err)
	}

	_, _, err = svc.ResolveFirebaseUser(context.Background(), "fb-unknown")
	if !errors.Is(err, middleware.ErrUnknownFirebaseUser) {
		t.Fatalf("expected ErrUnknownFirebaseUser, got %v", err)
	}
}

func TestIsEmailVerified(t *testing.T) {
	verified := &User{ID: uuid.New(), Role: RoleOwner, EmailVerified: true}
	pending := &User{ID: uuid.New(), Role: RoleDriver}
	repo := newFakeRepo(verified, pending)
	svc := NewService(repo)
	ctx := context.Background()

	if ok, err := svc.IsEmailVerified(ctx, verified.ID); err != nil || !ok {
		t.Fatalf("expected verified, ok=%v err=%v", ok, err)
	}
	if ok, err := svc.IsEmailVerified(ctx, pending.ID); err != nil || ok {
		t.Fatalf("expected unverified, ok=%v err=%v", ok, err)
	}
	if _, err := svc.IsEmailVerified(ctx, uuid.New()); !errors.Is(err, middleware.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	repo.err = errors.New("db down")
	if _, err := svc.IsEmailVerified(ctx, verified.ID); err == nil || errors.Is(err, middleware.ErrAccountNotFound) {
		t.Fatalf("expected store error, got %v", err)
	}
}
