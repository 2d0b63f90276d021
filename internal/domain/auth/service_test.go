package auth

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/parkspot/parkspot-api/internal/domain/user"
	"github.com/parkspot/parkspot-api/internal/pkg/email"
	"github.com/parkspot/parkspot-api/internal/pkg/jwt"
	"github.com/parkspot/parkspot-api/internal/pkg/password"
)

func init() {
	password.Cost = bcrypt.MinCost
}

type fakeUserRepo struct {
	byID map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[uuid.UUID]*user.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.byID[u.ID] = u
	return nil
}
func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return f.byID[id], nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}
func (f *fakeUserRepo) GetByFirebaseUID(ctx context.Context, uid string) (*user.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) UpdateDriverProfile(ctx context.Context, id uuid.UUID, phone, license string, vehicle user.VehicleInfo) error {
	return nil
}
func (f *fakeUserRepo) UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error {
	return nil
}
func (f *fakeUserRepo) ClearDeviceToken(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeUserRepo) UpdateEmailVerified(ctx context.Context, id uuid.UUID, verified bool) error {
	u, ok := f.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.EmailVerified = verified
	return nil
}
func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	u, ok := f.byID[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type memoryRefreshStore struct {
	tokens map[string]uuid.UUID
}

func newMemoryRefreshStore() *memoryRefreshStore {
	return &memoryRefreshStore{tokens: map[string]uuid.UUID{}}
}

func (m *memoryRefreshStore) Save(ctx context.Context, hash string, userID uuid.UUID, ttl time.Duration) error {
	m.tokens[hash] = userID
	return nil
}
func (m *memoryRefreshStore) Lookup(ctx context.Context, hash string) (uuid.UUID, error) {
	id, ok := m.tokens[hash]
	if !ok {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return id, nil
}
func (m *memoryRefreshStore) Delete(ctx context.Context, hash string) error {
	delete(m.tokens, hash)
	return nil
}

type sentMail struct {
	to       string
	template string
	data     map[string]string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Queue(to, toName, templateName, subject string, data interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, _ := data.(map[string]string)
	m.sent = append(m.sent, sentMail{to: to, template: templateName, data: fields})
}

func (m *recordingMailer) last(template string) (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].template == template {
			return m.sent[i], true
		}
	}
	return sentMail{}, false
}

type testEnv struct {
	svc    *Service
	repo   *fakeUserRepo
	store  *memoryRefreshStore
	mailer *recordingMailer
}

func newTestEnv() *testEnv {
	repo := newFakeUserRepo()
	store := newMemoryRefreshStore()
	mailer := &recordingMailer{}
	svc := NewService(repo, jwt.NewService("secret", time.Minute, time.Hour), store, Verification{
		Codes:  NewRedisCodeStore(nil),
		Mailer: mailer,
		AppURL: "https://app.test",
	})
	return &testEnv{svc: svc, repo: repo, store: store, mailer: mailer}
}

func newTestService() (*Service, *fakeUserRepo, *memoryRefreshStore) {
	env := newTestEnv()
	return env.svc, env.repo, env.store
}

// registerVerified registers an account and confirms it with the mailed code.
func (e *testEnv) registerVerified(t *testing.T, req *RegisterRequest) {
	t.Helper()
	ctx := context.Background()
	_, err := e.svc.Register(ctx, req)
	require.NoError(t, err)
	mail, ok := e.mailer.last(email.TemplateVerification)
	require.True(t, ok, "verification email not queued")
	_, err = e.svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: req.Email, Code: mail.data["Code"]})
	require.NoError(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv()
	svc, repo := env.svc, env.repo
	ctx := context.Background()

	res, err := svc.Register(ctx, &RegisterRequest{
		FullName: "Nusrat Jahan",
		Email:    "  Nusrat@Example.com ",
		Password: "secret123",
		Role:     "owner",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !res.VerificationRequired || res.User.EmailVerified {
		t.Fatal("expected an unverified account")
	}
	if res.User.Email != "nusrat@example.com" {
		t.Fatalf("expected normalized email, got %s", res.User.Email)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected 1 user, got %d", len(repo.byID))
	}

	mail, ok := env.mailer.last(email.TemplateVerification)
	if !ok {
		t.Fatal("expected verification email")
	}
	if mail.to != "nusrat@example.com" || len(mail.data["Code"]) != VerificationCodeLength {
		t.Fatalf("unexpected verification mail: %+v", mail)
	}

	if _, err := svc.Register(ctx, &RegisterRequest{FullName: "X", Email: "nusrat@example.com", Password: "secret123", Role: "driver"}); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}

	if _, err := svc.Login(ctx, &LoginRequest{Email: "nusrat@example.com", Password: "secret123"}); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified before verification, got %v", err)
	}

	profile, err := svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: "Nusrat@example.com", Code: mail.data["Code"]})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !profile.EmailVerified {
		t.Fatal("expected verified profile")
	}

	login, err := svc.Login(ctx, &LoginRequest{Email: "NUSRAT@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if login.Tokens.AccessToken == "" || login.Tokens.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if _, err := svc.Login(ctx, &LoginRequest{Email: "nusrat@example.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Register(context.Background(), &RegisterRequest{FullName: "A", Email: "a@b.c", Password: "secret1", Role: "admin"})
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv()
	svc, store := env.svc, env.store
	ctx := context.Background()

	env.registerVerified(t, &RegisterRequest{FullName: "Guard", Email: "g@example.com", Password: "secret1", Role: "guard"})
	res, err := svc.Login(ctx, &LoginRequest{Email: "g@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	first := res.Tokens.RefreshToken

	res2, err := svc.Refresh(ctx, first)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if res2.Tokens.RefreshToken == first {
		t.Fatal("expected rotated refresh token")
	}
	if _, ok := store.tokens[jwt.HashToken(first)]; ok {
		t.Fatal("old refresh token should be deleted")
	}
	if _, err := svc.Refresh(ctx, first); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("reused token should fail, got %v", err)
	}

	if err := svc.Logout(ctx, res2.Tokens.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(store.tokens) != 0 {
		t.Fatalf("expected empty store after logout, got %d", len(store.tokens))
	}
}

func TestVerifyEmailRejectsWrongAndRepeatedCodes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.Register(ctx, &RegisterRequest{FullName: "Rafi", Email: "rafi@example.com", Password: "secret1", Role: "driver"})
	require.NoError(t, err)
	mail, _ := env.mailer.last(email.TemplateVerification)
	code := mail.data["Code"]

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	_, err = env.svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: "rafi@example.com", Code: wrong})
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)

	_, err = env.svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: "ghost@example.com", Code: code})
	assert.ErrorIs(t, err, ErrInvalidVerificationCode)

	_, err = env.svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: "rafi@example.com", Code: code})
	require.NoError(t, err)

	_, err = env.svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: "rafi@example.com", Code: code})
	assert.ErrorIs(t, err, ErrEmailAlreadyVerified)
}

func TestVerifyEmailBurnsCodeAfterTooManyAttempts(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.Register(ctx, &RegisterRequest{FullName: "Mim", Email: "mim@example.com", Password: "secret1", Role: "owner"})
	require.NoError(t, err)
	mail, _ := env.mailer.last(email.TemplateVerification)
	code := mail.data["Code"]

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for i := 0; i < maxVerifyAttempts; i++ {
		_, err = env.svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: "mim@example.com", Code: wrong})
		require.ErrorIs(t, err, ErrInvalidVerificationCode)
	}

	_, err = env.svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: "mim@example.com", Code: code})
	assert.ErrorIs(t, err, ErrInvalidVerificationCode, "code must be burned after too many attempts")

	require.NoError(t, env.svc.ResendVerification(ctx, &LoginRequest{Email: "mim@example.com", Password: "secret1"}))
	mail, _ = env.mailer.last(email.TemplateVerification)
	_, err = env.svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: "mim@example.com", Code: mail.data["Code"]})
	assert.NoError(t, err)
}

func TestResendVerification(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.Register(ctx, &RegisterRequest{FullName: "Sadia", Email: "sadia@example.com", Password: "secret1", Role: "driver"})
	require.NoError(t, err)

	err = env.svc.ResendVerification(ctx, &LoginRequest{Email: "sadia@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, env.svc.ResendVerification(ctx, &LoginRequest{Email: "sadia@example.com", Password: "secret1"}))
	assert.Len(t, env.mailer.sent, 2)

	mail, _ := env.mailer.last(email.TemplateVerification)
	_, err = env.svc.VerifyEmail(ctx, &VerifyEmailRequest{Email: "sadia@example.com", Code: mail.data["Code"]})
	require.NoError(t, err)

	err = env.svc.ResendVerification(ctx, &LoginRequest{Email: "sadia@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailAlreadyVerified)
}

func TestForgotAndResetPassword(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.registerVerified(t, &RegisterRequest{FullName: "Arif", Email: "arif@example.com", Password: "secret1", Role: "owner"})

	require.NoError(t, env.svc.ForgotPassword(ctx, "ghost@example.com"))
	_, ok := env.mailer.last(email.TemplatePasswordReset)
	assert.False(t, ok, "unknown email must not receive a reset link")

	require.NoError(t, env.svc.ForgotPassword(ctx, " ARIF@example.com"))
	mail, ok := env.mailer.last(email.TemplatePasswordReset)
	require.True(t, ok)
	assert.Equal(t, "arif@example.com", mail.to)
	assert.Equal(t, "60", mail.data["ExpiresInMinutes"])

	link, err := url.Parse(mail.data["ResetURL"])
	require.NoError(t, err)
	assert.Equal(t, "app.test", link.Host)
	assert.Equal(t, "/reset-password", link.Path)
	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	err = env.svc.ResetPassword(ctx, &ResetPasswordRequest{Token: "bogus", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	require.NoError(t, env.svc.ResetPassword(ctx, &ResetPasswordRequest{Token: token, NewPassword: "newsecret"}))

	err = env.svc.ResetPassword(ctx, &ResetPasswordRequest{Token: token, NewPassword: "another1"})
	assert.ErrorIs(t, err, ErrInvalidResetToken, "reset tokens are single use")

	_, err = env.svc.Login(ctx, &LoginRequest{Email: "arif@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.svc.Login(ctx, &LoginRequest{Email: "arif@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}
