package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	copy := cloneUser(user)
	r.nextID++
	copy.ID = fmt.Sprintf("user_%d", r.nextID)
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string, activeOnly bool) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || (activeOnly && !u.Active) {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string, activeOnly bool) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			if activeOnly && !u.Active {
				return nil, domain.ErrUserNotFound
			}
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByResetTokenHash(_ context.Context, hash string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ResetTokenHash != "" && u.ResetTokenHash == hash {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, passwordHash string, changedAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = changedAt
	u.ResetTokenHash = ""
	u.ResetTokenExpires = time.Time{}
	return nil
}

func (r *stubUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpires = expires
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id, name, email string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if name != "" {
		u.Name = name
	}
	if email != "" {
		u.Email = email
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Active = false
	return nil
}

func (r *stubUserRepo) List(_ context.Context, page, limit int) ([]*domain.User, int64, error) {
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, int64(len(out)), nil
}

func (r *stubUserRepo) UpdateByID(_ context.Context, id string, update ports.UpdateUserInput) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
	if update.Active != nil {
		u.Active = *update.Active
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

type stubMailer struct {
	sent []ports.MailMessage
	err  error
}

func (m *stubMailer) Send(_ context.Context, msg ports.MailMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newAuthService(repo *stubUserRepo, mailer ports.Mailer) *AuthService {
	tokens := NewTokenService("secret", time.Hour)
	return NewAuthService(repo, tokens, mailer, zerolog.Nop())
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("pass12345")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := HashPassword("pass12345")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("expected distinct hashes for same input")
	}
	if !VerifyPassword("pass12345", h1) || !VerifyPassword("pass12345", h2) {
		t.Fatalf("hashes do not verify")
	}
	if VerifyPassword("wrong", h1) {
		t.Fatalf("wrong password verified")
	}
}

func TestAuthService_Signup_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	token, user, err := svc.Signup(context.Background(), "Alice", "Alice@Example.com", "pass12345")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected role %q, got %q", domain.RoleUser, user.Role)
	}
	if !user.Active {
		t.Fatalf("expected active user")
	}
	if user.PasswordHash == "pass12345" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.users[user.ID].PasswordHash), []byte("pass12345")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	if _, _, err := svc.Signup(context.Background(), "Alice", "alice@example.com", "pass12345"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, _, err := svc.Signup(context.Background(), "Alice2", "alice@example.com", "pass12345"); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	_, created, err := svc.Signup(context.Background(), "Bob", "bob@example.com", "pass12345")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "Bob@Example.com", "pass12345")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" || user.ID != created.ID {
		t.Fatalf("unexpected login result: %q %+v", token, user)
	}

	if _, _, err := svc.Login(context.Background(), "bob@example.com", "wrongpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	// An unregistered email must fail exactly like a wrong password.
	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass12345"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthService_Login_DeactivatedUser(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	_, created, err := svc.Signup(context.Background(), "Carol", "carol@example.com", "pass12345")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := repo.Deactivate(context.Background(), created.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "carol@example.com", "pass12345"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for deactivated user, got %v", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	token, created, err := svc.Signup(context.Background(), "Dave", "dave@example.com", "pass12345")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("unexpected user: %+v", user)
	}

	if _, err := svc.Authenticate(context.Background(), token+"x"); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestAuthService_Authenticate_UserGone(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	token, created, err := svc.Signup(context.Background(), "Erin", "erin@example.com", "pass12345")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := repo.Deactivate(context.Background(), created.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// The token is still valid but its owner is gone: an auth failure, not a
	// missing resource.
	if _, err := svc.Authenticate(context.Background(), token); err != domain.ErrTokenUserGone {
		t.Fatalf("expected ErrTokenUserGone, got %v", err)
	}
}

func TestAuthService_Authenticate_PasswordChangedAfterIssue(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	oldToken, created, err := svc.Signup(context.Background(), "Erin", "erin@example.com", "pass12345")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	// JWT iat has second precision, so the change must land in a later second.
	hash, _ := HashPassword("newpass123")
	changedAt := time.Now().UTC().Add(2 * time.Second)
	if err := repo.UpdatePassword(context.Background(), created.ID, hash, changedAt); err != nil {
		t.Fatalf("update password: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), oldToken); err != domain.ErrPasswordChanged {
		t.Fatalf("expected ErrPasswordChanged, got %v", err)
	}
}

func TestAuthService_UpdatePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	_, created, err := svc.Signup(context.Background(), "Frank", "frank@example.com", "pass12345")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := svc.UpdatePassword(context.Background(), created.ID, "wrongpass", "newpass123"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	fresh, err := svc.UpdatePassword(context.Background(), created.ID, "pass12345", "newpass123")
	if err != nil {
		t.Fatalf("update password: %v", err)
	}
	if fresh == "" {
		t.Fatalf("expected fresh token")
	}

	if _, _, err := svc.Login(context.Background(), "frank@example.com", "newpass123"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "frank@example.com", "pass12345"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if repo.users[created.ID].PasswordChangedAt.IsZero() {
		t.Fatalf("expected password changed timestamp to be set")
	}
}

func TestAuthService_ForgotPassword_StoresHashNotToken(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc := newAuthService(repo, mailer)

	_, created, err := svc.Signup(context.Background(), "Grace", "grace@example.com", "pass12345")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.ForgotPassword(context.Background(), "Grace@Example.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(mailer.sent))
	}

	raw := extractResetToken(t, mailer.sent[0].Body)
	stored := repo.users[created.ID]
	if stored.ResetTokenHash == "" {
		t.Fatalf("expected reset token hash to be stored")
	}
	if stored.ResetTokenHash == raw {
		t.Fatalf("raw token must not be stored")
	}
	if hashResetToken(raw) != stored.ResetTokenHash {
		t.Fatalf("stored hash does not match the mailed token")
	}

	ttl := time.Until(stored.ResetTokenExpires)
	if ttl <= 9*time.Minute || ttl > 10*time.Minute {
		t.Fatalf("unexpected reset token ttl: %v", ttl)
	}
}

func TestAuthService_ForgotPassword_MailFailureClearsToken(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{err: errors.New("smtp down")}
	svc := newAuthService(repo, mailer)

	_, created, err := svc.Signup(context.Background(), "Heidi", "heidi@example.com", "pass12345")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.ForgotPassword(context.Background(), "heidi@example.com"); err == nil {
		t.Fatalf("expected error when mail delivery fails")
	}
	if repo.users[created.ID].ResetTokenHash != "" {
		t.Fatalf("expected reset token to be cleared after mail failure")
	}
}

func TestAuthService_ResetPassword(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc := newAuthService(repo, mailer)

	_, created, err := svc.Signup(context.Background(), "Ivan", "ivan@example.com", "pass12345")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := svc.ForgotPassword(context.Background(), "ivan@example.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	raw := extractResetToken(t, mailer.sent[0].Body)

	token, err := svc.ResetPassword(context.Background(), raw, "newpass123")
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if token == "" {
		t.Fatalf("expected fresh token")
	}
	if repo.users[created.ID].ResetTokenHash != "" {
		t.Fatalf("expected reset token cleared after use")
	}
	if _, _, err := svc.Login(context.Background(), "ivan@example.com", "newpass123"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	// Token is single use.
	if _, err := svc.ResetPassword(context.Background(), raw, "anotherpass"); err != domain.ErrResetTokenInvalid {
		t.Fatalf("expected ErrResetTokenInvalid on reuse, got %v", err)
	}
}

func TestAuthService_ResetPassword_Expired(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc := newAuthService(repo, mailer)

	_, created, err := svc.Signup(context.Background(), "Judy", "judy@example.com", "pass12345")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if err := svc.ForgotPassword(context.Background(), "judy@example.com"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	raw := extractResetToken(t, mailer.sent[0].Body)

	repo.users[created.ID].ResetTokenExpires = time.Now().UTC().Add(-time.Minute)

	if _, err := svc.ResetPassword(context.Background(), raw, "newpass123"); err != domain.ErrResetTokenInvalid {
		t.Fatalf("expected ErrResetTokenInvalid for expired token, got %v", err)
	}
}

func TestAuthService_ResetPassword_UnknownToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	if _, err := svc.ResetPassword(context.Background(), "deadbeef", "newpass123"); err != domain.ErrResetTokenInvalid {
		t.Fatalf("expected ErrResetTokenInvalid, got %v", err)
	}
}

// extractResetToken pulls the raw token out of the mailed reset URL.
func extractResetToken(t *testing.T, body string) string {
	t.Helper()
	const marker = "/api/v1/users/resetPassword/"
	i := strings.Index(body, marker)
	if i < 0 {
		t.Fatalf("reset url not found in mail body: %q", body)
	}
	rest := body[i+len(marker):]
	if j := strings.IndexByte(rest, '\n'); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest)
}
