package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

const (
	bcryptCost    = 12
	resetTokenTTL = 10 * time.Minute

	// passwordChangedSkew backdates the password-changed timestamp so a token
	// issued just before a slower-persisting update is still rejected.
	passwordChangedSkew = time.Second
)

// HashPassword runs the plaintext through salted bcrypt. Two calls with the
// same input yield different hashes.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash. It
// never fails on mismatch, only returns false.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// newResetToken generates a cryptographically random reset token and the
// SHA-256 hex digest under which it is persisted. Only the digest is stored;
// the raw value goes to the user.
func newResetToken() (raw, digest string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("reset token: %w", err)
	}
	raw = hex.EncodeToString(b)
	return raw, hashResetToken(raw), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// AuthService implements the credential lifecycle on top of the user
// repository, the token service and the mail collaborator.
type AuthService struct {
	users  ports.UserRepository
	tokens *TokenService
	mailer ports.Mailer
	log    zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens *TokenService, mailer ports.Mailer, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, mailer: mailer, log: log}
}

func (s *AuthService) Signup(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	if name == "" || email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		Email:        strings.ToLower(email),
		Role:         domain.RoleUser,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user signed up")
	return token, created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(email), true)
	if err != nil {
		// Unknown and deactivated accounts fail the same way as a wrong
		// password so login never confirms whether an email is registered.
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Authenticate resolves a bearer token to an active user. It is the service
// half of the per-request guard: token verification, user lookup, then the
// password-changed-after-issue check.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, issuedAt, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID, true)
	if err != nil {
		// A valid token whose owner was deleted or deactivated is an auth
		// failure, not a missing resource.
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenUserGone
		}
		return nil, err
	}

	if user.PasswordChangedAfter(issuedAt) {
		return nil, domain.ErrPasswordChanged
	}

	return user, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID, current, next string) (string, error) {
	user, err := s.users.FindByID(ctx, userID, true)
	if err != nil {
		return "", err
	}

	if !VerifyPassword(current, user.PasswordHash) {
		return "", domain.ErrInvalidCredentials
	}

	hash, err := HashPassword(next)
	if err != nil {
		return "", err
	}

	changedAt := time.Now().UTC().Add(-passwordChangedSkew)
	if err := s.users.UpdatePassword(ctx, user.ID, hash, changedAt); err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password updated")
	return s.tokens.Issue(user.ID)
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(email), true)
	if err != nil {
		return err
	}

	raw, digest, err := newResetToken()
	if err != nil {
		return err
	}

	expires := time.Now().UTC().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, digest, expires); err != nil {
		return err
	}

	msg := ports.MailMessage{
		To:      user.Email,
		Subject: "Your password reset token (valid for 10 minutes)",
		Body: "Forgot your password? Submit a PATCH request with your new password to " +
			"/api/v1/users/resetPassword/" + raw + "\nIf you didn't, please ignore this email.",
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		// The stored token is useless if the user never receives it.
		if clearErr := s.users.SetResetToken(ctx, user.ID, "", time.Time{}); clearErr != nil {
			s.log.Warn().Err(clearErr).Str("user_id", user.ID).Msg("failed to clear reset token")
		}
		return fmt.Errorf("send reset token: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset token issued")
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, rawToken, password string) (string, error) {
	if rawToken == "" || password == "" {
		return "", domain.ErrResetTokenInvalid
	}

	user, err := s.users.FindByResetTokenHash(ctx, hashResetToken(rawToken))
	if err != nil {
		return "", domain.ErrResetTokenInvalid
	}
	if !user.ResetTokenValid(time.Now().UTC()) {
		return "", domain.ErrResetTokenInvalid
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	changedAt := time.Now().UTC().Add(-passwordChangedSkew)
	if err := s.users.UpdatePassword(ctx, user.ID, hash, changedAt); err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset completed")
	return s.tokens.Issue(user.ID)
}
