package ports

import (
	"context"

	"github.com/wandertrails/tours-api/internal/core/domain"
)

// AuthService covers the account credential lifecycle: signup, login,
// password change and the reset-token flow.
type AuthService interface {
	Signup(ctx context.Context, name, email, password string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)

	// Authenticate verifies a bearer token and resolves it to an active user.
	// Fails with domain.ErrInvalidToken, domain.ErrTokenUserGone or
	// domain.ErrPasswordChanged.
	Authenticate(ctx context.Context, token string) (*domain.User, error)

	// UpdatePassword changes the password of an authenticated user after
	// verifying the current one, and returns a freshly issued token.
	UpdatePassword(ctx context.Context, userID, current, next string) (string, error)

	// ForgotPassword issues a reset token for the account behind email and
	// hands the raw value to the mail collaborator. The stored copy is a
	// SHA-256 hash with a short expiry.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword consumes a raw reset token, sets the new password and
	// returns a freshly issued bearer token.
	ResetPassword(ctx context.Context, rawToken, password string) (string, error)
}
