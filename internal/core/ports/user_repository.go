package ports

import (
	"context"
	"time"

	"github.com/wandertrails/tours-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
//
// Soft deletion: deactivated users keep their document but must not be
// visible to normal flows. Read methods take activeOnly so the predicate is
// applied explicitly at every call site rather than by an implicit query
// rewrite.
type UserRepository interface {
	// Create inserts a new user. A duplicate email yields domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string, activeOnly bool) (*domain.User, error)
	FindByEmail(ctx context.Context, email string, activeOnly bool) (*domain.User, error)
	// FindByResetTokenHash looks up the user holding the given SHA-256 reset
	// token hash. Expiry is checked by the caller.
	FindByResetTokenHash(ctx context.Context, hash string) (*domain.User, error)

	// UpdatePassword stores a new password hash, sets the password-changed
	// timestamp, and clears any pending reset token.
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	// SetResetToken stores the hash and expiry of a newly issued reset token.
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	// UpdateProfile changes name and/or email. Empty fields are left untouched.
	UpdateProfile(ctx context.Context, id, name, email string) (*domain.User, error)
	// Deactivate soft-deletes the user by clearing the active flag.
	Deactivate(ctx context.Context, id string) error

	// Admin operations.
	List(ctx context.Context, page, limit int) ([]*domain.User, int64, error)
	UpdateByID(ctx context.Context, id string, update UpdateUserInput) (*domain.User, error)
	DeleteByID(ctx context.Context, id string) error
}

// UpdateUserInput carries the admin-editable user fields. Nil pointers mean
// "leave unchanged".
type UpdateUserInput struct {
	Name   *string
	Email  *string
	Role   *string
	Active *bool
}
