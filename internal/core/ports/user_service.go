package ports

import (
	"context"

	"github.com/wandertrails/tours-api/internal/core/domain"
)

// ListUsersResult is returned by ListUsers.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService defines profile self-service and admin account management.
type UserService interface {
	// GetMe returns the authenticated user's own account.
	GetMe(ctx context.Context, userID string) (*domain.User, error)
	// UpdateMe changes the caller's name and/or email. Password changes go
	// through AuthService.UpdatePassword.
	UpdateMe(ctx context.Context, userID, name, email string) (*domain.User, error)
	// DeleteMe soft-deletes the caller's account.
	DeleteMe(ctx context.Context, userID string) error

	// Admin operations.
	ListUsers(ctx context.Context, page, limit int) (*ListUsersResult, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, id string, update UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}
