package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wandertrails/tours-api/internal/core/domain"
	"github.com/wandertrails/tours-api/internal/core/ports"
)

// UserService implements profile self-service and admin account management.
// Password changes are AuthService's job and are rejected upstream.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

func (s *UserService) GetMe(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID, true)
}

func (s *UserService) UpdateMe(ctx context.Context, userID, name, email string) (*domain.User, error) {
	return s.repo.UpdateProfile(ctx, userID, name, strings.ToLower(email))
}

func (s *UserService) DeleteMe(ctx context.Context, userID string) error {
	if err := s.repo.Deactivate(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("user deactivated")
	return nil
}

func (s *UserService) ListUsers(ctx context.Context, page, limit int) (*ports.ListUsersResult, error) {
	page, limit = normalizePage(page, limit)

	items, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	return &ports.ListUsersResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id, true)
}

func (s *UserService) UpdateUser(ctx context.Context, id string, update ports.UpdateUserInput) (*domain.User, error) {
	if update.Role != nil && !domain.ValidRole(*update.Role) {
		return nil, domain.ErrInvalidRole
	}
	if update.Email != nil {
		lower := strings.ToLower(*update.Email)
		update.Email = &lower
	}
	return s.repo.UpdateByID(ctx, id, update)
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("user deleted by admin")
	return nil
}
