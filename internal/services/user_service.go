package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/identity"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
	"github.com/vladimiradmaev/diabetes-webapp/internal/session"
)

// UserService resolves the current user of a request and keeps the session
// copy in step with the API.
type UserService struct {
	api   domain.UserAPI
	store session.Store
}

func NewUserService(api domain.UserAPI, store session.Store) *UserService {
	return &UserService{api: api, store: store}
}

// Current returns the user behind the identity in ctx, from the session when
// present and from the API otherwise.
func (s *UserService) Current(ctx context.Context) (*domain.User, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, apperrors.ErrMissingIdentity
	}

	user, err := s.store.Get(ctx, id.TelegramID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrSessionNotFound) {
		logger.WithContext(ctx).Warn("Session lookup failed, falling back to API", "error", err, "telegram_id", id.TelegramID)
	}
	return s.Refresh(ctx)
}

// Refresh fetches the user from the API and replaces the session copy.
func (s *UserService) Refresh(ctx context.Context) (*domain.User, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, apperrors.ErrMissingIdentity
	}

	user, err := s.api.GetUser(ctx, id.TelegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	s.remember(ctx, user)
	return user, nil
}

// UpdateSettings applies a partial settings update. The user returned by the
// API replaces the session copy as a whole.
func (s *UserService) UpdateSettings(ctx context.Context, settings domain.UserSettings) (*domain.User, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, apperrors.ErrMissingIdentity
	}
	if settings.TargetGlucose != nil && *settings.TargetGlucose <= 0 {
		return nil, apperrors.NewValidationError("Целевой уровень глюкозы должен быть больше нуля")
	}

	user, err := s.api.UpdateUserSettings(ctx, id.TelegramID, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	s.remember(ctx, user)
	return user, nil
}

// UpdateDiabetesInfo stores the diabetes type and target, then reloads the user.
func (s *UserService) UpdateDiabetesInfo(ctx context.Context, diabetesType int, targetGlucose float64) (*domain.User, error) {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return nil, apperrors.ErrMissingIdentity
	}
	if diabetesType != 1 && diabetesType != 2 {
		return nil, apperrors.NewValidationError("Тип диабета должен быть 1 или 2")
	}
	if targetGlucose <= 0 {
		return nil, apperrors.NewValidationError("Целевой уровень глюкозы должен быть больше нуля")
	}

	if err := s.api.UpdateDiabetesInfo(ctx, id.TelegramID, diabetesType, targetGlucose); err != nil {
		return nil, fmt.Errorf("failed to update diabetes info: %w", err)
	}
	return s.Refresh(ctx)
}

// DeleteData removes every record of the user and forgets the session.
func (s *UserService) DeleteData(ctx context.Context) error {
	id, ok := identity.FromContext(ctx)
	if !ok {
		return apperrors.ErrMissingIdentity
	}

	if err := s.api.DeleteUserData(ctx, id.TelegramID); err != nil {
		return fmt.Errorf("failed to delete user data: %w", err)
	}
	if err := s.store.Delete(ctx, id.TelegramID); err != nil {
		logger.WithContext(ctx).Warn("Failed to drop session", "error", err, "telegram_id", id.TelegramID)
	}
	logger.WithContext(ctx).Info("User data deleted", "telegram_id", id.TelegramID)
	return nil
}

func (s *UserService) remember(ctx context.Context, user *domain.User) {
	if err := s.store.Set(ctx, user); err != nil {
		logger.WithContext(ctx).Warn("Failed to store session", "error", err, "telegram_id", user.TelegramID)
	}
}
