package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
	"github.com/vladimiradmaev/diabetes-webapp/internal/presentation"
)

// FoodService reads and writes the food diary of the current user.
type FoodService struct {
	api    domain.FoodAPI
	mapper *presentation.Mapper
}

func NewFoodService(api domain.FoodAPI, mapper *presentation.Mapper) *FoodService {
	return &FoodService{api: api, mapper: mapper}
}

// List returns the diary rows of the last days, optionally of one meal type.
func (s *FoodService) List(ctx context.Context, user *domain.User, days int, foodType domain.FoodType) ([]presentation.FoodItem, error) {
	records, err := s.api.GetFoodRecords(ctx, user.TelegramID, days, foodType)
	if err != nil {
		return nil, fmt.Errorf("failed to get food records: %w", err)
	}
	return s.mapper.ForLanguage(user.LanguageCode).FoodList(records), nil
}

// Add logs a meal. Only the name is required.
func (s *FoodService) Add(ctx context.Context, user *domain.User, input domain.FoodInput) (*domain.FoodRecord, error) {
	input.FoodName = strings.TrimSpace(input.FoodName)
	if input.FoodName == "" {
		return nil, apperrors.NewValidationError("Укажите название блюда")
	}
	if err := validateNutrition(input.Carbs, input.Calories); err != nil {
		return nil, err
	}

	record, err := s.api.CreateFoodRecord(ctx, user.TelegramID, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create food record: %w", err)
	}
	logger.WithContext(ctx).Info("Food record created", "record_id", record.ID, "telegram_id", user.TelegramID)
	return record, nil
}

// Update changes the given fields of a record.
func (s *FoodService) Update(ctx context.Context, user *domain.User, recordID int64, update domain.FoodUpdate) error {
	if update.FoodName != nil {
		name := strings.TrimSpace(*update.FoodName)
		if name == "" {
			return apperrors.NewValidationError("Укажите название блюда")
		}
		update.FoodName = &name
	}
	if err := validateNutrition(update.Carbs, update.Calories); err != nil {
		return err
	}

	if err := s.api.UpdateFoodRecord(ctx, recordID, user.ID, update); err != nil {
		return fmt.Errorf("failed to update food record: %w", err)
	}
	return nil
}

// Delete removes a record.
func (s *FoodService) Delete(ctx context.Context, user *domain.User, recordID int64) error {
	if err := s.api.DeleteFoodRecord(ctx, recordID, user.ID); err != nil {
		return fmt.Errorf("failed to delete food record: %w", err)
	}
	return nil
}

func validateNutrition(carbs *float64, calories *int) error {
	if carbs != nil && *carbs < 0 {
		return apperrors.NewValidationError("Углеводы не могут быть отрицательными")
	}
	if calories != nil && *calories < 0 {
		return apperrors.NewValidationError("Калории не могут быть отрицательными")
	}
	return nil
}
