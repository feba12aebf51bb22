package api

import (
	"context"
	"net/http"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
)

// foodCreateRequest sends carbs and calories as null when unknown.
type foodCreateRequest struct {
	UserID   int64           `json:"user_id"`
	FoodName string          `json:"food_name"`
	FoodType domain.FoodType `json:"food_type"`
	Carbs    *float64        `json:"carbs"`
	Calories *int            `json:"calories"`
	Quantity string          `json:"quantity"`
	Notes    string          `json:"notes"`
}

type foodUpdateRequest struct {
	UserID int64 `json:"user_id"`
	domain.FoodUpdate
}

// GetFoodRecords lists meals of the last days (30 when 0), optionally of one type.
func (c *Client) GetFoodRecords(ctx context.Context, userID int64, days int, foodType domain.FoodType) ([]domain.FoodRecord, error) {
	query := daysQuery(days)
	if foodType != "" {
		query.Set("type", string(foodType))
	}

	var records []domain.FoodRecord
	err := c.do(ctx, call{
		op:     "list food records",
		method: http.MethodGet,
		route:  "/food/{userId}",
		path:   idPath("/food", userID, ""),
		query:  query,
		out:    &records,
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.FoodRecord{}
	}
	return records, nil
}

// CreateFoodRecord logs a meal.
func (c *Client) CreateFoodRecord(ctx context.Context, userID int64, input domain.FoodInput) (*domain.FoodRecord, error) {
	foodType := input.FoodType
	if foodType == "" {
		foodType = domain.FoodTypeUnspecified
	}

	var record domain.FoodRecord
	err := c.do(ctx, call{
		op:     "create food record",
		method: http.MethodPost,
		route:  "/food",
		path:   "/food",
		body: foodCreateRequest{
			UserID:   userID,
			FoodName: input.FoodName,
			FoodType: foodType,
			Carbs:    input.Carbs,
			Calories: input.Calories,
			Quantity: input.Quantity,
			Notes:    input.Notes,
		},
		out: &record,
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateFoodRecord changes the non-nil fields of a meal.
func (c *Client) UpdateFoodRecord(ctx context.Context, recordID, userID int64, update domain.FoodUpdate) error {
	return c.do(ctx, call{
		op:     "update food record",
		method: http.MethodPut,
		route:  "/food/{recordId}",
		path:   idPath("/food", recordID, ""),
		body:   foodUpdateRequest{UserID: userID, FoodUpdate: update},
	})
}

// DeleteFoodRecord removes a meal owned by userID.
func (c *Client) DeleteFoodRecord(ctx context.Context, recordID, userID int64) error {
	return c.do(ctx, call{
		op:     "delete food record",
		method: http.MethodDelete,
		route:  "/food/{recordId}",
		path:   idPath("/food", recordID, ""),
		query:  userQuery(userID),
	})
}
