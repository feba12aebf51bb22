package domain

import (
	"context"
)

// UserAPI covers the user resource of the diabetes API
type UserAPI interface {
	GetUser(ctx context.Context, telegramID int64) (*User, error)
	UpdateDiabetesInfo(ctx context.Context, telegramID int64, diabetesType int, targetGlucose float64) error
	UpdateUserSettings(ctx context.Context, telegramID int64, settings UserSettings) (*User, error)
	DeleteUserData(ctx context.Context, telegramID int64) error
}

// GlucoseAPI covers the glucose resource of the diabetes API
type GlucoseAPI interface {
	GetGlucoseRecords(ctx context.Context, userID int64, days int) ([]GlucoseRecord, error)
	CreateGlucoseRecord(ctx context.Context, userID int64, value float64, notes string) (*GlucoseRecord, error)
	UpdateGlucoseRecord(ctx context.Context, recordID, userID int64, value float64, notes string) error
	DeleteGlucoseRecord(ctx context.Context, recordID, userID int64) error
	GetGlucoseStats(ctx context.Context, userID int64, days int) (*GlucoseStats, error)
}

// FoodAPI covers the food resource of the diabetes API
type FoodAPI interface {
	GetFoodRecords(ctx context.Context, userID int64, days int, foodType FoodType) ([]FoodRecord, error)
	CreateFoodRecord(ctx context.Context, userID int64, input FoodInput) (*FoodRecord, error)
	UpdateFoodRecord(ctx context.Context, recordID, userID int64, update FoodUpdate) error
	DeleteFoodRecord(ctx context.Context, recordID, userID int64) error
}

// Gateway is the full remote API surface
type Gateway interface {
	UserAPI
	GlucoseAPI
	FoodAPI
}
