package domain

import (
	"time"
)

// User represents the diabetes API user as seen by the mini-app
type User struct {
	ID            int64     `json:"id"`
	TelegramID    int64     `json:"telegram_id"`
	Username      string    `json:"username,omitempty"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name,omitempty"`
	LanguageCode  string    `json:"language_code,omitempty"`
	IsActive      bool      `json:"is_active"`
	DiabetesType  *int      `json:"diabetes_type,omitempty"`
	TargetGlucose *float64  `json:"target_glucose,omitempty"` // mmol/L
	Notifications *bool     `json:"notifications,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GlucoseRecord represents a single blood glucose measurement
type GlucoseRecord struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Value      float64   `json:"value"` // mmol/L
	MeasuredAt time.Time `json:"measured_at"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Timestamp returns the measurement time.
func (r GlucoseRecord) Timestamp() time.Time {
	return r.MeasuredAt
}

// GlucoseValue returns the reading in mmol/L.
func (r GlucoseRecord) GlucoseValue() float64 {
	return r.Value
}

// FoodRecord represents a logged meal
type FoodRecord struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	FoodName   string    `json:"food_name"`
	FoodType   FoodType  `json:"food_type"`
	Carbs      *float64  `json:"carbs,omitempty"` // grams
	Calories   *int      `json:"calories,omitempty"`
	Quantity   string    `json:"quantity,omitempty"`
	ConsumedAt time.Time `json:"consumed_at"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Timestamp returns the consumption time.
func (r FoodRecord) Timestamp() time.Time {
	return r.ConsumedAt
}

// GlucoseStats is the aggregate served by the remote stats endpoint
type GlucoseStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Count   int64   `json:"count"`
}

// FoodType is the meal tag. Wire values are the Russian names the API stores.
type FoodType string

const (
	FoodTypeBreakfast   FoodType = "завтрак"
	FoodTypeLunch       FoodType = "обед"
	FoodTypeDinner      FoodType = "ужин"
	FoodTypeSnack       FoodType = "перекус"
	FoodTypeUnspecified FoodType = "неопределено"
)

var foodTypeAliases = map[string]FoodType{
	"breakfast":   FoodTypeBreakfast,
	"lunch":       FoodTypeLunch,
	"dinner":      FoodTypeDinner,
	"snack":       FoodTypeSnack,
	"unspecified": FoodTypeUnspecified,
}

// ParseFoodType accepts either the wire value or its English alias.
// Unknown input maps to FoodTypeUnspecified.
func ParseFoodType(s string) FoodType {
	switch FoodType(s) {
	case FoodTypeBreakfast, FoodTypeLunch, FoodTypeDinner, FoodTypeSnack, FoodTypeUnspecified:
		return FoodType(s)
	}
	if ft, ok := foodTypeAliases[s]; ok {
		return ft
	}
	return FoodTypeUnspecified
}

// FoodInput is the payload for a new food record
type FoodInput struct {
	FoodName string
	FoodType FoodType
	Carbs    *float64
	Calories *int
	Quantity string
	Notes    string
}

// FoodUpdate carries the fields to change; nil fields are left untouched.
type FoodUpdate struct {
	FoodName *string   `json:"food_name,omitempty"`
	FoodType *FoodType `json:"food_type,omitempty"`
	Carbs    *float64  `json:"carbs,omitempty"`
	Calories *int      `json:"calories,omitempty"`
	Quantity *string   `json:"quantity,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
}

// UserSettings is a partial update of user preferences
type UserSettings struct {
	TargetGlucose *float64 `json:"target_glucose,omitempty"`
	Notifications *bool    `json:"notifications,omitempty"`
}
