package presentation

import (
	"fmt"
	"strconv"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
)

// GlucoseItem is one row of the glucose list.
type GlucoseItem struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	Value      float64      `json:"value"`
	ValueLabel string       `json:"value_label"`
	MeasuredAt int64        `json:"measured_at"` // unix ms
	TimeLabel  string       `json:"time_label"`
	Notes      string       `json:"notes,omitempty"`
	Band       glucose.Band `json:"band"`
	Status     string       `json:"status"`
	CSSClass   string       `json:"css_class"`
	Color      string       `json:"color"`
}

// GlucoseItem maps a single record.
func (m *Mapper) GlucoseItem(r domain.GlucoseRecord) GlucoseItem {
	band := m.thresholds.Classify(r.Value)
	return GlucoseItem{
		ID:         r.ID,
		UserID:     r.UserID,
		Value:      r.Value,
		ValueLabel: m.format.Glucose(r.Value),
		MeasuredAt: r.MeasuredAt.UnixMilli(),
		TimeLabel:  m.format.DateTime(r.MeasuredAt),
		Notes:      r.Notes,
		Band:       band,
		Status:     m.format.BandStatus(band),
		CSSClass:   BandClass(band),
		Color:      BandColor(band),
	}
}

// GlucoseList maps records in the order given.
func (m *Mapper) GlucoseList(records []domain.GlucoseRecord) []GlucoseItem {
	items := make([]GlucoseItem, 0, len(records))
	for _, r := range records {
		items = append(items, m.GlucoseItem(r))
	}
	return items
}

// FoodItem is one row of the food list.
type FoodItem struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	FoodName      string          `json:"food_name"`
	FoodType      domain.FoodType `json:"food_type"`
	MealLabel     string          `json:"meal_label"`
	Carbs         *float64        `json:"carbs,omitempty"`
	CarbsLabel    string          `json:"carbs_label,omitempty"`
	Calories      *int            `json:"calories,omitempty"`
	CaloriesLabel string          `json:"calories_label,omitempty"`
	Quantity      string          `json:"quantity,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	ConsumedAt    int64           `json:"consumed_at"` // unix ms
	TimeLabel     string          `json:"time_label"`
}

// MealLabel returns the display name of a meal type.
func (f Formatter) MealLabel(t domain.FoodType) string {
	switch t {
	case domain.FoodTypeBreakfast:
		return f.pick("Завтрак", "Breakfast")
	case domain.FoodTypeLunch:
		return f.pick("Обед", "Lunch")
	case domain.FoodTypeDinner:
		return f.pick("Ужин", "Dinner")
	case domain.FoodTypeSnack:
		return f.pick("Перекус", "Snack")
	default:
		return f.pick("Без категории", "Other")
	}
}

// FoodItem maps a single record.
func (m *Mapper) FoodItem(r domain.FoodRecord) FoodItem {
	item := FoodItem{
		ID:         r.ID,
		UserID:     r.UserID,
		FoodName:   r.FoodName,
		FoodType:   r.FoodType,
		MealLabel:  m.format.MealLabel(r.FoodType),
		Carbs:      r.Carbs,
		Calories:   r.Calories,
		Quantity:   r.Quantity,
		Notes:      r.Notes,
		ConsumedAt: r.ConsumedAt.UnixMilli(),
		TimeLabel:  m.format.DateTime(r.ConsumedAt),
	}
	if r.Carbs != nil {
		item.CarbsLabel = fmt.Sprintf("%s: %s%s",
			m.format.pick("Углеводы", "Carbs"),
			strconv.FormatFloat(*r.Carbs, 'f', -1, 64),
			m.format.pick("г", " g"))
	}
	if r.Calories != nil {
		item.CaloriesLabel = fmt.Sprintf("%s: %d", m.format.pick("Калории", "Calories"), *r.Calories)
	}
	return item
}

// FoodList maps records in the order given.
func (m *Mapper) FoodList(records []domain.FoodRecord) []FoodItem {
	items := make([]FoodItem, 0, len(records))
	for _, r := range records {
		items = append(items, m.FoodItem(r))
	}
	return items
}
