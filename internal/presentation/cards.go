package presentation

import (
	"fmt"
	"strconv"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
)

const (
	colorAverage = "#3b82f6"
	colorInRange = "#10b981"
	colorNeutral = "#6b7280"
	colorRed     = "#ef4444"
	colorAmber   = "#f59e0b"
)

// Card keys.
const (
	CardAverage = "average"
	CardInRange = "in_range"
	CardMin     = "min"
	CardMax     = "max"
	CardLow     = "low"
	CardHigh    = "high"
	CardCount   = "count"
)

// StatCard is one tile of the statistics grid.
type StatCard struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Label string `json:"label"`
	Hint  string `json:"hint"`
	Color string `json:"color"`
}

// StatCards is the statistics grid of a period.
type StatCards struct {
	Cards     []StatCard `json:"cards"`
	Empty     bool       `json:"empty"`
	EmptyText string     `json:"empty_text,omitempty"`
}

// StatCards lays out a summary. The low and high tiles appear only when
// there is something to count.
func (m *Mapper) StatCards(s glucose.Summary) StatCards {
	if s.Count == 0 {
		return StatCards{
			Cards:     []StatCard{},
			Empty:     true,
			EmptyText: m.format.pick("Недостаточно данных для статистики", "Not enough data for statistics"),
		}
	}

	f := m.format
	unit := f.Unit()
	low := f.Decimal(m.thresholds.Low)
	high := f.Decimal(m.thresholds.High)

	minColor := colorNeutral
	if m.thresholds.Classify(s.Min) == glucose.BandLow {
		minColor = colorRed
	}
	maxColor := colorNeutral
	if m.thresholds.Classify(s.Max) == glucose.BandHigh {
		maxColor = colorAmber
	}

	cards := []StatCard{
		{Key: CardAverage, Value: f.Decimal(s.Average), Label: f.pick("Среднее", "Average"), Hint: unit, Color: colorAverage},
		{Key: CardInRange, Value: fmt.Sprintf("%d%%", s.InRangePercent), Label: f.pick("В норме", "In range"), Hint: low + "-" + high + " " + unit, Color: colorInRange},
		{Key: CardMin, Value: f.Decimal(s.Min), Label: f.pick("Минимум", "Minimum"), Hint: unit, Color: minColor},
		{Key: CardMax, Value: f.Decimal(s.Max), Label: f.pick("Максимум", "Maximum"), Hint: unit, Color: maxColor},
	}
	if s.LowCount > 0 {
		cards = append(cards, StatCard{Key: CardLow, Value: strconv.Itoa(s.LowCount), Label: f.pick("Низкие", "Low"), Hint: "< " + low + " " + unit, Color: colorRed})
	}
	if s.HighCount > 0 {
		cards = append(cards, StatCard{Key: CardHigh, Value: strconv.Itoa(s.HighCount), Label: f.pick("Высокие", "High"), Hint: "> " + high + " " + unit, Color: colorAmber})
	}
	cards = append(cards, StatCard{Key: CardCount, Value: strconv.Itoa(s.Count), Label: f.pick("Измерений", "Readings"), Hint: f.pick("всего", "total"), Color: colorNeutral})

	return StatCards{Cards: cards}
}

// ServerStatCards lays out the aggregate served by the API for the dashboard.
// A zero count yields no cards.
func (m *Mapper) ServerStatCards(s domain.GlucoseStats) []StatCard {
	if s.Count == 0 {
		return []StatCard{}
	}
	f := m.format
	return []StatCard{
		{Key: CardAverage, Value: f.Decimal(s.Average), Label: f.pick("Средний", "Average"), Hint: f.Unit(), Color: colorAverage},
		{Key: CardMin, Value: f.Decimal(s.Min), Label: f.pick("Минимум", "Minimum"), Hint: f.Unit(), Color: colorNeutral},
		{Key: CardMax, Value: f.Decimal(s.Max), Label: f.pick("Максимум", "Maximum"), Hint: f.Unit(), Color: colorNeutral},
		{Key: CardCount, Value: strconv.FormatInt(s.Count, 10), Label: f.pick("Измерений", "Readings"), Hint: f.pick("всего", "total"), Color: colorNeutral},
	}
}
