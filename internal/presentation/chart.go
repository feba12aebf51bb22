package presentation

import (
	"sort"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
)

// Mapper builds view-models with one set of thresholds and one formatter.
type Mapper struct {
	thresholds glucose.Thresholds
	format     Formatter
}

// NewMapper creates a mapper.
func NewMapper(thresholds glucose.Thresholds, format Formatter) *Mapper {
	return &Mapper{thresholds: thresholds, format: format}
}

// Thresholds returns the thresholds the mapper classifies with.
func (m *Mapper) Thresholds() glucose.Thresholds {
	return m.thresholds
}

// Formatter returns the mapper's formatter.
func (m *Mapper) Formatter() Formatter {
	return m.format
}

// ForLanguage returns a mapper that renders labels in another language.
func (m *Mapper) ForLanguage(language string) *Mapper {
	return &Mapper{thresholds: m.thresholds, format: m.format.WithLanguage(language)}
}

// ChartPoint is one reading on the detailed chart.
type ChartPoint struct {
	Time     int64        `json:"time"` // unix ms
	Value    float64      `json:"value"`
	Label    string       `json:"label"`
	FullDate string       `json:"full_date"`
	Notes    string       `json:"notes"`
	Band     glucose.Band `json:"band"`
	Color    string       `json:"color"`
	Hint     string       `json:"hint"`
}

// AxisTick is an x-axis label anchored at the first point it covers.
type AxisTick struct {
	Time  int64  `json:"time"`
	Label string `json:"label"`
}

// ReferenceLine is a dashed horizontal threshold line.
type ReferenceLine struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
	Color string  `json:"color"`
}

// Chart is the detailed glucose chart of a period.
type Chart struct {
	Period         glucose.Period  `json:"period"`
	PeriodLabel    string          `json:"period_label"`
	Points         []ChartPoint    `json:"points"`
	Ticks          []AxisTick      `json:"ticks"`
	ReferenceLines []ReferenceLine `json:"reference_lines"`
	Empty          bool            `json:"empty"`
	EmptyText      string          `json:"empty_text,omitempty"`
}

// Chart projects records onto chart points sorted by measurement time. The
// input slice is not reordered.
func (m *Mapper) Chart(records []domain.GlucoseRecord, p glucose.Period) Chart {
	sorted := make([]domain.GlucoseRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MeasuredAt.Before(sorted[j].MeasuredAt)
	})

	chart := Chart{
		Period:      p,
		PeriodLabel: m.format.PeriodLabel(p),
		Points:      make([]ChartPoint, 0, len(sorted)),
		Ticks:       []AxisTick{},
		ReferenceLines: []ReferenceLine{
			{Value: m.thresholds.Low, Label: m.format.BandStatus(glucose.BandLow), Color: ColorLow},
			{Value: m.thresholds.High, Label: m.format.BandStatus(glucose.BandHigh), Color: ColorHigh},
		},
	}

	lastTick := ""
	for _, r := range sorted {
		band := m.thresholds.Classify(r.Value)
		ms := r.MeasuredAt.UnixMilli()
		chart.Points = append(chart.Points, ChartPoint{
			Time:     ms,
			Value:    r.Value,
			Label:    m.format.Short(r.MeasuredAt),
			FullDate: m.format.Full(r.MeasuredAt),
			Notes:    r.Notes,
			Band:     band,
			Color:    BandColor(band),
			Hint:     m.format.BandHint(band),
		})

		if tick := m.format.AxisTick(r.MeasuredAt, p); tick != lastTick {
			chart.Ticks = append(chart.Ticks, AxisTick{Time: ms, Label: tick})
			lastTick = tick
		}
	}

	if len(chart.Points) == 0 {
		chart.Empty = true
		chart.EmptyText = m.format.pick("Нет данных для отображения", "No data to display")
	}
	return chart
}
