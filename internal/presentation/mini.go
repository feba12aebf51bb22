package presentation

import (
	"sort"

	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
)

// MiniChartSize is the number of trailing records the mini chart shows.
const MiniChartSize = 7

// Trend is the direction of the mini chart line.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendFlat       Trend = "flat"
)

var trendColors = map[Trend]string{
	TrendIncreasing: "#ef4444",
	TrendDecreasing: "#10b981",
	TrendFlat:       "#6b7280",
}

// TrendColor returns the line colour of a trend.
func TrendColor(t Trend) string {
	return trendColors[t]
}

// MiniPoint is one point of the mini chart.
type MiniPoint struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// MiniChart is the small trend line shown on the dashboard.
type MiniChart struct {
	Points       []MiniPoint `json:"points"`
	Insufficient bool        `json:"insufficient"`
	Trend        Trend       `json:"trend,omitempty"`
	Color        string      `json:"color,omitempty"`
	Text         string      `json:"text,omitempty"`
}

// MiniChart takes the last seven records in the order given, then sorts them
// by time. Fewer than two points is reported as insufficient data.
func (m *Mapper) MiniChart(records []domain.GlucoseRecord) MiniChart {
	tail := records
	if len(tail) > MiniChartSize {
		tail = tail[len(tail)-MiniChartSize:]
	}
	sorted := make([]domain.GlucoseRecord, len(tail))
	copy(sorted, tail)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MeasuredAt.Before(sorted[j].MeasuredAt)
	})

	mini := MiniChart{Points: make([]MiniPoint, 0, len(sorted))}
	for _, r := range sorted {
		mini.Points = append(mini.Points, MiniPoint{Time: r.MeasuredAt.UnixMilli(), Value: r.Value})
	}

	if len(mini.Points) < 2 {
		mini.Insufficient = true
		mini.Text = m.format.pick("Недостаточно данных", "Not enough data")
		return mini
	}

	first, last := mini.Points[0].Value, mini.Points[len(mini.Points)-1].Value
	switch {
	case last > first:
		mini.Trend = TrendIncreasing
	case last < first:
		mini.Trend = TrendDecreasing
	default:
		mini.Trend = TrendFlat
	}
	mini.Color = TrendColor(mini.Trend)
	return mini
}
