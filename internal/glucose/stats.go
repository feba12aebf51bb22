package glucose

import (
	"math"
)

// Summary is the aggregate of a set of glucose readings. It is derived on
// every request and never stored.
type Summary struct {
	Average        float64 `json:"average"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Count          int     `json:"count"`
	InRangeCount   int     `json:"in_range_count"`
	InRangePercent int     `json:"in_range_percent"`
	LowCount       int     `json:"low_count"`
	HighCount      int     `json:"high_count"`
}

// Summarize aggregates values against the given thresholds. An empty input
// yields the zero Summary.
func (t Thresholds) Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	s := Summary{
		Count: len(values),
		Min:   values[0],
		Max:   values[0],
	}
	var sum float64
	for _, v := range values {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		switch t.Classify(v) {
		case BandLow:
			s.LowCount++
		case BandHigh:
			s.HighCount++
		default:
			s.InRangeCount++
		}
	}

	s.Average = sum / float64(s.Count)
	s.InRangePercent = int(math.Round(float64(s.InRangeCount) / float64(s.Count) * 100))
	return s
}

// Summarize aggregates values using the default thresholds.
func Summarize(values []float64) Summary {
	return DefaultThresholds().Summarize(values)
}

// Valuer is any record carrying a glucose value.
type Valuer interface {
	GlucoseValue() float64
}

// Values extracts the glucose values of records in order.
func Values[T Valuer](records []T) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.GlucoseValue()
	}
	return out
}
