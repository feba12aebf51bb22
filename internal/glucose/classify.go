// Package glucose holds the pure rules applied to glucose readings: range
// classification, period windows and summary statistics.
package glucose

// Band is the range classification of a glucose value.
type Band string

const (
	BandLow    Band = "low"
	BandNormal Band = "normal"
	BandHigh   Band = "high"
)

// Default thresholds in mmol/L.
const (
	DefaultLow  = 3.9
	DefaultHigh = 7.8
)

// Thresholds bound the normal band. Both bounds belong to the normal band.
type Thresholds struct {
	Low  float64
	High float64
}

// DefaultThresholds returns the standard 3.9-7.8 mmol/L range.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: DefaultLow, High: DefaultHigh}
}

// Classify determines the band for a glucose value.
func (t Thresholds) Classify(value float64) Band {
	if value < t.Low {
		return BandLow
	}
	if value > t.High {
		return BandHigh
	}
	return BandNormal
}

// Classify determines the band for a glucose value using the default thresholds.
func Classify(value float64) Band {
	return DefaultThresholds().Classify(value)
}
