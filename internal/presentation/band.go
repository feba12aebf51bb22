package presentation

import (
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
)

// Chart dot colours per band.
const (
	ColorLow    = "#f87171"
	ColorNormal = "#34d399"
	ColorHigh   = "#fb923c"
)

var bandColors = map[glucose.Band]string{
	glucose.BandLow:    ColorLow,
	glucose.BandNormal: ColorNormal,
	glucose.BandHigh:   ColorHigh,
}

// BandColor returns the dot colour of a band.
func BandColor(b glucose.Band) string {
	return bandColors[b]
}

// BandClass returns the css class used by the mini-app for a band.
func BandClass(b glucose.Band) string {
	return "glucose-" + string(b)
}

// BandStatus returns the short status text of a band.
func (f Formatter) BandStatus(b glucose.Band) string {
	switch b {
	case glucose.BandLow:
		return f.pick("Низкий", "Low")
	case glucose.BandHigh:
		return f.pick("Высокий", "High")
	default:
		return f.pick("Нормальный", "Normal")
	}
}

// BandHint returns the tooltip line shown under a chart point.
func (f Formatter) BandHint(b glucose.Band) string {
	switch b {
	case glucose.BandLow:
		return f.pick("⚠️ Низкий уровень глюкозы", "⚠️ Low glucose level")
	case glucose.BandHigh:
		return f.pick("⚠️ Высокий уровень глюкозы", "⚠️ High glucose level")
	default:
		return f.pick("✅ Нормальный уровень", "✅ Normal level")
	}
}
