// Package presentation maps records and summaries to the view-models the
// mini-app and the bot render. Every function is pure: the same records,
// settings and clock give the same output.
package presentation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
)

const (
	LanguageRussian = "ru"
	LanguageEnglish = "en"
)

var ruMonthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var ruMonthsShort = [...]string{
	"янв.", "фев.", "мар.", "апр.", "мая", "июн.",
	"июл.", "авг.", "сент.", "окт.", "нояб.", "дек.",
}

// NormalizeLanguage maps a Telegram language code to a supported language.
// Anything that is not English renders in Russian.
func NormalizeLanguage(raw string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "en") {
		return LanguageEnglish
	}
	return LanguageRussian
}

// Formatter renders times and numbers for one language and time zone.
type Formatter struct {
	lang string
	loc  *time.Location
}

// NewFormatter creates a formatter. A nil location means UTC.
func NewFormatter(language string, loc *time.Location) Formatter {
	if loc == nil {
		loc = time.UTC
	}
	return Formatter{lang: NormalizeLanguage(language), loc: loc}
}

// Language returns the normalized language.
func (f Formatter) Language() string {
	return f.lang
}

// WithLanguage returns a copy of f for another language.
func (f Formatter) WithLanguage(language string) Formatter {
	f.lang = NormalizeLanguage(language)
	return f
}

func (f Formatter) pick(ru, en string) string {
	if f.lang == LanguageEnglish {
		return en
	}
	return ru
}

func (f Formatter) local(t time.Time) time.Time {
	if f.loc == nil {
		return t.UTC()
	}
	return t.In(f.loc)
}

// Short formats t as dd.MM HH:mm.
func (f Formatter) Short(t time.Time) string {
	return f.local(t).Format("02.01 15:04")
}

// Full formats t as dd MMMM yyyy, HH:mm with the month name spelled out.
func (f Formatter) Full(t time.Time) string {
	lt := f.local(t)
	month := lt.Month().String()
	if f.lang == LanguageRussian {
		month = ruMonthsGenitive[lt.Month()-1]
	}
	return fmt.Sprintf("%02d %s %d, %s", lt.Day(), month, lt.Year(), lt.Format("15:04"))
}

// DateTime formats t as dd.MM.yyyy HH:mm.
func (f Formatter) DateTime(t time.Time) string {
	return f.local(t).Format("02.01.2006 15:04")
}

// AxisTick formats a chart x-axis tick. Weekly and monthly views show the
// day, the quarterly view shows the month.
func (f Formatter) AxisTick(t time.Time, p glucose.Period) string {
	lt := f.local(t)
	if p == glucose.Period90Days {
		if f.lang == LanguageRussian {
			return ruMonthsShort[lt.Month()-1]
		}
		return lt.Format("Jan")
	}
	return lt.Format("02.01")
}

// Decimal formats v with one digit after the point.
func (f Formatter) Decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// Glucose formats a reading with its unit, keeping the value as entered.
func (f Formatter) Glucose(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + f.Unit()
}

// Unit is the glucose unit label.
func (f Formatter) Unit() string {
	return f.pick("ммоль/л", "mmol/L")
}

// PeriodLabel returns the display label of p.
func (f Formatter) PeriodLabel(p glucose.Period) string {
	if f.lang == LanguageEnglish {
		return fmt.Sprintf("%d days", p.Days())
	}
	return p.Label()
}
