package glucose

import (
	"fmt"
	"time"
)

// Period is a named look-back window.
type Period string

const (
	Period7Days  Period = "7days"
	Period30Days Period = "30days"
	Period90Days Period = "90days"
)

// DefaultPeriod is used when the caller does not choose one.
const DefaultPeriod = Period7Days

var periodDays = map[Period]int{
	Period7Days:  7,
	Period30Days: 30,
	Period90Days: 90,
}

var periodLabels = map[Period]string{
	Period7Days:  "7 дней",
	Period30Days: "30 дней",
	Period90Days: "90 дней",
}

// Periods lists the supported windows in ascending order.
func Periods() []Period {
	return []Period{Period7Days, Period30Days, Period90Days}
}

// ParsePeriod validates a period name. An empty string yields DefaultPeriod.
func ParsePeriod(s string) (Period, error) {
	if s == "" {
		return DefaultPeriod, nil
	}
	p := Period(s)
	if _, ok := periodDays[p]; !ok {
		return "", fmt.Errorf("unknown period %q", s)
	}
	return p, nil
}

// Days returns the window length in days, or 0 for an unknown period.
func (p Period) Days() int {
	return periodDays[p]
}

// Label returns the display label of the period.
func (p Period) Label() string {
	return periodLabels[p]
}

// Since returns the inclusive lower bound of the window ending at now.
func (p Period) Since(now time.Time) time.Time {
	return now.Add(-time.Duration(p.Days()) * 24 * time.Hour)
}

// Timestamped is any record ordered by a single time field.
type Timestamped interface {
	Timestamp() time.Time
}

// Filter keeps the records whose timestamp is not before now minus the
// period. There is no upper bound, so future-dated records pass through.
// Input order is preserved.
func Filter[T Timestamped](records []T, p Period, now time.Time) []T {
	since := p.Since(now)
	out := make([]T, 0, len(records))
	for _, r := range records {
		if !r.Timestamp().Before(since) {
			out = append(out, r)
		}
	}
	return out
}
