package presentation

import (
	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
)

// Dashboard is the home screen of the mini-app.
type Dashboard struct {
	Greeting   string       `json:"greeting"`
	Subtitle   string       `json:"subtitle"`
	Recent     *GlucoseItem `json:"recent,omitempty"`
	RecentText string       `json:"recent_text,omitempty"`
	StatsTitle string       `json:"stats_title"`
	Stats      []StatCard   `json:"stats"`
}

// Dashboard lays out the greeting, the latest reading and the weekly stats.
// A nil recent record yields the empty-state text instead.
func (m *Mapper) Dashboard(user *domain.User, stats domain.GlucoseStats, recent *domain.GlucoseRecord) Dashboard {
	f := m.format
	d := Dashboard{
		Greeting:   f.pick("Привет, ", "Hi, ") + user.FirstName + "! 👋",
		Subtitle:   f.pick("Контроль диабета", "Diabetes control"),
		StatsTitle: f.pick("Статистика за 7 дней", "Last 7 days"),
		Stats:      m.ServerStatCards(stats),
	}
	if recent != nil {
		item := m.GlucoseItem(*recent)
		d.Recent = &item
	} else {
		d.RecentText = f.pick("Сегодня измерений ещё не было", "No readings today yet")
	}
	return d
}
