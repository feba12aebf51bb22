package menus

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/keyboards"
	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
	"github.com/vladimiradmaev/diabetes-webapp/internal/presentation"
)

// Sender delivers messages to Telegram. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api Sender, chatID int64, firstName, webAppURL string) error {
	text := fmt.Sprintf(`Привет, %s! 👋

Я помогу контролировать уровень сахара в крови.

🩸 Отправьте число (например: 5.6), чтобы записать показание
📊 Смотрите статистику за 7, 30 или 90 дней
📱 Графики и дневник питания доступны в веб-приложении

⚠️ Это справочная информация, всегда консультируйтесь с врачом!`, firstName)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboards.MainMenu(webAppURL)
	_, err := api.Send(msg)
	return err
}

// StatsText renders the statistics of a period
func StatsText(f presentation.Formatter, p glucose.Period, s glucose.Summary) string {
	title := fmt.Sprintf("📊 Статистика за %s:", f.PeriodLabel(p))
	if s.Count == 0 {
		return title + "\n\n❌ Нет данных за выбранный период\n\nНачните записывать показания глюкозы!"
	}

	var b strings.Builder
	b.WriteString(title + "\n\n")
	unit := f.Unit()
	fmt.Fprintf(&b, "📈 Средний уровень: %s %s\n", f.Decimal(s.Average), unit)
	fmt.Fprintf(&b, "📉 Минимум: %s %s\n", f.Decimal(s.Min), unit)
	fmt.Fprintf(&b, "📊 Максимум: %s %s\n", f.Decimal(s.Max), unit)
	fmt.Fprintf(&b, "🔢 Всего измерений: %d\n", s.Count)
	fmt.Fprintf(&b, "🎯 В целевом диапазоне: %d%%\n", s.InRangePercent)
	if s.LowCount > 0 {
		fmt.Fprintf(&b, "⬇️ Низких: %d\n", s.LowCount)
	}
	if s.HighCount > 0 {
		fmt.Fprintf(&b, "⬆️ Высоких: %d\n", s.HighCount)
	}

	emoji, status := controlStatus(s.Average)
	fmt.Fprintf(&b, "\n%s %s\n\n💡 Для подробных графиков и трендов используйте веб-приложение", emoji, status)
	return b.String()
}

func controlStatus(average float64) (string, string) {
	switch {
	case average <= 5.5:
		return "✅", "Отличный контроль!"
	case average <= 7.0:
		return "⚠️", "Хороший контроль, но можно улучшить"
	default:
		return "❗", "Требуется внимание"
	}
}

// LastRecordText renders the most recent reading, or the empty state
func LastRecordText(m *presentation.Mapper, r *domain.GlucoseRecord) string {
	if r == nil {
		return "🩸 Сегодня измерений ещё не было.\n\nНажмите «Записать глюкозу» или просто отправьте число."
	}
	item := m.GlucoseItem(*r)
	text := fmt.Sprintf("🩸 Последнее измерение\n\n%s • %s\n🕒 %s", item.ValueLabel, item.Status, item.TimeLabel)
	if item.Notes != "" {
		text += "\n📝 " + item.Notes
	}
	return text
}

// SavedText confirms a stored reading with its band hint
func SavedText(m *presentation.Mapper, r *domain.GlucoseRecord) string {
	band := m.Thresholds().Classify(r.Value)
	return fmt.Sprintf("✅ Записал: %s\n%s", m.Formatter().Glucose(r.Value), m.Formatter().BandHint(band))
}
