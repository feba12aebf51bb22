package keyboards

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data
const (
	CallbackStats7Days  = "stats_7days"
	CallbackStats30Days = "stats_30days"
	CallbackStats90Days = "stats_90days"
	CallbackLastRecord  = "last_record"
	CallbackAddGlucose  = "add_glucose"
	CallbackAddFood     = "add_food"
	CallbackMainMenu    = "main_menu"

	CallbackFoodBreakfast = "food_breakfast"
	CallbackFoodLunch     = "food_lunch"
	CallbackFoodDinner    = "food_dinner"
	CallbackFoodSnack     = "food_snack"
)

// Callback prefixes
const (
	StatsPrefix = "stats_"
	FoodPrefix  = "food_"
)

// MainMenu creates the main menu keyboard. The mini-app button is shown
// only when its URL is configured.
func MainMenu(webAppURL string) tgbotapi.InlineKeyboardMarkup {
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if webAppURL != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📱 Открыть веб-приложение", webAppURL),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🩸 Записать глюкозу", CallbackAddGlucose),
			tgbotapi.NewInlineKeyboardButtonData("🕒 Последнее измерение", CallbackLastRecord),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍽 Записать еду", CallbackAddFood),
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика за 7 дней", CallbackStats7Days),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// StatsPeriods creates the period selection keyboard
func StatsPeriods() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 7 дней", CallbackStats7Days),
			tgbotapi.NewInlineKeyboardButtonData("📅 30 дней", CallbackStats30Days),
			tgbotapi.NewInlineKeyboardButtonData("📅 90 дней", CallbackStats90Days),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", CallbackMainMenu),
		),
	)
}

// MealTypes creates the meal type selection keyboard
func MealTypes() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌅 Завтрак", CallbackFoodBreakfast),
			tgbotapi.NewInlineKeyboardButtonData("🌞 Обед", CallbackFoodLunch),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🌙 Ужин", CallbackFoodDinner),
			tgbotapi.NewInlineKeyboardButtonData("🍎 Перекус", CallbackFoodSnack),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", CallbackMainMenu),
		),
	)
}

// BackToMenu creates a keyboard with a single return button
func BackToMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", CallbackMainMenu),
		),
	)
}
