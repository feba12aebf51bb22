package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/keyboards"
	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/menus"
	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
)

const helpText = `📋 Как пользоваться ботом:

/start - Показать главное меню
/stats - Статистика глюкозы
/help - Показать это сообщение

🩸 Чтобы записать уровень сахара, нажмите «Записать глюкозу» или просто отправьте число, например: 5.6

🍽 Чтобы записать еду, нажмите «Записать еду» или опишите прием пищи, например: съел овсянку с ягодами

🤖 Любой другой вопрос о диабете отправьте текстом. Количество AI запросов в день ограничено.

📱 Подробные графики, дневник питания и настройки доступны в веб-приложении.`

// CommandHandler handles bot commands
type CommandHandler struct {
	api          Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api Sender, deps Dependencies, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	logger.WithContext(ctx).Info("Handling command", "command", message.Command())

	switch message.Command() {
	case "start":
		h.stateManager.SetUserState(user.TelegramID, state.None)
		return menus.SendMainMenu(h.api, message.Chat.ID, user.FirstName, h.deps.WebAppURL)
	case "help":
		return h.send(message.Chat.ID, helpText)
	case "stats":
		msg := tgbotapi.NewMessage(message.Chat.ID, "📊 Выберите период для статистики:")
		msg.ReplyMarkup = keyboards.StatsPeriods()
		_, err := h.api.Send(msg)
		return err
	default:
		return h.send(message.Chat.ID, "Неизвестная команда. Используйте /help для просмотра доступных команд.")
	}
}

func (h *CommandHandler) send(chatID int64, text string) error {
	_, err := h.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
