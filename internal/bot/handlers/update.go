package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/state"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/identity"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
	"github.com/vladimiradmaev/diabetes-webapp/internal/metrics"
)

const restartHint = "Не удалось получить данные пользователя из Telegram. Перезапустите бота командой /start"

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	api             Sender
	deps            Dependencies
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(api Sender, deps Dependencies, stateManager state.StateManager) *UpdateHandler {
	return &UpdateHandler{
		api:             api,
		deps:            deps,
		callbackHandler: NewCallbackHandler(api, deps, stateManager),
		commandHandler:  NewCommandHandler(api, deps, stateManager),
		textHandler:     NewTextHandler(api, deps, stateManager),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	var (
		from   *tgbotapi.User
		chatID int64
		kind   string
	)
	switch {
	case update.CallbackQuery != nil:
		kind = "callback"
		from = update.CallbackQuery.From
		if update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
	case update.Message != nil:
		kind = "text"
		if update.Message.IsCommand() {
			kind = "command"
		}
		from = update.Message.From
		if update.Message.Chat != nil {
			chatID = update.Message.Chat.ID
		}
	default:
		return nil
	}
	metrics.BotUpdatesTotal.WithLabelValues(kind).Inc()

	if chatID == 0 {
		return nil
	}
	if from == nil {
		return h.send(chatID, restartHint)
	}

	id := identity.Identity{
		TelegramID:   from.ID,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		Username:     from.UserName,
		LanguageCode: from.LanguageCode,
	}
	ctx = identity.NewContext(ctx, id)
	ctx = logger.IntoContext(ctx, logger.WithContext(ctx).With("telegram_id", id.TelegramID, "update", kind))

	user, err := h.deps.UserService.Current(ctx)
	if err != nil {
		text := apperrors.UserMessage(err)
		if apperrors.IsType(err, apperrors.ErrorTypeIdentity) {
			text = restartHint
		}
		if sendErr := h.send(chatID, text); sendErr != nil {
			logger.WithContext(ctx).Warn("Failed to send error message", "error", sendErr)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if update.CallbackQuery != nil {
		return h.callbackHandler.Handle(ctx, update.CallbackQuery, user)
	}
	if update.Message.IsCommand() {
		return h.commandHandler.Handle(ctx, update.Message, user)
	}
	if update.Message.Text != "" {
		return h.textHandler.Handle(ctx, update.Message, user)
	}
	return nil
}

func (h *UpdateHandler) send(chatID int64, text string) error {
	_, err := h.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
