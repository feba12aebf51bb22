package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/keyboards"
	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/menus"
	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
)

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api Sender, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, user *domain.User) error {
	// Answer the callback query first
	if _, err := h.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.WithContext(ctx).Warn("Failed to answer callback query", "error", err)
	}
	if query.Message == nil || query.Message.Chat == nil {
		return nil
	}
	chatID := query.Message.Chat.ID

	switch {
	case strings.HasPrefix(query.Data, keyboards.StatsPrefix):
		return h.handleStats(ctx, chatID, user, strings.TrimPrefix(query.Data, keyboards.StatsPrefix))
	case query.Data == keyboards.CallbackLastRecord:
		return h.handleLastRecord(ctx, chatID, user)
	case query.Data == keyboards.CallbackAddGlucose:
		return h.handleAddGlucose(chatID, user)
	case query.Data == keyboards.CallbackAddFood:
		return h.send(chatID, "🍽 Выберите тип приема пищи:", keyboards.MealTypes())
	case strings.HasPrefix(query.Data, keyboards.FoodPrefix):
		return h.handleMealType(chatID, user, strings.TrimPrefix(query.Data, keyboards.FoodPrefix))
	case query.Data == keyboards.CallbackMainMenu:
		h.stateManager.SetUserState(user.TelegramID, state.None)
		return menus.SendMainMenu(h.api, chatID, user.FirstName, h.deps.WebAppURL)
	default:
		return h.send(chatID, "Неизвестное действие. Используйте /start для возврата в главное меню.", nil)
	}
}

func (h *CallbackHandler) handleStats(ctx context.Context, chatID int64, user *domain.User, suffix string) error {
	period, err := glucose.ParsePeriod(suffix)
	if err != nil {
		return h.send(chatID, "Неизвестный период статистики.", keyboards.StatsPeriods())
	}

	summary, err := h.deps.GlucoseService.Summary(ctx, user, period)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to load statistics", "period", period, "error", err)
		return h.send(chatID, apperrors.UserMessage(err), keyboards.BackToMenu())
	}

	text := menus.StatsText(h.deps.Mapper.Formatter(), period, summary)
	return h.send(chatID, text, keyboards.StatsPeriods())
}

func (h *CallbackHandler) handleLastRecord(ctx context.Context, chatID int64, user *domain.User) error {
	record, err := h.deps.GlucoseService.Latest(ctx, user)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to load latest record", "error", err)
		return h.send(chatID, apperrors.UserMessage(err), keyboards.BackToMenu())
	}
	return h.send(chatID, menus.LastRecordText(h.deps.Mapper, record), keyboards.BackToMenu())
}

func (h *CallbackHandler) handleAddGlucose(chatID int64, user *domain.User) error {
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForGlucose)
	return h.send(chatID, "🩸 Введите уровень сахара в крови (ммоль/л), например: 5.6", keyboards.BackToMenu())
}

func (h *CallbackHandler) handleMealType(chatID int64, user *domain.User, suffix string) error {
	foodType := domain.ParseFoodType(suffix)
	if foodType == domain.FoodTypeUnspecified {
		return h.send(chatID, "Неизвестный тип приема пищи.", keyboards.MealTypes())
	}
	h.stateManager.SetUserState(user.TelegramID, state.WaitingForFood(foodType))
	return h.send(chatID, fmt.Sprintf("🍽 Опишите ваш %s (например: овсянка с ягодами, 200г)", foodType), keyboards.BackToMenu())
}

func (h *CallbackHandler) send(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := h.api.Send(msg)
	return err
}
