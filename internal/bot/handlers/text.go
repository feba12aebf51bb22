package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/keyboards"
	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/menus"
	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-webapp/internal/domain"
	apperrors "github.com/vladimiradmaev/diabetes-webapp/internal/errors"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
	"github.com/vladimiradmaev/diabetes-webapp/internal/services"
)

const (
	defaultTextHint   = "Пожалуйста, используйте меню для выбора действия или отправьте уровень сахара числом, например: 5.6"
	notUnderstoodText = "Не понял вас. Используйте /help для получения помощи."
)

// minTextLength is the shortest free text taken as a meal or a question
const minTextLength = 3

// Words that mark a message as a meal description. foodWords match whole
// words, foodStems match word beginnings.
var (
	foodWords = map[string]bool{
		"ел": true, "ела": true,
		"каша": true, "каши": true, "кашу": true, "кашей": true,
		"хлеб": true, "хлеба": true, "хлебом": true,
		"мясо": true, "мяса": true, "мясом": true,
		"рыба": true, "рыбу": true, "рыбы": true, "рыбой": true,
		"молоко": true, "молока": true, "молоком": true,
		"кофе": true, "чай": true, "чая": true, "чаю": true, "чаем": true,
	}
	foodStems = []string{"съел", "поел", "завтрак", "обед", "ужин", "перекус", "овощ", "фрукт"}
)

// TextHandler handles text messages
type TextHandler struct {
	api          Sender
	deps         Dependencies
	stateManager state.StateManager
}

// NewTextHandler creates a new text handler
func NewTextHandler(api Sender, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a text message. Outside a conversation a bare number is
// a glucose reading, a meal description goes to the food diary and
// anything else is answered as a question.
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	current := h.stateManager.GetUserState(user.TelegramID)
	if current == state.WaitingForGlucose {
		return h.handleGlucose(ctx, message, user)
	}
	if foodType, ok := state.FoodTypeOf(current); ok {
		return h.handleFood(ctx, message, user, foodType)
	}
	if looksNumeric(message.Text) {
		return h.handleGlucose(ctx, message, user)
	}

	text := strings.TrimSpace(message.Text)
	if utf8.RuneCountInString(text) < minTextLength {
		return h.send(message.Chat.ID, notUnderstoodText, nil)
	}
	if isFoodDescription(text) {
		return h.handleFood(ctx, message, user, domain.FoodTypeUnspecified)
	}
	return h.handleQuestion(ctx, message, user)
}

func (h *TextHandler) handleGlucose(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	chatID := message.Chat.ID

	value, err := services.ParseGlucoseValue(message.Text)
	if err != nil {
		return h.send(chatID, apperrors.UserMessage(err), keyboards.BackToMenu())
	}

	record, err := h.deps.GlucoseService.Add(ctx, user, value, "")
	if err != nil {
		logger.WithContext(ctx).Error("Failed to save glucose record", "value", value, "error", err)
		return h.send(chatID, apperrors.UserMessage(err), keyboards.BackToMenu())
	}
	h.stateManager.SetUserState(user.TelegramID, state.None)

	text := menus.SavedText(h.deps.Mapper, record)
	if h.aiEnabled() {
		insight := h.deps.InsightService.RecordInsight(ctx, user, record)
		if insight.Text != "" {
			text += "\n\n🤖 " + insight.Text
		}
	}
	return h.send(chatID, text, keyboards.MainMenu(h.deps.WebAppURL))
}

func (h *TextHandler) handleFood(ctx context.Context, message *tgbotapi.Message, user *domain.User, foodType domain.FoodType) error {
	chatID := message.Chat.ID
	if h.deps.FoodService == nil {
		return h.send(chatID, defaultTextHint, keyboards.MainMenu(h.deps.WebAppURL))
	}

	record, err := h.deps.FoodService.Add(ctx, user, domain.FoodInput{
		FoodName: strings.TrimSpace(message.Text),
		FoodType: foodType,
	})
	if err != nil {
		logger.WithContext(ctx).Error("Failed to save food record", "food_type", foodType, "error", err)
		return h.send(chatID, apperrors.UserMessage(err), keyboards.BackToMenu())
	}
	h.stateManager.SetUserState(user.TelegramID, state.None)

	text := fmt.Sprintf("✅ Записал в дневник питания: %s", record.FoodName)
	if h.aiEnabled() {
		insight := h.deps.InsightService.FoodInsight(ctx, user, record.FoodName)
		if insight.Text != "" {
			text += "\n\n🤖 " + insight.Text
		}
	}
	return h.send(chatID, text, keyboards.MainMenu(h.deps.WebAppURL))
}

// handleQuestion answers free text with the AI. Without a provider the
// user gets the usage hint.
func (h *TextHandler) handleQuestion(ctx context.Context, message *tgbotapi.Message, user *domain.User) error {
	if !h.aiEnabled() {
		return h.send(message.Chat.ID, defaultTextHint, keyboards.MainMenu(h.deps.WebAppURL))
	}
	answer := h.deps.InsightService.AnswerQuestion(ctx, user, strings.TrimSpace(message.Text))
	return h.send(message.Chat.ID, "🤖 "+answer.Text, keyboards.BackToMenu())
}

func (h *TextHandler) aiEnabled() bool {
	return h.deps.InsightService != nil && h.deps.InsightService.Configured()
}

func (h *TextHandler) send(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := h.api.Send(msg)
	return err
}

func looksNumeric(text string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", "."), 64)
	return err == nil
}

// isFoodDescription reports whether text reads like a meal. Questions are
// never meals.
func isFoodDescription(text string) bool {
	if strings.HasSuffix(text, "?") {
		return false
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, word := range words {
		if foodWords[word] {
			return true
		}
		for _, stem := range foodStems {
			if strings.HasPrefix(word, stem) {
				return true
			}
		}
	}
	return false
}
