package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/menus"
	"github.com/vladimiradmaev/diabetes-webapp/internal/interfaces"
	"github.com/vladimiradmaev/diabetes-webapp/internal/presentation"
)

// Sender is the part of the Telegram API the handlers use
type Sender interface {
	menus.Sender
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	UserService    interfaces.UserServiceInterface
	GlucoseService interfaces.GlucoseServiceInterface
	FoodService    interfaces.FoodServiceInterface
	InsightService interfaces.InsightServiceInterface
	Mapper         *presentation.Mapper
	WebAppURL      string
}
