package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/vladimiradmaev/diabetes-webapp/internal/config"
)

func main() {
	fmt.Println("🔍 Проверка конфигурации...")

	// Загружаем .env файл если есть
	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  .env файл не найден: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Ошибка валидации конфигурации:\n%v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Конфигурация валидна!")
	fmt.Printf("📋 Детали конфигурации:\n")
	fmt.Printf("  - Environment: %s\n", cfg.Environment)
	fmt.Printf("  - Telegram Token: %s\n", maskToken(cfg.TelegramToken))
	fmt.Printf("  - Bot Enabled: %t\n", cfg.BotEnabled)
	fmt.Printf("  - Web App URL: %s\n", orUnset(cfg.WebAppURL))
	fmt.Printf("  - API Base URL: %s (timeout %s)\n", cfg.API.BaseURL, cfg.API.Timeout)
	fmt.Printf("  - Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("  - Static Dir: %s\n", orUnset(cfg.Server.StaticDir))
	fmt.Printf("  - Session Backend: %s (ttl %s)\n", cfg.Session.Backend, cfg.Session.TTL)
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		fmt.Printf("  - Redis: %s:%s\n", cfg.Session.RedisHost, cfg.Session.RedisPort)
	case config.SessionBackendPostgres:
		fmt.Printf("  - DB: %s@%s:%s/%s\n", cfg.DB.User, cfg.DB.Host, cfg.DB.Port, cfg.DB.DBName)
	}
	fmt.Printf("  - Glucose Range: %.1f-%.1f ммоль/л\n", cfg.Glucose.Low, cfg.Glucose.High)
	fmt.Printf("  - Timezone: %s\n", cfg.Timezone)
	fmt.Printf("  - Gemini API Key: %s (%s)\n", maskToken(cfg.GeminiAPIKey), cfg.GeminiModel)
	fmt.Printf("  - OpenAI API Key: %s (%s)\n", maskToken(cfg.OpenAIAPIKey), cfg.OpenAIModel)
	fmt.Printf("  - AI Daily Limit: %d\n", cfg.AIDailyLimit)
	if cfg.Identity.DevTelegramID != 0 {
		fmt.Printf("  - Dev Telegram ID: %d\n", cfg.Identity.DevTelegramID)
	}
	fmt.Printf("  - Log Level: %v\n", cfg.Logger.Level)
	fmt.Printf("  - Log Output: %s\n", cfg.Logger.OutputPath)
	fmt.Printf("  - Log Format: %s\n", cfg.Logger.Format)
}

func maskToken(token string) string {
	if token == "" {
		return "<не установлен>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func orUnset(s string) string {
	if s == "" {
		return "<не установлен>"
	}
	return s
}
