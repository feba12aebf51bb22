package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
)

type Config struct {
	TelegramToken string
	WebAppURL     string
	BotEnabled    bool
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	AIDailyLimit  int
	Environment   string
	Timezone      string
	API           APIConfig
	Server        ServerConfig
	Session       SessionConfig
	DB            DBConfig
	Glucose       GlucoseConfig
	Identity      IdentityConfig
	Logger        LoggerConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ServerConfig struct {
	Host      string
	Port      string
	StaticDir string
}

// Session backends
const (
	SessionBackendMemory   = "memory"
	SessionBackendRedis    = "redis"
	SessionBackendPostgres = "postgres"
)

type SessionConfig struct {
	Backend   string
	TTL       time.Duration
	RedisHost string
	RedisPort string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type GlucoseConfig struct {
	Low  float64
	High float64
}

type IdentityConfig struct {
	InitDataMaxAge time.Duration
	// DevTelegramID enables a fixed identity when Telegram supplies none.
	// Honoured only in the development environment.
	DevTelegramID int64
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	var errs []error

	parseDuration := func(key, def string) time.Duration {
		d, err := time.ParseDuration(getEnvOrDefault(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}
	parseFloat := func(key, def string) float64 {
		f, err := strconv.ParseFloat(getEnvOrDefault(key, def), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return f
	}

	parseInt := func(key, def string) int {
		n, err := strconv.Atoi(getEnvOrDefault(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return n
	}

	parseBool := func(key, def string) bool {
		b, err := strconv.ParseBool(getEnvOrDefault(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return b
	}

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebAppURL:     os.Getenv("WEBAPP_URL"),
		BotEnabled:    parseBool("BOT_ENABLED", "true"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnvOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
		AIDailyLimit:  parseInt("AI_DAILY_LIMIT", "10"),
		Environment:   getEnvOrDefault("ENVIRONMENT", "production"),
		Timezone:      getEnvOrDefault("APP_TIMEZONE", "Europe/Moscow"),
		API: APIConfig{
			BaseURL: getEnvOrDefault("API_BASE_URL", "http://localhost:8080/api/v1"),
			Timeout: parseDuration("API_TIMEOUT", "15s"),
		},
		Server: ServerConfig{
			Host:      getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			Port:      getEnvOrDefault("SERVER_PORT", "8090"),
			StaticDir: os.Getenv("STATIC_DIR"),
		},
		Session: SessionConfig{
			Backend:   strings.ToLower(getEnvOrDefault("SESSION_BACKEND", SessionBackendMemory)),
			TTL:       parseDuration("SESSION_TTL", "24h"),
			RedisHost: getEnvOrDefault("REDIS_HOST", "localhost"),
			RedisPort: getEnvOrDefault("REDIS_PORT", "6379"),
		},
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "diabetes_webapp"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		Glucose: GlucoseConfig{
			Low:  parseFloat("GLUCOSE_LOW", "3.9"),
			High: parseFloat("GLUCOSE_HIGH", "7.8"),
		},
		Identity: IdentityConfig{
			InitDataMaxAge: parseDuration("INIT_DATA_MAX_AGE", "24h"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	if raw := os.Getenv("DEV_TELEGRAM_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("DEV_TELEGRAM_ID: %w", err))
		}
		cfg.Identity.DevTelegramID = id
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values for consistency
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("API_TIMEOUT must be positive"))
	}
	if c.TelegramToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required to validate Mini-App init data"))
	}
	if c.AIDailyLimit < 0 {
		errs = append(errs, fmt.Errorf("AI_DAILY_LIMIT must not be negative, got %d", c.AIDailyLimit))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.Session.TTL))
	}
	switch c.Session.Backend {
	case SessionBackendMemory, SessionBackendRedis, SessionBackendPostgres:
	default:
		errs = append(errs, fmt.Errorf("SESSION_BACKEND must be memory, redis or postgres, got %q", c.Session.Backend))
	}
	if c.Glucose.Low <= 0 || c.Glucose.High <= c.Glucose.Low {
		errs = append(errs, fmt.Errorf("glucose thresholds must satisfy 0 < GLUCOSE_LOW < GLUCOSE_HIGH, got %.1f/%.1f", c.Glucose.Low, c.Glucose.High))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE: %w", err))
	}
	if c.Identity.DevTelegramID != 0 && !c.IsDevelopment() {
		errs = append(errs, errors.New("DEV_TELEGRAM_ID is only allowed with ENVIRONMENT=development"))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the service runs in the development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Location returns the configured time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
