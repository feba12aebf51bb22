package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/vladimiradmaev/diabetes-webapp/internal/api"
	"github.com/vladimiradmaev/diabetes-webapp/internal/bot"
	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/handlers"
	"github.com/vladimiradmaev/diabetes-webapp/internal/bot/state"
	"github.com/vladimiradmaev/diabetes-webapp/internal/config"
	"github.com/vladimiradmaev/diabetes-webapp/internal/glucose"
	"github.com/vladimiradmaev/diabetes-webapp/internal/identity"
	"github.com/vladimiradmaev/diabetes-webapp/internal/logger"
	"github.com/vladimiradmaev/diabetes-webapp/internal/metrics"
	"github.com/vladimiradmaev/diabetes-webapp/internal/presentation"
	"github.com/vladimiradmaev/diabetes-webapp/internal/services"
	"github.com/vladimiradmaev/diabetes-webapp/internal/session"
	"github.com/vladimiradmaev/diabetes-webapp/internal/usage"
	"github.com/vladimiradmaev/diabetes-webapp/internal/webapp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	logger.Info("Starting diabetes mini-app service", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := session.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize session store", "backend", cfg.Session.Backend, "error", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close session store", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(registry)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	mapper := presentation.NewMapper(
		glucose.Thresholds{Low: cfg.Glucose.Low, High: cfg.Glucose.High},
		presentation.NewFormatter(presentation.LanguageRussian, cfg.Location()),
	)

	// Initialize services
	userService := services.NewUserService(client, store)
	glucoseService := services.NewGlucoseService(client, mapper)
	foodService := services.NewFoodService(client, mapper)
	dashboardService := services.NewDashboardService(client, mapper)
	generators, closers := insightGenerators(ctx, cfg)
	defer closeAll(closers)
	limiter := usage.NewLimiter(usage.ForStore(store), cfg.AIDailyLimit, cfg.Location())
	insightService := services.NewInsightService(generators...).
		WithLimiter(limiter).
		WithFormatter(mapper.Formatter())
	logger.Info("Services initialized", "insights", insightService.Configured(), "ai_daily_limit", cfg.AIDailyLimit)

	var devID int64
	if cfg.IsDevelopment() {
		devID = cfg.Identity.DevTelegramID
	}
	resolver := identity.NewResolver(identity.NewValidator(cfg.TelegramToken, cfg.Identity.InitDataMaxAge), devID)

	router := webapp.NewRouter(webapp.Deps{
		Resolver:  resolver,
		Users:     userService,
		Glucose:   glucoseService,
		Food:      foodService,
		Dashboard: dashboardService,
		Insights:  insightService,
		Mapper:    mapper,
		Gatherer:  registry,
		StaticDir: cfg.Server.StaticDir,
	})
	server := webapp.NewServer(cfg.Server.Host, cfg.Server.Port, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})
	g.Go(func() error {
		return session.RunJanitor(ctx, store, cfg.Session.TTL/4)
	})

	if cfg.BotEnabled {
		var stateManager state.StateManager
		if rs, ok := store.(*session.RedisStore); ok {
			stateManager = state.NewRedisManager(rs.Client(), state.DefaultStateTTL)
		}

		telegramBot, err := bot.NewBot(cfg.TelegramToken, handlers.Dependencies{
			UserService:    userService,
			GlucoseService: glucoseService,
			FoodService:    foodService,
			InsightService: insightService,
			Mapper:         mapper,
			WebAppURL:      cfg.WebAppURL,
		}, stateManager)
		if err != nil {
			logger.Fatal("Failed to create bot", "error", err)
		}
		g.Go(func() error {
			return telegramBot.Start(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Service stopped")
}

// insightGenerators returns the configured providers in fallback order and
// the clients that must be closed on shutdown
func insightGenerators(ctx context.Context, cfg *config.Config) ([]services.Generator, []io.Closer) {
	var (
		generators []services.Generator
		closers    []io.Closer
	)
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("Gemini is unavailable, skipping", "error", err)
		} else {
			generators = append(generators, gemini)
			closers = append(closers, gemini)
		}
	}
	if cfg.OpenAIAPIKey != "" {
		generators = append(generators, services.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModel))
	}
	return generators, closers
}

func closeAll(closers []io.Closer) {
	for _, c := range closers {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close client", "error", err)
		}
	}
}
