package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/wardrobe-bot/internal/api"
	"github.com/bobby-s-dev/wardrobe-bot/internal/bot"
	"github.com/bobby-s-dev/wardrobe-bot/internal/config"
	"github.com/bobby-s-dev/wardrobe-bot/internal/recommend"
	"github.com/bobby-s-dev/wardrobe-bot/internal/scheduler"
	"github.com/bobby-s-dev/wardrobe-bot/internal/services"
	"github.com/bobby-s-dev/wardrobe-bot/internal/session"
	"github.com/bobby-s-dev/wardrobe-bot/pkg/client"
)

func main() {
	logConfig := zap.NewProductionConfig()
	logger, err := logConfig.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	zap.ReplaceGlobals(logger)
	logger.Info("Starting wardrobe bot")

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logConfig.Level.SetLevel(cfg.LogLevel)

	rules := recommend.DefaultRules()
	if cfg.RulesFile != "" {
		rules, err = recommend.LoadRules(cfg.RulesFile)
		if err != nil {
			logger.Fatal("Failed to load recommendation rules",
				zap.String("path", cfg.RulesFile),
				zap.Error(err))
		}
		logger.Info("Loaded recommendation rules", zap.String("path", cfg.RulesFile))
	}

	weatherClient := client.NewOpenWeatherClient(
		client.OpenWeatherSettings{
			URL:    cfg.Weather.URL,
			APIKey: cfg.Weather.APIKey.Unmask(),
			Units:  cfg.Weather.Units,
			Lang:   cfg.Weather.Lang,
			Count:  cfg.Weather.Count,
		},
		client.ClientConfig{
			Timeout:        cfg.Weather.Timeout,
			MaxRetries:     cfg.Retry.MaxRetries,
			RetryDelay:     cfg.Retry.Delay,
			Multiplier:     cfg.Retry.Multiplier,
			Threshold:      cfg.CircuitBreaker.Threshold,
			BreakerTimeout: cfg.CircuitBreaker.Timeout,
			RateLimit:      cfg.Weather.RateLimit,
			RateBurst:      cfg.Weather.RateBurst,
		},
		logger,
	)

	var opts []services.Option
	var cache *services.WeatherCache
	if cfg.Cache.Enabled() {
		cache = services.NewWeatherCache(cfg.Cache.Duration, cfg.Cache.MaxSize, logger)
		opts = append(opts, services.WithCache(cache))
	}
	weatherService := services.NewWeatherService(weatherClient, rules, cfg.Timezone.Location(), logger, opts...)

	sessions := session.NewStore()

	housekeeping := scheduler.NewScheduler(cache, sessions, cfg.Cache.PurgeSchedule, logger)
	if err := housekeeping.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	telegram, err := tgbotapi.NewBotAPI(cfg.Telegram.Token.Unmask())
	if err != nil {
		logger.Fatal("Failed to connect to Telegram", zap.Error(err))
	}
	telegram.Debug = cfg.Telegram.Debug
	logger.Info("Authorized on Telegram", zap.String("bot", telegram.Self.UserName))

	handler := bot.NewHandler(sessions, weatherService, bot.NewTelegramSender(telegram), logger)
	poller := bot.NewPoller(telegram, handler, cfg.Telegram.PollTimeout, logger)

	var app *fiber.App
	if cfg.Server.Enabled {
		app = api.NewApp(api.ServerSettings{
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}, api.NewHandler(weatherService, sessions, logger), logger)

		go func() {
			addr := ":" + cfg.Server.Port
			logger.Info("Starting server", zap.String("address", addr))

			if err := app.Listen(addr); err != nil {
				logger.Fatal("Failed to start server", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller.Run(ctx)

	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	housekeeping.Stop()

	if app != nil {
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", zap.Error(err))
		}
	}

	sessions.Close()
	logger.Info("Bot stopped")
}
