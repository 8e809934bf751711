package api

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

type ServerSettings struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp builds the operations HTTP app with its routes installed.
func NewApp(settings ServerSettings, handler *Handler, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "wardrobe-bot",
		ReadTimeout:           settings.ReadTimeout,
		WriteTimeout:          settings.WriteTimeout,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          errorHandler(log),
		DisableStartupMessage: true,
	})
	SetupRoutes(app, handler)
	return app
}

func SetupRoutes(app *fiber.App, handler *Handler) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	api := app.Group("/api/v1")

	api.Get("/health", handler.GetHealth)
	api.Get("/metrics", handler.GetMetrics)
	api.Get("/rules", handler.GetRules)
	api.Get("/recommendation", handler.GetRecommendation)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log.Error("HTTP error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))

		code, message := fiber.StatusInternalServerError, "internal error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code, message = fe.Code, fe.Message
		}

		return c.Status(code).JSON(fiber.Map{
			"error":   message,
			"success": false,
		})
	}
}
