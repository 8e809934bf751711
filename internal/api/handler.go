package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/wardrobe-bot/internal/models"
	"github.com/bobby-s-dev/wardrobe-bot/internal/services"
	"github.com/bobby-s-dev/wardrobe-bot/internal/session"
)

type Handler struct {
	weather   *services.WeatherService
	sessions  *session.Store
	logger    *zap.Logger
	startedAt time.Time
}

func NewHandler(weather *services.WeatherService, sessions *session.Store, logger *zap.Logger) *Handler {
	return &Handler{
		weather:   weather,
		sessions:  sessions,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// GetRecommendation handles GET /api/v1/recommendation
func (h *Handler) GetRecommendation(c *fiber.Ctx) error {
	city := c.Query("city")
	if city == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "City parameter is required",
		})
	}

	offset, ok := parseDay(c.Query("day", "today"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Day parameter must be one of today, tomorrow, day-after or 0-2",
		})
	}

	h.logger.Info("Recommendation requested over HTTP",
		zap.String("city", city),
		zap.Stringer("offset", offset))

	rec, err := h.weather.Lookup(c.UserContext(), city, offset)
	if err != nil {
		if errors.Is(err, services.ErrForecastUnavailable) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no forecast available",
			})
		}
		return err
	}

	return c.JSON(fiber.Map{
		"city":     rec.City,
		"day":      rec.Offset.String(),
		"snapshot": rec.Snapshot,
		"advice":   rec.Advice,
	})
}

// GetRules handles GET /api/v1/rules
func (h *Handler) GetRules(c *fiber.Ctx) error {
	return c.JSON(h.weather.Rules())
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":           "healthy",
		"timestamp":        time.Now(),
		"uptime":           time.Since(h.startedAt).String(),
		"pending_sessions": h.sessions.Len(),
		"stats":            h.weather.GetStats(),
	})
}

// GetMetrics handles GET /api/v1/metrics
func (h *Handler) GetMetrics(c *fiber.Ctx) error {
	metrics := h.weather.GetStats()
	metrics["pending_sessions"] = h.sessions.Len()

	return c.JSON(fiber.Map{
		"metrics":   metrics,
		"timestamp": time.Now(),
	})
}

func parseDay(value string) (models.DayOffset, bool) {
	if n, err := strconv.Atoi(value); err == nil {
		offset := models.DayOffset(n)
		return offset, offset.Valid()
	}
	return models.ParseDayOffset(value)
}
