// Package bot is the conversational front end: it walks a user through
// picking a day and a city and replies with the forecast and clothing advice.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/wardrobe-bot/internal/models"
	"github.com/bobby-s-dev/wardrobe-bot/internal/services"
	"github.com/bobby-s-dev/wardrobe-bot/internal/session"
)

const (
	greetingText        = "👋 Привет! Я помогу выбрать одежду по погоде.\nВыбери дату:"
	askCityText         = "Из какого ты города?"
	chooseDateFirstText = "Сначала выберите дату!"
	progressText        = "⏳ Запрашиваю прогноз погоды..."
	unavailableText     = "❌ Не удалось получить прогноз. Проверьте название города и попробуйте позже."
	internalErrorText   = "⚠️ Произошла ошибка при обработке запроса. Попробуйте позже."
)

// DateKeyboard is the layout of the day picker.
var DateKeyboard = [][]string{
	{"Сегодня", "Завтра"},
	{"Послезавтра"},
}

type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardDates
	KeyboardRemove
)

type Message struct {
	RequesterID int64
	ChatID      int64
	Text        string
}

type Reply struct {
	Text     string
	Keyboard Keyboard
	Markdown bool
}

type Sender interface {
	Send(ctx context.Context, chatID int64, reply Reply) error
}

type Recommender interface {
	Lookup(ctx context.Context, city string, offset models.DayOffset) (models.Recommendation, error)
}

type Handler struct {
	sessions *session.Store
	weather  Recommender
	sender   Sender
	logger   *zap.Logger
}

func NewHandler(sessions *session.Store, weather Recommender, sender Sender, logger *zap.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		weather:  weather,
		sender:   sender,
		logger:   logger,
	}
}

// HandleMessage processes one incoming chat message. The returned error is
// only about delivering replies; pipeline failures are answered in chat.
func (h *Handler) HandleMessage(ctx context.Context, msg Message) error {
	logger := h.logger.With(
		zap.String("exchange_id", uuid.NewString()),
		zap.Int64("requester", msg.RequesterID))

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		logger.Debug("Ignoring message without text")
		return nil
	}

	if isCommand(text, "start") || isCommand(text, "help") {
		return h.sender.Send(ctx, msg.ChatID, Reply{Text: greetingText, Keyboard: KeyboardDates})
	}

	if offset, ok := models.ParseDayOffset(text); ok {
		h.sessions.SetPendingOffset(msg.RequesterID, offset)
		logger.Info("Date selected", zap.Stringer("offset", offset))
		return h.sender.Send(ctx, msg.ChatID, Reply{Text: askCityText, Keyboard: KeyboardRemove})
	}

	// The pending choice is consumed here, before anything can fail, so a
	// failed attempt always sends the user back to picking a date.
	offset, ok := h.sessions.TakePendingOffset(msg.RequesterID)
	if !ok {
		return h.sender.Send(ctx, msg.ChatID, Reply{Text: chooseDateFirstText, Keyboard: KeyboardDates})
	}

	logger.Info("Forecast requested",
		zap.String("city", text),
		zap.Stringer("offset", offset))

	if err := h.sender.Send(ctx, msg.ChatID, Reply{Text: progressText}); err != nil {
		logger.Warn("Failed to send progress message", zap.Error(err))
	}

	return h.sender.Send(ctx, msg.ChatID, h.recommendation(ctx, logger, text, offset))
}

func (h *Handler) recommendation(ctx context.Context, logger *zap.Logger, city string, offset models.DayOffset) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while processing request",
				zap.Any("panic", r),
				zap.Stack("stack"))
			reply = Reply{Text: internalErrorText}
		}
	}()

	rec, err := h.weather.Lookup(ctx, city, offset)
	if err != nil {
		if errors.Is(err, services.ErrForecastUnavailable) {
			return Reply{Text: unavailableText}
		}
		logger.Error("Error processing request", zap.Error(err))
		return Reply{Text: internalErrorText}
	}

	return Reply{Text: Render(rec), Markdown: true}
}

// isCommand matches "/name", "/name@bot" and "/name payload".
func isCommand(text, name string) bool {
	if !strings.HasPrefix(text, "/") {
		return false
	}
	command := strings.Fields(text)[0][1:]
	command, _, _ = strings.Cut(command, "@")
	return strings.EqualFold(command, name)
}

func (k Keyboard) String() string {
	switch k {
	case KeyboardNone:
		return "none"
	case KeyboardDates:
		return "dates"
	case KeyboardRemove:
		return "remove"
	default:
		return fmt.Sprintf("Keyboard(%d)", int(k))
	}
}
