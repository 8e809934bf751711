package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramSender delivers replies through the Bot API.
type TelegramSender struct {
	api *tgbotapi.BotAPI
}

func NewTelegramSender(api *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{api: api}
}

func (s *TelegramSender) Send(ctx context.Context, chatID int64, reply Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}

	switch reply.Keyboard {
	case KeyboardDates:
		msg.ReplyMarkup = dateKeyboardMarkup()
	case KeyboardRemove:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("sending message to chat %d: %w", chatID, err)
	}
	return nil
}

func dateKeyboardMarkup() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(DateKeyboard))
	for _, labels := range DateKeyboard {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}

	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

// Poller long-polls the Bot API and hands every message to the handler on
// its own goroutine.
type Poller struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	timeout int
	logger  *zap.Logger
	wg      sync.WaitGroup
}

func NewPoller(api *tgbotapi.BotAPI, handler *Handler, timeoutSeconds int, logger *zap.Logger) *Poller {
	return &Poller{
		api:     api,
		handler: handler,
		timeout: timeoutSeconds,
		logger:  logger,
	}
}

// Run blocks until ctx is canceled or the update channel closes, then waits
// for in-flight handlers.
func (p *Poller) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = p.timeout
	updates := p.api.GetUpdatesChan(u)

	p.logger.Info("Polling for updates",
		zap.String("bot", p.api.Self.UserName),
		zap.Int("timeout_seconds", p.timeout))

	defer p.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			p.logger.Info("Stopped polling for updates")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			msg, ok := messageFromUpdate(update)
			if !ok {
				continue
			}

			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				if err := p.handler.HandleMessage(ctx, msg); err != nil {
					p.logger.Error("Failed to answer message",
						zap.Int64("chat_id", msg.ChatID),
						zap.Error(err))
				}
			}()
		}
	}
}

func messageFromUpdate(update tgbotapi.Update) (Message, bool) {
	m := update.Message
	if m == nil || m.From == nil || m.Chat == nil {
		return Message{}, false
	}
	return Message{
		RequesterID: m.From.ID,
		ChatID:      m.Chat.ID,
		Text:        m.Text,
	}, true
}
