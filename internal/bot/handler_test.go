package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bobby-s-dev/wardrobe-bot/internal/models"
	"github.com/bobby-s-dev/wardrobe-bot/internal/services"
	"github.com/bobby-s-dev/wardrobe-bot/internal/session"
)

type recordingSender struct {
	mu      sync.Mutex
	replies []Reply
	err     error
}

func (s *recordingSender) Send(ctx context.Context, chatID int64, reply Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, reply)
	return s.err
}

func (s *recordingSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.replies))
	for i, r := range s.replies {
		out[i] = r.Text
	}
	return out
}

func (s *recordingSender) last() Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replies[len(s.replies)-1]
}

type mockRecommender struct {
	mock.Mock
}

func (m *mockRecommender) Lookup(ctx context.Context, city string, offset models.DayOffset) (models.Recommendation, error) {
	args := m.Called(ctx, city, offset)
	return args.Get(0).(models.Recommendation), args.Error(1)
}

const (
	user int64 = 42
	chat int64 = 4200
)

func newTestHandler(t *testing.T) (*Handler, *session.Store, *mockRecommender, *recordingSender) {
	t.Helper()
	store := session.NewStore()
	weather := new(mockRecommender)
	sender := &recordingSender{}
	return NewHandler(store, weather, sender, zaptest.NewLogger(t)), store, weather, sender
}

func send(t *testing.T, h *Handler, text string) {
	t.Helper()
	require.NoError(t, h.HandleMessage(context.Background(), Message{RequesterID: user, ChatID: chat, Text: text}))
}

func sampleRecommendation(city string, offset models.DayOffset) models.Recommendation {
	return models.Recommendation{
		City:   city,
		Offset: offset,
		Snapshot: models.WeatherSnapshot{
			Date:        "11.05.2024",
			Temperature: 22.04,
			FeelsLike:   21.96,
			Description: "ясно",
			WindSpeed:   15,
			Humidity:    40,
		},
		Advice: []string{
			"👕 Тепло: Футболка/рубашка, джинсы/шорты",
			"💨 Сильный ветер: Ветровка/непродуваемая одежда",
		},
	}
}

func TestHandleMessage_Start(t *testing.T) {
	for _, text := range []string{"/start", "/start@wardrobe_bot", "/help"} {
		t.Run(text, func(t *testing.T) {
			h, _, _, sender := newTestHandler(t)
			send(t, h, text)
			assert.Equal(t, Reply{Text: greetingText, Keyboard: KeyboardDates}, sender.last())
		})
	}
}

func TestHandleMessage_FullExchange(t *testing.T) {
	h, store, weather, sender := newTestHandler(t)
	weather.On("Lookup", mock.Anything, "Москва", models.Tomorrow).
		Return(sampleRecommendation("Москва", models.Tomorrow), nil).Once()

	send(t, h, "Завтра")
	assert.Equal(t, Reply{Text: askCityText, Keyboard: KeyboardRemove}, sender.last())
	assert.Equal(t, 1, store.Len())

	send(t, h, "Москва")

	assert.Equal(t, []string{askCityText, progressText, Render(sampleRecommendation("Москва", models.Tomorrow))}, sender.texts())
	assert.True(t, sender.last().Markdown)
	assert.Equal(t, 0, store.Len())
	weather.AssertExpectations(t)
}

func TestHandleMessage_CityWithoutDate(t *testing.T) {
	h, _, weather, sender := newTestHandler(t)

	send(t, h, "Москва")

	assert.Equal(t, []string{chooseDateFirstText}, sender.texts())
	weather.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleMessage_LaterDateWins(t *testing.T) {
	h, _, weather, _ := newTestHandler(t)
	weather.On("Lookup", mock.Anything, "Kazan", models.Today).
		Return(sampleRecommendation("Kazan", models.Today), nil).Once()

	send(t, h, "Послезавтра")
	send(t, h, "сегодня")
	send(t, h, "Kazan")

	weather.AssertExpectations(t)
}

func TestHandleMessage_ForecastUnavailable(t *testing.T) {
	h, store, weather, sender := newTestHandler(t)
	weather.On("Lookup", mock.Anything, "Atlantis", models.Today).
		Return(models.Recommendation{}, fmt.Errorf("%w: city not found", services.ErrForecastUnavailable))

	send(t, h, "Сегодня")
	send(t, h, "Atlantis")

	assert.Equal(t, Reply{Text: unavailableText}, sender.last())
	assert.Equal(t, 0, store.Len())

	// The date has to be chosen again.
	send(t, h, "Atlantis")
	assert.Equal(t, chooseDateFirstText, sender.last().Text)
	weather.AssertNumberOfCalls(t, "Lookup", 1)
}

func TestHandleMessage_UnexpectedError(t *testing.T) {
	h, _, weather, sender := newTestHandler(t)
	weather.On("Lookup", mock.Anything, "Oslo", models.Today).
		Return(models.Recommendation{}, errors.New("boom"))

	send(t, h, "today")
	send(t, h, "Oslo")

	assert.Equal(t, Reply{Text: internalErrorText}, sender.last())
}

func TestHandleMessage_PanicIsRecovered(t *testing.T) {
	h, store, weather, sender := newTestHandler(t)
	weather.On("Lookup", mock.Anything, "Oslo", models.Today).
		Panic("nil map")

	send(t, h, "today")
	send(t, h, "Oslo")

	assert.Equal(t, Reply{Text: internalErrorText}, sender.last())
	assert.Equal(t, 0, store.Len())
}

func TestHandleMessage_IgnoresEmptyText(t *testing.T) {
	h, _, _, sender := newTestHandler(t)
	send(t, h, "   ")
	assert.Empty(t, sender.texts())
}

func TestHandleMessage_SendErrorIsReturned(t *testing.T) {
	h, _, _, sender := newTestHandler(t)
	sender.err = errors.New("network down")

	err := h.HandleMessage(context.Background(), Message{RequesterID: user, ChatID: chat, Text: "/start"})
	assert.EqualError(t, err, "network down")
}

func TestHandleMessage_RequestersAreIndependent(t *testing.T) {
	h, _, weather, sender := newTestHandler(t)
	weather.On("Lookup", mock.Anything, "Perm", models.Tomorrow).
		Return(sampleRecommendation("Perm", models.Tomorrow), nil).Once()

	require.NoError(t, h.HandleMessage(context.Background(), Message{RequesterID: 1, ChatID: 1, Text: "Завтра"}))
	require.NoError(t, h.HandleMessage(context.Background(), Message{RequesterID: 2, ChatID: 2, Text: "Perm"}))
	assert.Equal(t, chooseDateFirstText, sender.last().Text)

	require.NoError(t, h.HandleMessage(context.Background(), Message{RequesterID: 1, ChatID: 1, Text: "Perm"}))
	weather.AssertExpectations(t)
}

func TestIsCommand(t *testing.T) {
	assert.True(t, isCommand("/start", "start"))
	assert.True(t, isCommand("/START@some_bot", "start"))
	assert.True(t, isCommand("/start deep-link", "start"))
	assert.False(t, isCommand("start", "start"))
	assert.False(t, isCommand("/started", "start"))
}
