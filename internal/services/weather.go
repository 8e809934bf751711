package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/bobby-s-dev/wardrobe-bot/internal/forecast"
	"github.com/bobby-s-dev/wardrobe-bot/internal/models"
	"github.com/bobby-s-dev/wardrobe-bot/internal/recommend"
)

// ErrForecastUnavailable covers every reason a recommendation could not be
// produced: transport failures, provider errors, bad payloads and days the
// forecast does not reach.
var ErrForecastUnavailable = errors.New("forecast unavailable")

type ForecastClient interface {
	GetForecast(ctx context.Context, city string) ([]models.ForecastEntry, error)
}

type WeatherService struct {
	client   ForecastClient
	cache    *WeatherCache
	rules    recommend.Rules
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
	group    singleflight.Group

	mu         sync.Mutex
	lookups    int
	failures   int
	lastLookup time.Time
}

type Option func(*WeatherService)

// WithClock overrides the time source used to resolve "today".
func WithClock(now func() time.Time) Option {
	return func(s *WeatherService) {
		s.now = now
	}
}

// WithCache enables caching of raw forecast lists. A nil cache disables it.
func WithCache(cache *WeatherCache) Option {
	return func(s *WeatherService) {
		s.cache = cache
	}
}

func NewWeatherService(client ForecastClient, rules recommend.Rules, location *time.Location, logger *zap.Logger, opts ...Option) *WeatherService {
	if location == nil {
		location = time.Local
	}

	s := &WeatherService{
		client:   client,
		rules:    rules,
		location: location,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Lookup fetches the forecast for city, picks the slot for the requested day
// and evaluates the rules against it.
func (s *WeatherService) Lookup(ctx context.Context, city string, offset models.DayOffset) (models.Recommendation, error) {
	if !offset.Valid() {
		return models.Recommendation{}, fmt.Errorf("invalid day offset %d", int(offset))
	}

	s.mu.Lock()
	s.lookups++
	s.lastLookup = s.now()
	s.mu.Unlock()

	target := models.TargetDate(s.now().In(s.location), offset)

	entries, err := s.fetch(ctx, city)
	if err != nil {
		s.logger.Error("Failed to fetch forecast",
			zap.String("city", city),
			zap.Error(err))
		return models.Recommendation{}, s.fail(err)
	}

	entry, err := forecast.Select(entries, target, s.location)
	if err != nil {
		s.logger.Error("No forecast for date",
			zap.String("city", city),
			zap.Stringer("date", target),
			zap.Int("entries", len(entries)))
		return models.Recommendation{}, s.fail(err)
	}

	snapshot := forecast.BuildSnapshot(entry, target)
	if _, ok := s.rules.BandFor(snapshot.Temperature); !ok {
		s.logger.Warn("Temperature outside recommendation table",
			zap.String("city", city),
			zap.Float64("temperature", snapshot.Temperature))
	}

	return models.Recommendation{
		City:     city,
		Offset:   offset,
		Snapshot: snapshot,
		Advice:   s.rules.Recommend(snapshot),
	}, nil
}

func (s *WeatherService) fail(err error) error {
	s.mu.Lock()
	s.failures++
	s.mu.Unlock()
	return fmt.Errorf("%w: %w", ErrForecastUnavailable, err)
}

func (s *WeatherService) fetch(ctx context.Context, city string) ([]models.ForecastEntry, error) {
	if s.cache != nil {
		if entries, ok := s.cache.GetForecast(city); ok {
			s.logger.Debug("Cache hit for forecast", zap.String("city", city))
			return entries, nil
		}
	}

	// Concurrent requests for the same city share one upstream call.
	result, err, shared := s.group.Do(cacheKey(city), func() (interface{}, error) {
		entries, err := s.client.GetForecast(ctx, city)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.SetForecast(city, entries)
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("Shared in-flight forecast fetch", zap.String("city", city))
	}

	return result.([]models.ForecastEntry), nil
}

func (s *WeatherService) Rules() recommend.Rules {
	return s.rules
}

func (s *WeatherService) Cache() *WeatherCache {
	return s.cache
}

func (s *WeatherService) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := map[string]interface{}{
		"lookups":     s.lookups,
		"failures":    s.failures,
		"last_lookup": s.lastLookup,
		"timezone":    s.location.String(),
	}
	if s.cache != nil {
		stats["cache_stats"] = s.cache.GetStats()
	}
	return stats
}
