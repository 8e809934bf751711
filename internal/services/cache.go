package services

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/wardrobe-bot/internal/models"
)

type CacheItem struct {
	Entries   []models.ForecastEntry
	ExpiresAt time.Time
}

// WeatherCache holds raw forecast lists per city so repeated questions about
// the same city don't spend provider quota. Expired items are removed lazily
// on read and in bulk by Purge.
type WeatherCache struct {
	mu              sync.RWMutex
	forecasts       map[string]CacheItem
	logger          *zap.Logger
	defaultDuration time.Duration
	maxSize         int
	now             func() time.Time
	hits            int
	misses          int
}

func NewWeatherCache(defaultDuration time.Duration, maxSize int, logger *zap.Logger) *WeatherCache {
	return &WeatherCache{
		forecasts:       make(map[string]CacheItem),
		logger:          logger,
		defaultDuration: defaultDuration,
		maxSize:         maxSize,
		now:             time.Now,
	}
}

func cacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

func (c *WeatherCache) SetForecast(city string, entries []models.ForecastEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(city)

	// Evict if cache is too large
	if _, exists := c.forecasts[key]; !exists && c.maxSize > 0 && len(c.forecasts) >= c.maxSize {
		c.evictOldest()
	}

	expiresAt := c.now().Add(c.defaultDuration)
	c.forecasts[key] = CacheItem{
		Entries:   entries,
		ExpiresAt: expiresAt,
	}

	c.logger.Debug("Forecast cached",
		zap.String("city", key),
		zap.Int("entries", len(entries)),
		zap.Time("expires_at", expiresAt))
}

func (c *WeatherCache) GetForecast(city string) ([]models.ForecastEntry, bool) {
	key := cacheKey(city)

	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.forecasts[key]
	if !exists {
		c.misses++
		return nil, false
	}

	if c.now().After(item.ExpiresAt) {
		delete(c.forecasts, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return item.Entries, true
}

func (c *WeatherCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.forecasts {
		if oldestKey == "" || item.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.ExpiresAt
		}
	}

	if oldestKey != "" {
		delete(c.forecasts, oldestKey)
		c.logger.Debug("Evicted oldest forecast from cache",
			zap.String("city", oldestKey))
	}
}

// Purge drops every expired item and returns how many were removed.
func (c *WeatherCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expiredCount := 0

	for city, item := range c.forecasts {
		if now.After(item.ExpiresAt) {
			delete(c.forecasts, city)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.Debug("Cleaned expired cache items",
			zap.Int("count", expiredCount))
	}

	return expiredCount
}

func (c *WeatherCache) GetStats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"forecast_items":   len(c.forecasts),
		"hits":             c.hits,
		"misses":           c.misses,
		"max_size":         c.maxSize,
		"default_duration": c.defaultDuration.String(),
	}
}
