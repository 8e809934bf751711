// Package forecast picks the forecast slot that represents a day and turns it
// into a snapshot the recommendation rules can work with.
package forecast

import (
	"errors"
	"time"

	"github.com/bobby-s-dev/wardrobe-bot/internal/models"
)

// ErrNoForecast means the provider answered but had no slot on the requested day.
var ErrNoForecast = errors.New("no forecast for date")

const noon = 12

// Select returns the entry on target (as seen in loc) whose hour is closest to
// noon. Equally distant entries resolve to the one listed first.
func Select(entries []models.ForecastEntry, target models.Date, loc *time.Location) (models.ForecastEntry, error) {
	if loc == nil {
		loc = time.Local
	}

	best := -1
	bestDistance := 0
	for i, entry := range entries {
		local := entry.Timestamp.In(loc)
		if models.DateOf(local) != target {
			continue
		}

		distance := local.Hour() - noon
		if distance < 0 {
			distance = -distance
		}
		if best == -1 || distance < bestDistance {
			best = i
			bestDistance = distance
		}
	}

	if best == -1 {
		return models.ForecastEntry{}, ErrNoForecast
	}
	return entries[best], nil
}
