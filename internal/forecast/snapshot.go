package forecast

import "github.com/bobby-s-dev/wardrobe-bot/internal/models"

// BuildSnapshot normalises a selected entry. Precipitation flags are set only
// for a strictly positive 3h volume.
func BuildSnapshot(entry models.ForecastEntry, target models.Date) models.WeatherSnapshot {
	return models.WeatherSnapshot{
		Date:        target.Format(),
		Temperature: entry.Temperature,
		FeelsLike:   entry.FeelsLike,
		Description: entry.Description,
		WindSpeed:   entry.WindSpeed,
		Humidity:    entry.Humidity,
		Rain:        positive(entry.Rain3h),
		Snow:        positive(entry.Snow3h),
	}
}

func positive(volume *float64) bool {
	return volume != nil && *volume > 0
}
