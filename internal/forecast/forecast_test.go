package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/wardrobe-bot/internal/models"
)

func entryAt(year int, month time.Month, day, hour int, temp float64) models.ForecastEntry {
	return models.ForecastEntry{
		Timestamp:   time.Date(year, month, day, hour, 0, 0, 0, time.UTC),
		Temperature: temp,
	}
}

func ptr(v float64) *float64 { return &v }

func TestSelect_PicksClosestToNoon(t *testing.T) {
	target := models.Date{Year: 2024, Month: time.May, Day: 10}
	entries := []models.ForecastEntry{
		entryAt(2024, time.May, 10, 9, 5),
		entryAt(2024, time.May, 10, 13, 6),
	}

	got, err := Select(entries, target, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 6.0, got.Temperature)
}

func TestSelect_TieGoesToFirstInList(t *testing.T) {
	target := models.Date{Year: 2024, Month: time.May, Day: 10}
	entries := []models.ForecastEntry{
		entryAt(2024, time.May, 10, 15, 1),
		entryAt(2024, time.May, 10, 9, 2),
		entryAt(2024, time.May, 10, 21, 3),
	}

	got, err := Select(entries, target, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Temperature)

	again, err := Select(entries, target, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestSelect_IgnoresOtherDays(t *testing.T) {
	target := models.Date{Year: 2024, Month: time.May, Day: 11}
	entries := []models.ForecastEntry{
		entryAt(2024, time.May, 10, 12, 1),
		entryAt(2024, time.May, 11, 0, 2),
		entryAt(2024, time.May, 12, 12, 3),
	}

	got, err := Select(entries, target, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Temperature)
}

func TestSelect_NoMatchingDate(t *testing.T) {
	target := models.Date{Year: 2024, Month: time.May, Day: 20}
	entries := []models.ForecastEntry{entryAt(2024, time.May, 10, 12, 1)}

	_, err := Select(entries, target, time.UTC)
	assert.ErrorIs(t, err, ErrNoForecast)

	_, err = Select(nil, target, time.UTC)
	assert.ErrorIs(t, err, ErrNoForecast)
}

func TestSelect_UsesLocationForCalendarDay(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	// 22:00 UTC on the 10th is 01:00 on the 11th in Moscow.
	entries := []models.ForecastEntry{entryAt(2024, time.May, 10, 22, 7)}

	_, err := Select(entries, models.Date{Year: 2024, Month: time.May, Day: 10}, moscow)
	assert.ErrorIs(t, err, ErrNoForecast)

	got, err := Select(entries, models.Date{Year: 2024, Month: time.May, Day: 11}, moscow)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.Temperature)
}

func TestBuildSnapshot(t *testing.T) {
	target := models.Date{Year: 2024, Month: time.December, Day: 1}

	tests := []struct {
		name     string
		rain     *float64
		snow     *float64
		wantRain bool
		wantSnow bool
	}{
		{name: "no precipitation blocks"},
		{name: "zero volumes", rain: ptr(0), snow: ptr(0)},
		{name: "rain only", rain: ptr(0.4), wantRain: true},
		{name: "snow only", snow: ptr(1.2), wantSnow: true},
		{name: "both", rain: ptr(0.1), snow: ptr(0.1), wantRain: true, wantSnow: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := models.ForecastEntry{
				Timestamp:   time.Date(2024, time.December, 1, 12, 0, 0, 0, time.UTC),
				Temperature: -3.25,
				FeelsLike:   -8.5,
				Description: "небольшой снег",
				WindSpeed:   4.1,
				Humidity:    87,
				Rain3h:      tt.rain,
				Snow3h:      tt.snow,
			}

			got := BuildSnapshot(entry, target)
			assert.Equal(t, models.WeatherSnapshot{
				Date:        "01.12.2024",
				Temperature: -3.25,
				FeelsLike:   -8.5,
				Description: "небольшой снег",
				WindSpeed:   4.1,
				Humidity:    87,
				Rain:        tt.wantRain,
				Snow:        tt.wantSnow,
			}, got)
		})
	}
}
