package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/wardrobe-bot/internal/models"
)

// ErrUpstreamStatus is returned when the payload's cod field is not "200".
var ErrUpstreamStatus = errors.New("weather provider returned error status")

const DefaultForecastURL = "http://api.openweathermap.org/data/2.5/forecast"

type OpenWeatherSettings struct {
	URL    string
	APIKey string
	Units  string
	Lang   string
	Count  int
}

type OpenWeatherClient struct {
	*BaseClient
	settings  OpenWeatherSettings
	validator *validator.Validate
}

// responseCode accepts both "200" and 401: the provider is not consistent
// about the type of cod.
type responseCode string

func (c *responseCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = responseCode(s)
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cod is neither string nor number: %s", data)
	}
	*c = responseCode(strconv.FormatInt(n, 10))
	return nil
}

// ForecastResponse is the /data/2.5/forecast payload. Pointer fields are
// required; rain and snow blocks are optional.
type ForecastResponse struct {
	Cod     responseCode   `json:"cod"`
	Message any            `json:"message"`
	Cnt     int            `json:"cnt"`
	List    []ForecastItem `json:"list" validate:"required,dive"`
	City    struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

type ForecastItem struct {
	Dt      *int64         `json:"dt" validate:"required"`
	Main    *MainBlock     `json:"main" validate:"required"`
	Weather []WeatherBlock `json:"weather" validate:"required,min=1"`
	Wind    *WindBlock     `json:"wind" validate:"required"`
	Rain    *Precipitation `json:"rain,omitempty"`
	Snow    *Precipitation `json:"snow,omitempty"`
	DtTxt   string         `json:"dt_txt"`
}

type MainBlock struct {
	Temp      *float64 `json:"temp" validate:"required"`
	FeelsLike *float64 `json:"feels_like" validate:"required"`
	Humidity  *int     `json:"humidity" validate:"required"`
}

type WeatherBlock struct {
	Description string `json:"description"`
}

type WindBlock struct {
	Speed *float64 `json:"speed" validate:"required"`
}

type Precipitation struct {
	ThreeHours *float64 `json:"3h,omitempty"`
}

func NewOpenWeatherClient(settings OpenWeatherSettings, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	return newOpenWeatherClient(NewBaseClient("openweather", config, logger), settings)
}

func newOpenWeatherClient(base *BaseClient, settings OpenWeatherSettings) *OpenWeatherClient {
	if settings.URL == "" {
		settings.URL = DefaultForecastURL
	}
	return &OpenWeatherClient{
		BaseClient: base,
		settings:   settings,
		validator:  validator.New(),
	}
}

// GetForecast fetches the 3-hour forecast list for city.
func (c *OpenWeatherClient) GetForecast(ctx context.Context, city string) ([]models.ForecastEntry, error) {
	params := url.Values{}
	params.Set("q", city)
	params.Set("appid", c.settings.APIKey)
	if c.settings.Units != "" {
		params.Set("units", c.settings.Units)
	}
	if c.settings.Lang != "" {
		params.Set("lang", c.settings.Lang)
	}
	if c.settings.Count > 0 {
		params.Set("cnt", strconv.Itoa(c.settings.Count))
	}

	data, err := c.GetWithRetry(ctx, c.settings.URL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	var response ForecastResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse forecast response: %w", err)
	}

	if response.Cod != "200" {
		return nil, fmt.Errorf("%w: cod=%s message=%v", ErrUpstreamStatus, response.Cod, response.Message)
	}

	if err := c.validator.Struct(response); err != nil {
		return nil, fmt.Errorf("malformed forecast response: %w", err)
	}

	entries := make([]models.ForecastEntry, 0, len(response.List))
	for _, item := range response.List {
		entries = append(entries, item.toEntry())
	}

	c.logger.Debug("Forecast fetched",
		zap.String("city", city),
		zap.Int("entries", len(entries)))

	return entries, nil
}

func (item ForecastItem) toEntry() models.ForecastEntry {
	entry := models.ForecastEntry{
		Timestamp:   time.Unix(*item.Dt, 0),
		Temperature: *item.Main.Temp,
		FeelsLike:   *item.Main.FeelsLike,
		Description: item.Weather[0].Description,
		WindSpeed:   *item.Wind.Speed,
		Humidity:    *item.Main.Humidity,
	}
	if item.Rain != nil {
		entry.Rain3h = item.Rain.ThreeHours
	}
	if item.Snow != nil {
		entry.Snow3h = item.Snow.ThreeHours
	}
	return entry
}
