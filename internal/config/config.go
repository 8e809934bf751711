package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redacted = "***REDACTED***"

// Secret is a credential read from the environment. It prints and marshals
// as a redacted placeholder; Unmask returns the raw value.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return redacted
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s Secret) Unmask() string {
	return string(s)
}

// Timezone decodes an IANA zone name such as "Europe/Moscow". "Local" and
// the empty string mean the host zone.
type Timezone struct {
	loc *time.Location
}

func (tz *Timezone) Decode(value string) error {
	loc, err := time.LoadLocation(value)
	if err != nil {
		return fmt.Errorf("unknown timezone %q: %w", value, err)
	}
	tz.loc = loc
	return nil
}

func (tz Timezone) Location() *time.Location {
	if tz.loc == nil {
		return time.Local
	}
	return tz.loc
}

func (tz Timezone) String() string {
	return tz.Location().String()
}

type Config struct {
	LogLevel  zapcore.Level `envconfig:"LOG_LEVEL" default:"info"`
	Timezone  Timezone      `envconfig:"BOT_TIMEZONE" default:"Local"`
	RulesFile string        `envconfig:"RULES_FILE"`

	Telegram       TelegramConfig
	Weather        WeatherConfig
	CircuitBreaker CircuitBreakerConfig
	Retry          RetryConfig
	Cache          CacheConfig
	Server         ServerConfig
}

type TelegramConfig struct {
	Token       Secret `envconfig:"TELEGRAM_TOKEN" validate:"required"`
	Debug       bool   `envconfig:"TELEGRAM_DEBUG" default:"false"`
	PollTimeout int    `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"60" validate:"gte=0"`
}

type WeatherConfig struct {
	APIKey    Secret        `envconfig:"WEATHER_API_KEY" validate:"required"`
	URL       string        `envconfig:"WEATHER_URL" validate:"omitempty,url"`
	Units     string        `envconfig:"WEATHER_UNITS" default:"metric" validate:"oneof=standard metric imperial"`
	Lang      string        `envconfig:"WEATHER_LANG" default:"ru" validate:"required"`
	Count     int           `envconfig:"WEATHER_COUNT" default:"40" validate:"min=1,max=40"`
	Timeout   time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s" validate:"gt=0"`
	RateLimit float64       `envconfig:"WEATHER_RATE_LIMIT" default:"1" validate:"gte=0"`
	RateBurst int           `envconfig:"WEATHER_RATE_BURST" default:"5" validate:"gte=1"`
}

type CircuitBreakerConfig struct {
	Threshold int           `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"3" validate:"min=1"`
	Timeout   time.Duration `envconfig:"CIRCUIT_BREAKER_TIMEOUT" default:"30s" validate:"gt=0"`
}

type RetryConfig struct {
	MaxRetries int           `envconfig:"MAX_RETRIES" default:"0" validate:"gte=0"`
	Delay      time.Duration `envconfig:"RETRY_DELAY" default:"1s"`
	Multiplier float64       `envconfig:"RETRY_MULTIPLIER" default:"2" validate:"gte=1"`
}

type CacheConfig struct {
	Duration      time.Duration `envconfig:"CACHE_DURATION" default:"10m"`
	MaxSize       int           `envconfig:"MAX_CACHE_SIZE" default:"1000" validate:"gte=0"`
	PurgeSchedule string        `envconfig:"CACHE_PURGE_SCHEDULE" default:"@every 1m" validate:"required"`
}

// Enabled reports whether forecasts are cached at all.
func (c CacheConfig) Enabled() bool {
	return c.Duration > 0 && c.MaxSize > 0
}

type ServerConfig struct {
	Enabled      bool          `envconfig:"HTTP_ENABLED" default:"true"`
	Port         string        `envconfig:"HTTP_PORT" default:"8080" validate:"required,numeric"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"10s"`
}

// LoadConfig reads .env when present, then the process environment, and
// validates the result. Missing credentials are an error.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
