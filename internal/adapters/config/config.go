package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"hermes/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	ClickHouse    ClickHouseConfig
	Redis         RedisConfig
	Telegram      TelegramConfig
	NewsAPI       NewsAPIConfig
	OpenAI        OpenAIConfig
	Analysis      AnalysisConfig
	ErrorTracking ErrorTrackingConfig
	Workers       WorkerConfig
	Metrics       MetricsConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"hermes"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"25"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"marketdata"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" required:"true"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type TelegramConfig struct {
	BotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	AdminIDs []int64 `envconfig:"TELEGRAM_ADMIN_IDS"`
	Debug    bool    `envconfig:"TELEGRAM_DEBUG" default:"false"`
}

type NewsAPIConfig struct {
	APIKey  string        `envconfig:"NEWSAPI_KEY"`
	BaseURL string        `envconfig:"NEWSAPI_BASE_URL" default:"https://newsapi.org/v2"`
	Timeout time.Duration `envconfig:"NEWSAPI_TIMEOUT" default:"15s"`
}

type OpenAIConfig struct {
	APIKey string `envconfig:"OPENAI_API_KEY"`
	Model  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
}

// AnalysisConfig holds the tunables of the analysis pipeline.
type AnalysisConfig struct {
	Capital        float64 `envconfig:"ANALYSIS_CAPITAL" default:"10000"`
	MaxRiskPercent float64 `envconfig:"ANALYSIS_MAX_RISK_PERCENT" default:"2.0"`
	RiskFreeRate   float64 `envconfig:"ANALYSIS_RISK_FREE_RATE" default:"0.05"`
	MinDays        int     `envconfig:"ANALYSIS_MIN_DAYS" default:"14"`
	MaxDays        int     `envconfig:"ANALYSIS_MAX_DAYS" default:"365"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

type WorkerConfig struct {
	// Candle backfill keeps ClickHouse topped up with recent daily candles
	CandleBackfillInterval time.Duration `envconfig:"WORKER_CANDLE_BACKFILL_INTERVAL" default:"1h"`
	CandleBackfillEnabled  bool          `envconfig:"WORKER_CANDLE_BACKFILL_ENABLED" default:"true"`
	CandleBackfillDays     int           `envconfig:"WORKER_CANDLE_BACKFILL_DAYS" default:"400"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
	Addr    string `envconfig:"METRICS_ADDR" default:":9090"`
}

// Load reads configuration from the environment, honoring a local .env file
func Load() (*Config, error) {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process environment config")
	}

	return &cfg, nil
}
