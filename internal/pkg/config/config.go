package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: values that differ between environments (DB connection, etc.)
// - default: engine tunables with well-known defaults (service duration,
//   turnover buffer, suggestion TTL, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	DB     DBConfig
	Log    LogConfig
	Engine EngineConfig
	Sweep  SweepConfig
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

// EngineConfig carries the scheduling constants. The defaults mirror the
// values the product runs with in production: a two-hour service window,
// one hour of table turnover, half-hour slot granularity.
type EngineConfig struct {
	ServiceDuration time.Duration `envconfig:"ENGINE_SERVICE_DURATION" default:"120m"`
	TurnoverBuffer  time.Duration `envconfig:"ENGINE_TURNOVER_BUFFER" default:"60m"`
	SlotIncrement   time.Duration `envconfig:"ENGINE_SLOT_INCREMENT" default:"30m"`
	MaxSuggestions  int           `envconfig:"ENGINE_MAX_SUGGESTIONS" default:"5"`
	SuggestionTTL   time.Duration `envconfig:"ENGINE_SUGGESTION_TTL" default:"24h"`
	DateRangeDays   int           `envconfig:"ENGINE_DATE_RANGE_DAYS" default:"3"`
	TimeRangeHours  int           `envconfig:"ENGINE_TIME_RANGE_HOURS" default:"2"`
}

type SweepConfig struct {
	// Standard five-field cron expression.
	Schedule  string        `envconfig:"SWEEP_SCHEDULE" default:"*/15 * * * *"`
	Retention time.Duration `envconfig:"SWEEP_RETENTION" default:"720h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level: "error",
		},
		Engine: EngineConfig{
			ServiceDuration: 120 * time.Minute,
			TurnoverBuffer:  60 * time.Minute,
			SlotIncrement:   30 * time.Minute,
			MaxSuggestions:  5,
			SuggestionTTL:   24 * time.Hour,
			DateRangeDays:   3,
			TimeRangeHours:  2,
		},
		Sweep: SweepConfig{
			Schedule:  "*/15 * * * *",
			Retention: 720 * time.Hour,
		},
	}
}
