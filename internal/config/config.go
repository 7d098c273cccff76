package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name, e.g. SMARTPHARMA_PORT.
const EnvPrefix = "SMARTPHARMA"

type Config struct {
	Port           string `envconfig:"PORT" default:"8080"`
	DBDSN          string `envconfig:"DB_DSN" default:"smartpharma.db"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	TemplatesDir   string `envconfig:"TEMPLATES_DIR" default:"./web/templates"`
	SeedSampleData bool   `envconfig:"SEED_SAMPLE_DATA" default:"true"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogFile   string `envconfig:"LOG_FILE"`

	// Alerting and heuristics. Thresholds differ per consumer on purpose.
	ExpiryWindowDays      int `envconfig:"EXPIRY_WINDOW_DAYS" default:"4"`
	InsightWindowDays     int `envconfig:"INSIGHT_WINDOW_DAYS" default:"7"`
	LowStockThreshold     int `envconfig:"LOW_STOCK_THRESHOLD" default:"20"`
	ReorderThreshold      int `envconfig:"REORDER_THRESHOLD" default:"50"`
	ChatLowStockThreshold int `envconfig:"CHAT_LOW_STOCK_THRESHOLD" default:"30"`
	AlertStockLimit       int `envconfig:"ALERT_STOCK_LIMIT" default:"5"`

	// bcrypt hash of the staff key required on mutating endpoints; empty disables the check.
	StaffKeyHash       string `envconfig:"STAFF_KEY_HASH"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	envFile := os.Getenv(EnvPrefix + "_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in defaults without consulting the environment.
func Default() Config {
	return Config{
		Port:                  "8080",
		DBDSN:                 "smartpharma.db",
		DBMaxOpenConns:        10,
		TemplatesDir:          "./web/templates",
		SeedSampleData:        true,
		LogLevel:              "info",
		LogFormat:             "json",
		ExpiryWindowDays:      4,
		InsightWindowDays:     7,
		LowStockThreshold:     20,
		ReorderThreshold:      50,
		ChatLowStockThreshold: 30,
		AlertStockLimit:       5,
		RateLimitPerMinute:    120,
	}
}

func (c Config) validate() error {
	switch {
	case c.ExpiryWindowDays < 0:
		return fmt.Errorf("%s_EXPIRY_WINDOW_DAYS must be >= 0", EnvPrefix)
	case c.InsightWindowDays < 0:
		return fmt.Errorf("%s_INSIGHT_WINDOW_DAYS must be >= 0", EnvPrefix)
	case c.LowStockThreshold < 1 || c.ReorderThreshold < 1 || c.ChatLowStockThreshold < 1:
		return fmt.Errorf("stock thresholds must be positive")
	case c.AlertStockLimit < 0:
		return fmt.Errorf("%s_ALERT_STOCK_LIMIT must be >= 0", EnvPrefix)
	}
	return nil
}
