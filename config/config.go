package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Prefs   PrefsConfig   `mapstructure:"prefs"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Log     LogConfig     `mapstructure:"log"`
}

// APIConfig points the client at the trading backend.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	StreamURL      string        `mapstructure:"stream_url"` // optional websocket quote stream
	Timeout        time.Duration `mapstructure:"timeout"`
	Retries        int           `mapstructure:"retries"`
	UserID         string        `mapstructure:"user_id"`
	Token          string        `mapstructure:"token"`
	TokenParameter string        `mapstructure:"token_parameter"` // SSM parameter name, prod only
}

type CacheConfig struct {
	Driver   string         `mapstructure:"driver"` // "sqlite" or "postgres"
	Path     string         `mapstructure:"path"`   // sqlite file
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PrefsConfig struct {
	Dir string `mapstructure:"dir"`
}

type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Symbols  []string      `mapstructure:"symbols"`
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// DefaultSymbols is the watch universe used when refresh.symbols is empty.
var DefaultSymbols = []string{
	"RELIANCE", "TCS", "INFY", "HDFCBANK", "SBIN",
	"WIPRO", "ICICIBANK", "KOTAKBANK", "HINDUNILVR", "ITC",
	"BHARTIARTL", "LT", "AXISBANK", "BAJFINANCE", "TATAMOTORS",
	"SUNPHARMA", "TITAN", "MARUTI", "HCLTECH", "TATASTEEL",
}

// Load loads application configuration using Viper.
// It reads config.yaml from path (or the default search paths when path is empty),
// then overrides with BYSEL_* environment variables and a local .env file.
// A missing config file is not an error; every key has a default.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".bysel"))
		}
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Support environment variables with dot notation (e.g., BYSEL_API_BASE_URL)
	v.SetEnvPrefix("bysel")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Refresh.Symbols) == 0 {
		cfg.Refresh.Symbols = append([]string(nil), DefaultSymbols...)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	dataDir := defaultDataDir()

	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.stream_url", "")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.retries", 2)
	v.SetDefault("api.user_id", "")
	v.SetDefault("api.token", "")
	v.SetDefault("api.token_parameter", "")

	v.SetDefault("cache.driver", "sqlite")
	v.SetDefault("cache.path", filepath.Join(dataDir, "bysel.db"))
	v.SetDefault("cache.postgres.host", "localhost")
	v.SetDefault("cache.postgres.port", 5432)
	v.SetDefault("cache.postgres.user", "postgres")
	v.SetDefault("cache.postgres.password", "")
	v.SetDefault("cache.postgres.dbname", "bysel")
	v.SetDefault("cache.postgres.sslmode", "disable")
	v.SetDefault("cache.postgres.timezone", "UTC")

	v.SetDefault("prefs.dir", dataDir)

	v.SetDefault("refresh.interval", 15*time.Second)
	v.SetDefault("refresh.symbols", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_file", "")
	v.SetDefault("log.environment", "dev")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bysel"
	}
	return filepath.Join(home, ".bysel")
}
