package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends selectable with STORE.
const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BANBDS"

// Config holds runtime wiring options for building the app.
type Config struct {
	// BaseURL is the backend root, e.g. http://127.0.0.1:8080.
	BaseURL string `mapstructure:"base_url"`
	// Home is the local state directory (default ~/.banbds).
	Home string `mapstructure:"home"`
	// Store selects the session persistence backend.
	Store string `mapstructure:"store"`
	// RedisURL is used when Store is redis.
	RedisURL string `mapstructure:"redis_url"`
	// SQLitePath is used when Store is sqlite (default <Home>/session.db).
	SQLitePath string `mapstructure:"sqlite_path"`
	// Passphrase, when set, encrypts the file store at rest.
	Passphrase string `mapstructure:"passphrase"`
	// HTTPTimeout bounds each backend round trip.
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// NewViper returns a viper instance with defaults, an optional .env file
// from the working directory and BANBDS_* environment overrides. Keys in
// .env are written without the prefix (BASE_URL=...).
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", "http://127.0.0.1:8080")
	v.SetDefault("home", "")
	v.SetDefault("store", StoreFile)
	v.SetDefault("redis_url", "redis://127.0.0.1:6379/0")
	v.SetDefault("sqlite_path", "")
	v.SetDefault("passphrase", "")
	v.SetDefault("http_timeout", "15s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	return v
}

// Load builds and validates Config from v. Flags bound into v take
// precedence over the environment.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("config: BASE_URL must be set")
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("config: BASE_URL %q must be an http(s) URL", cfg.BaseURL)
	}

	if cfg.Home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve home: %w", err)
		}
		cfg.Home = filepath.Join(dir, ".banbds")
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	switch cfg.Store {
	case StoreFile, StoreMemory:
	case StoreRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("config: REDIS_URL must be set when STORE=redis")
		}
	case StoreSQLite:
		if cfg.SQLitePath == "" {
			cfg.SQLitePath = filepath.Join(cfg.Home, "session.db")
		}
	default:
		return nil, fmt.Errorf("config: unknown STORE %q (want file, redis, sqlite or memory)", cfg.Store)
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 15 * time.Second
	}
	return &cfg, nil
}
