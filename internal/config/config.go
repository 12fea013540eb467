package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the application.
type Config struct {
	DataURL      string `yaml:"data_url"`
	DataDir      string `yaml:"data_dir"`
	DatabasePath string `yaml:"database_path"`
	Port         string `yaml:"port"`
	LogLevel     string `yaml:"log_level"`
	Seed         uint64 `yaml:"seed"`

	// Offline asset cache
	AssetOriginURL   string   `yaml:"asset_origin_url"`
	OfflineCacheName string   `yaml:"offline_cache_name"`
	CORSOrigins      []string `yaml:"cors_allowed_origins"`

	// Telegram Config
	TelegramBotToken     string  `yaml:"telegram_bot_token"`
	TelegramWebhookURL   string  `yaml:"telegram_webhook_url"`
	TelegramAllowUserIDs []int64 `yaml:"telegram_allowed_user_ids"`

	// Ghost Config
	GhostURL      string `yaml:"ghost_api_url"`
	GhostAdminKey string `yaml:"ghost_admin_api_key"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DatabasePath:     "data/planner.db",
		Port:             "8080",
		LogLevel:         "info",
		OfflineCacheName: "fuel-calc-v2",
	}
}

// NewFromEnv creates a new Config object. Values come from the YAML file named
// by PLANNER_CONFIG_FILE, if any, and are overridden by environment variables.
// A .env file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("PLANNER_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.DataURL, "PLANNER_DATA_URL")
	setString(&c.DataDir, "PLANNER_DATA_DIR")
	setString(&c.DatabasePath, "DATABASE_PATH")
	setString(&c.Port, "PORT")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.AssetOriginURL, "ASSET_ORIGIN_URL")
	setString(&c.OfflineCacheName, "OFFLINE_CACHE_NAME")
	setString(&c.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.TelegramWebhookURL, "TELEGRAM_WEBHOOK_URL")
	setString(&c.GhostURL, "GHOST_API_URL")
	setString(&c.GhostAdminKey, "GHOST_ADMIN_API_KEY")

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	if v := os.Getenv("PLANNER_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid PLANNER_SEED %q: %w", v, err)
		}
		c.Seed = seed
	}

	if v := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); v != "" {
		ids := make([]int64, 0)
		for _, s := range splitList(v) {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", s, err)
			}
			ids = append(ids, id)
		}
		c.TelegramAllowUserIDs = ids
	}
	return nil
}

// TelegramEnabled reports whether the bot can be started.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// GhostEnabled reports whether plans can be published.
func (c *Config) GhostEnabled() bool {
	return c.GhostURL != "" && c.GhostAdminKey != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
