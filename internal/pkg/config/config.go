package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/anicoll/energy-dashboard/internal/pkg/model"
)

type Config struct {
	LogLevel      string       `env:"LOG_LEVEL" envDefault:"INFO"`
	HTTPAddr      string       `env:"HTTP_ADDR" envDefault:"0.0.0.0:8000"`
	CorsOrigins   []string     `env:"CORS_ORIGINS" envSeparator:","`
	DefaultPreset model.Preset `env:"DEFAULT_PRESET" envDefault:"thisMonth"`
	Timezone      string       `env:"DASHBOARD_TZ" envDefault:"Atlantic/Reykjavik"`

	StoreCfg  StoreConfig
	ResyncCfg ResyncConfig
	MqttCfg   MqttConfig
}

type StoreConfig struct {
	DatabaseURL      string `env:"DATABASE_URL"`
	MigrationsFolder string `env:"MIGRATIONS_FOLDER"`
	StatusLimit      int    `env:"STATUS_LIMIT" envDefault:"100"`
	RunLimit         int    `env:"RUN_LIMIT" envDefault:"20"`
}

type ResyncConfig struct {
	BackendURL string        `env:"RESYNC_BACKEND_URL"`
	Schedule   string        `env:"RESYNC_SCHEDULE"`
	TokenHash  string        `env:"RESYNC_TOKEN_HASH"`
	Timeout    time.Duration `env:"RESYNC_TIMEOUT" envDefault:"2m"`
}

type MqttConfig struct {
	Host     string `env:"MQTT_HOST"`
	Username string `env:"MQTT_USER"`
	Password string `env:"MQTT_PASS"`
	Device   string `env:"MQTT_DEVICE" envDefault:"energy_dashboard"`
}

// StoreConfigured reports whether a database URL is set. Without one the dashboard is served
// from demo data.
func (c Config) StoreConfigured() bool {
	return strings.TrimSpace(c.StoreCfg.DatabaseURL) != ""
}

// Location loads the zone that decides which calendar day "today" is.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_TZ %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads envFiles, skipping empty names and missing files, and then parses the
// environment. Variables already set in the environment win over the files.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if !cfg.DefaultPreset.Valid() {
		return Config{}, fmt.Errorf("invalid DEFAULT_PRESET %q", cfg.DefaultPreset)
	}
	return cfg, nil
}
