package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds file- and environment-driven configuration.
type Config struct {
	Server struct {
		Addr         string `yaml:"addr"`
		AllowOrigins string `yaml:"allow_origins"`
	} `yaml:"server"`
	Upstream struct {
		BaseURL    string `yaml:"base_url"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"upstream"`
	Auth struct {
		JWTSecret   string `yaml:"-"` // env only
		GuestCookie string `yaml:"guest_cookie"`
	} `yaml:"auth"`
	Storage struct {
		Driver      string `yaml:"driver"` // memory, file or postgres
		Path        string `yaml:"path"`
		DatabaseURL string `yaml:"-"` // env only
	} `yaml:"storage"`
	Dialogue struct {
		Local        bool `yaml:"local"`
		ThinkDelayMs int  `yaml:"think_delay_ms"`
	} `yaml:"dialogue"`
	Log struct {
		Level    string `yaml:"level"`
		Format   string `yaml:"format"`
		Output   string `yaml:"output"`
		FilePath string `yaml:"file_path"`
	} `yaml:"log"`
}

// Load reads .env, then the YAML file named by CONFIG_FILE (default config.yaml) when it
// exists, then environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFrom(path)
}

// LoadFrom is Load without the .env step. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GIFT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("GIFT_ALLOW_ORIGINS"); v != "" {
		cfg.Server.AllowOrigins = v
	}
	if v := os.Getenv("UPSTREAM_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("UPSTREAM_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Upstream.TimeoutSec = n
		}
	}
	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	cfg.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
	if v := os.Getenv("DIALOGUE_LOCAL"); v != "" {
		cfg.Dialogue.Local = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.AllowOrigins == "" {
		cfg.Server.AllowOrigins = "*"
	}
	if cfg.Upstream.TimeoutSec <= 0 {
		cfg.Upstream.TimeoutSec = 10
	}
	if cfg.Auth.GuestCookie == "" {
		cfg.Auth.GuestCookie = "gift_guest"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "memory"
	}
	if cfg.Storage.Driver == "file" && cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/state.json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
