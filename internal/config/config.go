package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreLive   = "live"

	minSecretLength = 32

	defaultAITimeout    = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
)

type Config struct {
	Server struct {
		Port         string `yaml:"port"`
		Mode         string `yaml:"mode"`
		ReadTimeout  string `yaml:"readTimeout"`
		WriteTimeout string `yaml:"writeTimeout"`
	} `yaml:"server"`
	Store struct {
		Mode string `yaml:"mode"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		CacheTTL string `yaml:"cacheTTL"`
		Lifetime string `yaml:"lifetime"`
	} `yaml:"quiz"`
	Scoring struct {
		BasePointsPerCorrect int     `yaml:"basePointsPerCorrect"`
		DifficultyMultiplier float64 `yaml:"difficultyMultiplier"`
	} `yaml:"scoring"`
	Streak struct {
		FreezeCost int `yaml:"freezeCost"`
	} `yaml:"streak"`
	Leaderboard struct {
		Limit int `yaml:"limit"`
	} `yaml:"leaderboard"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		TokenTTL  string `yaml:"tokenTTL"`
	} `yaml:"auth"`
	AI struct {
		BaseURL string `yaml:"baseURL"`
		APIKey  string `yaml:"apiKey"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"ai"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`
	RateLimit struct {
		MaxRequests int    `yaml:"maxRequests"`
		Window      string `yaml:"window"`
	} `yaml:"rateLimit"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Tracing struct {
		Enabled           bool   `yaml:"enabled"`
		CollectorEndpoint string `yaml:"collectorEndpoint"`
	} `yaml:"tracing"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error: defaults and the environment still apply.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, err
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

// Default returns the configuration used when no file sets a value.
func Default() Config {
	var cfg Config
	cfg.Server.Mode = "release"
	cfg.Server.ReadTimeout = "15s"
	cfg.Server.WriteTimeout = "60s"
	cfg.Store.Mode = StoreMemory
	cfg.Quiz.CacheTTL = "10m"
	cfg.Quiz.Lifetime = "24h"
	cfg.Scoring.BasePointsPerCorrect = 5
	cfg.Scoring.DifficultyMultiplier = 1.5
	cfg.Streak.FreezeCost = 50
	cfg.Leaderboard.Limit = 10
	cfg.Auth.TokenTTL = "24h"
	cfg.AI.BaseURL = "https://api.openai.com/v1"
	cfg.AI.Model = "gpt-4o-mini"
	cfg.AI.Timeout = "30s"
	cfg.RateLimit.MaxRequests = 100
	cfg.RateLimit.Window = "1m"
	cfg.Log.Level = "info"
	return cfg
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("DEMO_MODE"); ok {
		if demo, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			if demo {
				c.Store.Mode = StoreMemory
			} else {
				c.Store.Mode = StoreLive
			}
		}
	}
	overrides := map[string]*string{
		"DATABASE_URL":   &c.Postgres.URL,
		"REDIS_ADDR":     &c.Redis.Addr,
		"REDIS_PASSWORD": &c.Redis.Password,
		"JWT_SECRET":     &c.Auth.JWTSecret,
		"AI_API_KEY":     &c.AI.APIKey,
		"AI_BASE_URL":    &c.AI.BaseURL,
		"AI_MODEL":       &c.AI.Model,
		"LOG_LEVEL":      &c.Log.Level,
	}
	for key, target := range overrides {
		if v, ok := lookup(key); ok && v != "" {
			*target = v
		}
	}
}

// Demo reports whether the fixture store and demo tokens are in use.
func (c Config) Demo() bool {
	return c.Store.Mode != StoreLive
}

// Validate rejects configurations the live stack cannot start with.
func (c Config) Validate() error {
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	aiTimeout := TTLDuration(c.AI.Timeout, defaultAITimeout)
	if TTLDuration(c.Server.WriteTimeout, defaultWriteTimeout) <= aiTimeout {
		return fmt.Errorf("server.writeTimeout must exceed ai.timeout (%s)", aiTimeout)
	}
	if c.Scoring.BasePointsPerCorrect < 0 {
		return errors.New("scoring.basePointsPerCorrect must not be negative")
	}
	if c.Scoring.DifficultyMultiplier < 1 {
		return errors.New("scoring.difficultyMultiplier must be at least 1")
	}
	switch c.Store.Mode {
	case StoreMemory, StoreLive:
	default:
		return fmt.Errorf("store.mode must be %q or %q, got %q", StoreMemory, StoreLive, c.Store.Mode)
	}
	if c.Demo() {
		return nil
	}
	if c.Postgres.URL == "" {
		return errors.New("postgres url not configured")
	}
	if len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("auth.jwtSecret must be at least %d characters", minSecretLength)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
