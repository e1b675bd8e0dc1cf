package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
server:
  port: "9090"
store:
  mode: live
postgres:
  url: postgres://quiz@localhost/quiz
auth:
  jwtSecret: 0123456789abcdef0123456789abcdef
leaderboard:
  limit: 25
cors:
  allowedOrigins: ["http://localhost:3000"]
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Leaderboard.Limit != 25 || cfg.Demo() {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Streak.FreezeCost != 50 || cfg.Scoring.DifficultyMultiplier != 1.5 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 {
		t.Fatalf("expected one origin, got %v", cfg.CORS.AllowedOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Demo() || cfg.Leaderboard.Limit != 10 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	env := map[string]string{
		"DEMO_MODE":    "false",
		"DATABASE_URL": "postgres://env",
		"JWT_SECRET":   "short",
		"AI_API_KEY":   "key",
	}
	cfg := Default()
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.Demo() || cfg.Postgres.URL != "postgres://env" || cfg.AI.APIKey != "key" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("demo config should validate: %v", err)
	}
	cfg.Server.Mode = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown server mode to fail")
	}
	cfg.Server.Mode = "release"
	cfg.Store.Mode = "cloud"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
	cfg.Store.Mode = StoreLive
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing postgres url to fail")
	}
}

func TestValidateWriteTimeoutCoversGeneration(t *testing.T) {
	cfg := Default()
	cfg.Server.WriteTimeout = "15s"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected write timeout shorter than ai.timeout to fail")
	}
	cfg.Server.WriteTimeout = cfg.AI.Timeout
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected write timeout equal to ai.timeout to fail")
	}
	cfg.Server.WriteTimeout = "45s"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected 45s to pass: %v", err)
	}
	if d := TTLDuration(Default().Server.WriteTimeout, 0); d <= TTLDuration(Default().AI.Timeout, 0) {
		t.Fatalf("default write timeout %s does not cover generation", d)
	}
}

func TestValidateScoringRules(t *testing.T) {
	cfg := Default()
	cfg.Scoring.DifficultyMultiplier = 0.5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected multiplier below 1 to fail")
	}
	cfg = Default()
	cfg.Scoring.BasePointsPerCorrect = -5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected negative base points to fail")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("bogus", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for bad input, got %v", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
}
