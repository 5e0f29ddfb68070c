package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `database:
  host: localhost
  port: 5432
  user: rideshare
  password: rideshare  # local dev only
  database: rideshare

rabbitmq:
  host: localhost
  port: 5672
  user: guest
  password: guest

redis:
  host: localhost
  port: 6379
  db: 1

services:
  booking_service: 3000
  realtime_service: 3001
  notify_service: 3002

jwt:
  secret_key: "dev-secret-change-me"

ratelimit:
  enabled: true
  capacity: 30
  refill_interval: 1s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Database.Name != "rideshare" {
		t.Errorf("database.name = %q, want rideshare", cfg.Database.Name)
	}
	if cfg.Database.Password != "rideshare" {
		t.Errorf("database.password = %q, want comment stripped", cfg.Database.Password)
	}
	if cfg.Redis.DB != 1 {
		t.Errorf("redis.db = %d, want 1", cfg.Redis.DB)
	}
	if cfg.Services.RealtimeServicePort != 3001 {
		t.Errorf("realtime port = %d, want 3001", cfg.Services.RealtimeServicePort)
	}
	if cfg.JWT.SecretKey != "dev-secret-change-me" {
		t.Errorf("jwt.secret_key = %q, want unquoted value", cfg.JWT.SecretKey)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Capacity != 30 || cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("ratelimit = %+v, want enabled/30/1s", cfg.RateLimit)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	minimal := `database:
  user: rideshare
  password: rideshare
  database: rideshare

rabbitmq:
  user: guest
  password: guest
`
	cfg, err := LoadFromFile(writeConfig(t, minimal))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("database defaults = %s:%d, want localhost:5432", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Redis.Port != 6379 {
		t.Errorf("redis default port = %d, want 6379", cfg.Redis.Port)
	}
	if cfg.Services.BookingServicePort != 3000 || cfg.Services.NotifyServicePort != 3002 {
		t.Errorf("service port defaults = %+v", cfg.Services)
	}
	if cfg.JWT.SecretKey == "" {
		t.Error("jwt.secret_key should be generated when absent")
	}
	if cfg.RateLimit.Capacity != 30 || cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("ratelimit defaults = %+v, want 30/1s", cfg.RateLimit)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			"missing database credentials",
			"database:\n  host: localhost\n\nrabbitmq:\n  user: guest\n  password: guest\n",
			"database.user is required",
		},
		{
			"missing rabbitmq credentials",
			"database:\n  user: u\n  password: p\n  database: d\n",
			"rabbitmq.user is required",
		},
		{
			"port out of range",
			"database:\n  port: 70000\n  user: u\n  password: p\n  database: d\n\nrabbitmq:\n  user: guest\n  password: guest\n",
			"database.port must be in 1..65535",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestParseYAMLRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown top-level key", "storage:\n  host: x\n"},
		{"unknown section key", "redis:\n  hostname: x\n"},
		{"key without section", "  host: x\n"},
		{"duplicate section", "redis:\n  db: 0\nredis:\n  db: 1\n"},
		{"non-integer port", "redis:\n  port: eighty\n"},
		{"bad duration", "ratelimit:\n  refill_interval: fast\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			if err := parseYAML(strings.NewReader(tt.yaml), &cfg); err == nil {
				t.Fatal("expected a parse error")
			}
		})
	}
}

func TestResolveScalar(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"localhost"`, "localhost"},
		{`'password123'`, "password123"},
		{"plain", "plain"},
		{"  padded  ", "padded"},
		{`"`, `"`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := resolveScalar(tt.in); got != tt.want {
			t.Errorf("resolveScalar(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
