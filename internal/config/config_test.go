package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

const sample = `
server:
  http_port: ":9090"
  write_timeout: 90s
database:
  master:
    host: db
    user: media
    pass: secret
    name: media
  max_open_conns: 20
redis:
  addr: cache:6379
  preset_ttl: 30s
kafka:
  brokers: ["kafka:9092"]
editor:
  thumbnail_width: 200
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.HTTPPort != ":9090" {
		t.Fatalf("http_port: got %q", cfg.Server.HTTPPort)
	}
	if cfg.Server.WriteTimeout != 90*time.Second || cfg.Server.ReadTimeout != 30*time.Second {
		t.Fatalf("server timeouts: got read=%s write=%s", cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	}
	if cfg.Server.IdleTimeout != 120*time.Second || cfg.Server.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("server timeouts: got idle=%s header=%s", cfg.Server.IdleTimeout, cfg.Server.ReadHeaderTimeout)
	}
	if got := cfg.Database.Master.DSN(); got != "postgres://media:secret@db:5432/media?sslmode=disable" {
		t.Fatalf("dsn: got %s", got)
	}
	if cfg.Database.MaxOpenConns != 20 || cfg.Database.MaxIdleConns != 5 {
		t.Fatalf("pool: got %d/%d", cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	}
	if cfg.Redis.Addr != "cache:6379" || cfg.Redis.PresetTTL != 30*time.Second {
		t.Fatalf("redis: got %+v", cfg.Redis)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Topic != "media-events" {
		t.Fatalf("kafka: got %+v", cfg.Kafka)
	}
	if cfg.Editor.ThumbnailWidth != 200 || cfg.Editor.ThumbnailHeight != 120 {
		t.Fatalf("editor thumbnails: got %dx%d", cfg.Editor.ThumbnailWidth, cfg.Editor.ThumbnailHeight)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("DB_HOST", "replica.internal")
	t.Setenv("MEDIA_GATEWAY_URL", "http://media:8080")

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Master.Host != "replica.internal" {
		t.Fatalf("db host: got %q", cfg.Database.Master.Host)
	}
	if cfg.Editor.GatewayURL != "http://media:8080" {
		t.Fatalf("gateway url: got %q", cfg.Editor.GatewayURL)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(viper.New(), filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatalf("Load: expected error for missing file")
	}
}
