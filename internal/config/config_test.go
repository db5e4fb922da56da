package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FINBOARD_CONFIG", "")
	t.Setenv("PORT", "")
	t.Setenv("CHANGE_FEED", "")
	t.Setenv("SNAPSHOT_CACHE_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.ChangeFeed != FeedMemory {
		t.Errorf("expected memory change feed, got %s", cfg.ChangeFeed)
	}
	if cfg.SnapshotCacheTTL != 10*time.Minute {
		t.Errorf("expected 10m cache ttl, got %s", cfg.SnapshotCacheTTL)
	}
}

func TestLoad_YAMLFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finboard.yaml")
	content := "port: 9090\ndb_driver: sqlite\nsnapshot_cache_size: 50\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("FINBOARD_CONFIG", path)
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("SNAPSHOT_CACHE_SIZE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port from file, got %s", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("expected env to override file, got %s", cfg.DBDriver)
	}
	if cfg.SnapshotCacheSize != 50 {
		t.Errorf("expected cache size 50, got %d", cfg.SnapshotCacheSize)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("bad duration falls back", func(t *testing.T) {
		t.Setenv("FINBOARD_CONFIG", "")
		t.Setenv("JWT_EXPIRES_IN", "forever")
		t.Setenv("CHANGE_FEED", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.JWTExpirationDur != 15*time.Minute {
			t.Errorf("expected 15m fallback, got %s", cfg.JWTExpirationDur)
		}
	})

	t.Run("unknown change feed", func(t *testing.T) {
		t.Setenv("FINBOARD_CONFIG", "")
		t.Setenv("CHANGE_FEED", "kafka")

		if _, err := Load(); err == nil {
			t.Fatal("expected error for unknown change feed")
		}
	})

	t.Run("missing config file", func(t *testing.T) {
		t.Setenv("FINBOARD_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

		if _, err := Load(); err == nil {
			t.Fatal("expected error for missing config file")
		}
	})
}
