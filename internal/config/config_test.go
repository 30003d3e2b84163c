// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, duration parsing, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://csxl.unc.edu/api"
  token: "tok-123"

session:
  backend: "sqlite"
  database_path: "./sessions.db"
  retention: "24h"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != "https://csxl.unc.edu/api" {
		t.Errorf("Backend.BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Token != "tok-123" {
		t.Errorf("Backend.Token = %q", cfg.Backend.Token)
	}
	if cfg.Session.Backend != SessionBackendSQLite {
		t.Errorf("Session.Backend = %q", cfg.Session.Backend)
	}
	if cfg.Session.Retention != 24*time.Hour {
		t.Errorf("Session.Retention = %v, want 24h", cfg.Session.Retention)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_BACKEND_TOKEN", "secret-from-env")

	path := writeConfig(t, `
backend:
  base_url: "https://csxl.unc.edu/api"
  token: "${TEST_BACKEND_TOKEN}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.Token != "secret-from-env" {
		t.Errorf("Backend.Token = %q, want secret-from-env", cfg.Backend.Token)
	}
}

func TestLoad_UnsetEnvVarExpandsEmpty(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://csxl.unc.edu/api"
  token: "${DEFINITELY_NOT_SET_ANYWHERE_XYZ}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.Token != "" {
		t.Errorf("Backend.Token = %q, want empty", cfg.Backend.Token)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	path := writeConfig(t, `
session:
  backend: "memory"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "base_url") {
		t.Errorf("Load() error = %v, want base_url validation failure", err)
	}
}

func TestLoad_SQLiteRequiresDatabasePath(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://csxl.unc.edu/api"
session:
  backend: "sqlite"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "database_path") {
		t.Errorf("Load() error = %v, want database_path validation failure", err)
	}
}

func TestLoad_RedisRequiresAddr(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://csxl.unc.edu/api"
session:
  backend: "redis"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "redis_addr") {
		t.Errorf("Load() error = %v, want redis_addr validation failure", err)
	}
}

func TestLoad_UnknownSessionBackend(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://csxl.unc.edu/api"
session:
  backend: "postgres"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "session.backend") {
		t.Errorf("Load() error = %v, want session.backend validation failure", err)
	}
}

func TestLoad_BadRetention(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://csxl.unc.edu/api"
session:
  backend: "memory"
  retention: "one day"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "retention") {
		t.Errorf("Load() error = %v, want retention parse failure", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("Load() succeeded on a missing file")
	}
}

func TestLoad_DefaultsToMemoryBackend(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://csxl.unc.edu/api"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Session.Backend != "" {
		t.Errorf("Session.Backend = %q, want empty (memory)", cfg.Session.Backend)
	}
	if cfg.Session.Retention != 0 {
		t.Errorf("Session.Retention = %v, want 0 (store default applies)", cfg.Session.Retention)
	}
}
