package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fardannozami/consistency-tracker/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "STORE_BACKEND", "STATE_DIR", "STATE_DB_PATH", "TIMEZONE",
		"DEFAULT_ACTIVITY", "SQLITE_PATH", "GROUP_ID", "BOT_PHONE",
		"REPLY_DELAY_MIN_MS", "REPLY_DELAY_MAX_MS", "SHOW_TYPING",
	} {
		t.Setenv(key, "")
	}
	// godotenv reads .env from the working directory
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.StoreBackend != config.BackendFile {
		t.Errorf("Expected file backend, got %s", cfg.StoreBackend)
	}
	if cfg.StateDir != "./data/consistency" {
		t.Errorf("Unexpected StateDir %s", cfg.StateDir)
	}
	if cfg.DefaultActivity != "checkin" {
		t.Errorf("Expected default activity 'checkin', got %s", cfg.DefaultActivity)
	}
	if cfg.SQLitePath != "./data/whatsapp.db" {
		t.Errorf("Unexpected SQLitePath %s", cfg.SQLitePath)
	}
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[store]
backend = "sqlite"
db_path = "/tmp/file.db"

[tracker]
timezone = "Asia/Jakarta"
default_activity = "workout"

[bot]
group_id = "123@g.us"
reply_delay_min_ms = 500
show_typing = true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("STATE_DB_PATH", "/tmp/env.db")
	t.Setenv("REPLY_DELAY_MIN_MS", "not-a-number")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.StoreBackend != config.BackendSQLite {
		t.Errorf("Expected sqlite backend from file, got %s", cfg.StoreBackend)
	}
	if cfg.StateDBPath != "/tmp/env.db" {
		t.Errorf("Env should override file, got %s", cfg.StateDBPath)
	}
	if cfg.DefaultActivity != "workout" || cfg.GroupID != "123@g.us" || !cfg.ShowTyping {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.ReplyDelayMinMs != 500 {
		t.Errorf("Invalid env int should fall back to file value, got %d", cfg.ReplyDelayMinMs)
	}
	if cfg.Location == nil || cfg.Location.String() != "Asia/Jakarta" {
		t.Errorf("Expected Asia/Jakarta, got %v", cfg.Location)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "redis")

	if _, err := config.Load(); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestLoad_InvalidTimezone(t *testing.T) {
	clearEnv(t)
	t.Setenv("TIMEZONE", "Mars/Olympus_Mons")

	if _, err := config.Load(); err == nil {
		t.Error("Expected error for unknown timezone")
	}
}

func TestLoadFile_MissingAndMalformed(t *testing.T) {
	dir := t.TempDir()

	if _, err := config.LoadFile(filepath.Join(dir, "missing.toml")); err != nil {
		t.Errorf("Missing file should not be an error: %v", err)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[store\nbackend ="), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	if _, err := config.LoadFile(bad); err == nil {
		t.Error("Malformed TOML should be an error")
	}
}
