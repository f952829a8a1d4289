package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // zone database for minimal containers

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

type Config struct {
	StoreBackend    string // "file" or "sqlite"
	StateDir        string // JSON state files, file backend
	StateDBPath     string // SQLite state database, sqlite backend
	Location        *time.Location
	DefaultActivity string // Label used by a bare #track

	SQLitePath      string // whatsmeow session store
	GroupID         string
	BotPhone        string
	ReplyDelayMinMs int  // Minimum delay before reply (milliseconds)
	ReplyDelayMaxMs int  // Maximum delay before reply (milliseconds), 0 = use min as fixed
	ShowTyping      bool // Show typing indicator during delay
}

// FileConfig is the optional TOML file. Environment variables take precedence.
type FileConfig struct {
	Store struct {
		Backend *string `toml:"backend"`
		Dir     *string `toml:"dir"`
		DBPath  *string `toml:"db_path"`
	} `toml:"store"`
	Tracker struct {
		Timezone        *string `toml:"timezone"`
		DefaultActivity *string `toml:"default_activity"`
	} `toml:"tracker"`
	Bot struct {
		SessionPath     *string `toml:"session_path"`
		GroupID         *string `toml:"group_id"`
		Phone           *string `toml:"phone"`
		ReplyDelayMinMs *int    `toml:"reply_delay_min_ms"`
		ReplyDelayMaxMs *int    `toml:"reply_delay_max_ms"`
		ShowTyping      *bool   `toml:"show_typing"`
	} `toml:"bot"`
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults/environment variables")
	}

	fc, err := LoadFile(getenv("CONFIG_FILE", ""))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		StoreBackend:    getenv("STORE_BACKEND", deref(fc.Store.Backend, BackendFile)),
		StateDir:        getenv("STATE_DIR", deref(fc.Store.Dir, "./data/consistency")),
		StateDBPath:     getenv("STATE_DB_PATH", deref(fc.Store.DBPath, "./data/consistency.db")),
		DefaultActivity: getenv("DEFAULT_ACTIVITY", deref(fc.Tracker.DefaultActivity, "checkin")),
		SQLitePath:      getenv("SQLITE_PATH", deref(fc.Bot.SessionPath, "./data/whatsapp.db")),
		GroupID:         getenv("GROUP_ID", deref(fc.Bot.GroupID, "")),
		BotPhone:        getenv("BOT_PHONE", deref(fc.Bot.Phone, "")),
		ReplyDelayMinMs: getenvInt("REPLY_DELAY_MIN_MS", deref(fc.Bot.ReplyDelayMinMs, 0)),
		ReplyDelayMaxMs: getenvInt("REPLY_DELAY_MAX_MS", deref(fc.Bot.ReplyDelayMaxMs, 0)),
		ShowTyping:      getenvBool("SHOW_TYPING", deref(fc.Bot.ShowTyping, false)),
	}

	if err := ValidateBackend(cfg.StoreBackend); err != nil {
		return Config{}, err
	}

	cfg.Location, err = LoadLocation(getenv("TIMEZONE", deref(fc.Tracker.Timezone, "")))
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFile decodes the TOML config at path. An empty path or a missing file
// yields an empty FileConfig.
func LoadFile(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}

	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return fc, nil
}

func ValidateBackend(backend string) error {
	switch backend {
	case BackendFile, BackendSQLite:
		return nil
	}
	return fmt.Errorf("unknown store backend %q (want %q or %q)", backend, BackendFile, BackendSQLite)
}

// LoadLocation resolves an IANA zone name; empty means time.Local.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

func deref[T any](v *T, fallback T) T {
	if v != nil {
		return *v
	}
	return fallback
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
