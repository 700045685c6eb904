package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Ma4rt/lista-de-tarefas-version-2/internal/model"
)

const (
	DefaultConfigFile = "tarefas.toml"
	DefaultEnvFile    = ".env"
)

type Config struct {
	API           APIConfig           `toml:"api"`
	Storage       StorageConfig       `toml:"storage"`
	Notifications NotificationsConfig `toml:"notifications"`
	Scheduler     SchedulerConfig     `toml:"scheduler"`
	Log           LogConfig           `toml:"log"`
}

// APIConfig selects the REST backend. An empty URL means local storage.
type APIConfig struct {
	URL      string        `toml:"url"`
	Token    string        `toml:"token"`
	Email    string        `toml:"email"`
	Password string        `toml:"password"`
	Timeout  time.Duration `toml:"timeout"`
}

type StorageConfig struct {
	DBPath    string `toml:"db_path"`
	PrefsPath string `toml:"prefs_path"`
}

type NotificationsConfig struct {
	Desktop         bool          `toml:"desktop"`
	Sound           bool          `toml:"sound"`
	ToastDuration   time.Duration `toml:"toast_duration"`
	NativeAutoClose time.Duration `toml:"native_auto_close"`
	SnoozeMinutes   int           `toml:"snooze_minutes"`
}

type SchedulerConfig struct {
	Buffer int `toml:"buffer"`
}

type LogConfig struct {
	Level    string `toml:"level"`
	Encoding string `toml:"encoding"`
	// Path is the log file. Empty disables logging; the terminal belongs to the UI.
	Path string `toml:"path"`
}

func Default() Config {
	return Config{
		API: APIConfig{
			Timeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			DBPath:    ".tarefas.db",
			PrefsPath: ".tarefas_prefs.json",
		},
		Notifications: NotificationsConfig{
			Desktop:         true,
			Sound:           true,
			ToastDuration:   5 * time.Second,
			NativeAutoClose: 10 * time.Second,
			SnoozeMinutes:   5,
		},
		Scheduler: SchedulerConfig{Buffer: 64},
		Log: LogConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load layers configuration: defaults, then the TOML file, then the .env
// file, then TASKD_* variables. An explicit path must exist; otherwise
// tarefas.toml in the working directory is used when present.
func Load(path string) (Config, error) {
	cfg := Default()

	file := strings.TrimSpace(path)
	if file == "" && fileExists(DefaultConfigFile) {
		file = DefaultConfigFile
	}
	if file != "" {
		if _, err := toml.DecodeFile(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("loading config file %s: %w", file, err)
		}
	}

	if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading %s: %w", DefaultEnvFile, err)
	}

	cfg = FromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if u := c.API.URL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		errs = append(errs, fmt.Errorf("api.url must be an http(s) url, got %q", u))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout must be positive"))
	}
	if c.API.URL == "" && strings.TrimSpace(c.Storage.DBPath) == "" {
		errs = append(errs, errors.New("storage.db_path is required without api.url"))
	}
	if c.Notifications.ToastDuration <= 0 {
		errs = append(errs, errors.New("notifications.toast_duration must be positive"))
	}
	if c.Notifications.NativeAutoClose <= 0 {
		errs = append(errs, errors.New("notifications.native_auto_close must be positive"))
	}
	if c.Notifications.SnoozeMinutes <= 0 || c.Notifications.SnoozeMinutes > model.MaxMinutes {
		errs = append(errs, fmt.Errorf("notifications.snooze_minutes must be between 1 and %d", model.MaxMinutes))
	}
	if c.Scheduler.Buffer <= 0 {
		errs = append(errs, errors.New("scheduler.buffer must be positive"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.encoding %q is not json or console", c.Log.Encoding))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// UseAPI reports whether tasks live in the REST backend.
func (c Config) UseAPI() bool {
	return strings.TrimSpace(c.API.URL) != ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
