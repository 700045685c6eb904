package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// FromEnv applies TASKD_* overrides on top of base.
func FromEnv(base Config) Config {
	cfg := base
	if v, ok := getEnvString("TASKD_API_URL"); ok {
		cfg.API.URL = v
	}
	if v, ok := getEnvString("TASKD_API_TOKEN"); ok {
		cfg.API.Token = v
	}
	if v, ok := getEnvString("TASKD_API_EMAIL"); ok {
		cfg.API.Email = v
	}
	if v, ok := getEnvString("TASKD_API_PASSWORD"); ok {
		cfg.API.Password = v
	}
	if v, ok := getEnvDuration("TASKD_API_TIMEOUT"); ok && v > 0 {
		cfg.API.Timeout = v
	}
	if v, ok := getEnvString("TASKD_DB_PATH"); ok {
		cfg.Storage.DBPath = v
	}
	if v, ok := getEnvString("TASKD_PREFS_FILE"); ok {
		cfg.Storage.PrefsPath = v
	}
	if v, ok := getEnvBool("TASKD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.Notifications.Desktop = v
	}
	if v, ok := getEnvBool("TASKD_SOUND"); ok {
		cfg.Notifications.Sound = v
	}
	if v, ok := getEnvDuration("TASKD_TOAST_DURATION"); ok && v > 0 {
		cfg.Notifications.ToastDuration = v
	}
	if v, ok := getEnvDuration("TASKD_NATIVE_AUTO_CLOSE"); ok && v > 0 {
		cfg.Notifications.NativeAutoClose = v
	}
	if v, ok := getEnvInt("TASKD_SNOOZE_MINUTES"); ok && v > 0 {
		cfg.Notifications.SnoozeMinutes = v
	}
	if v, ok := getEnvInt("TASKD_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.Scheduler.Buffer = v
	}
	if v, ok := getEnvString("TASKD_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := getEnvString("TASKD_LOG_ENCODING"); ok {
		cfg.Log.Encoding = v
	}
	if v, ok := getEnvString("TASKD_LOG_FILE"); ok {
		cfg.Log.Path = v
	}
	return cfg
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// getEnvDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return d, true
}
