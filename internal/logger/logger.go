package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level    string
	Encoding string
	Path     string
}

// New builds a zap.Logger writing to cfg.Path. Without a path it returns a
// no-op logger, since stdout and stderr belong to the terminal UI. The
// returned close func flushes and closes the file.
func New(cfg Config) (*zap.Logger, func() error, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return zap.NewNop(), func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	log := zap.New(newCore(cfg, zapcore.AddSync(f)), zap.AddCaller())
	closeFn := func() error {
		_ = log.Sync()
		return f.Close()
	}
	return log, closeFn, nil
}

func newCore(cfg Config, out zapcore.WriteSyncer) zapcore.Core {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		// fall back to info level if parsing fails
		level = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case "console":
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}
	return zapcore.NewCore(encoder, zapcore.Lock(out), level)
}
