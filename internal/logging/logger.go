package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/nhle/daily-checkin/internal/model"
)

// New builds a JSON zap logger writing to a rolling file. The terminal is
// owned by the UI, so nothing is written to stdout or stderr. An empty
// path yields a no-op logger.
func New(cfg model.LogConfig) (*zap.Logger, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return zap.NewNop(), nil
	}

	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory %s: %w", dir, err)
		}
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    nz(cfg.MaxSizeMB, 10), // megabytes
		MaxBackups: nz(cfg.MaxBackups, 3),
		MaxAge:     nz(cfg.MaxAgeDays, 7), // days
		Compress:   cfg.Compress,
	}

	level := ParseLevel(cfg.Level)
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(lj),
		zap.NewAtomicLevelAt(level),
	)

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if level == zapcore.DebugLevel {
		opts = append(opts, zap.Development())
	}

	return zap.New(core, opts...), nil
}

func encoderConfig() zapcore.EncoderConfig {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = timeEncoder
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encCfg.EncodeDuration = zapcore.MillisDurationEncoder
	return encCfg
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func nz(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
