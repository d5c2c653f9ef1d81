// Package logger is a small leveled wrapper over log/slog. Until Init is
// called every message is discarded.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	mu            sync.RWMutex
	defaultLogger = newLogger(slog.LevelInfo, io.Discard)
)

func newLogger(level slog.Level, output io.Writer) *slog.Logger {
	opts := slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.SourceKey:
				if source, ok := a.Value.Any().(*slog.Source); ok && source != nil {
					source.File = filepath.Base(source.File)
				}
			case slog.TimeKey:
				a.Value = slog.StringValue(a.Value.Time().Format(time.TimeOnly))
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(output, &opts))
}

// Init replaces the package logger. A nil output discards everything.
func Init(level slog.Level, output io.Writer) {
	if output == nil {
		output = io.Discard
	}
	l := newLogger(level, output)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	l.Info("logger initialized", slog.String("level", level.String()))
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Setup opens path for appending and initialises the logger with it. An
// empty path discards output; "-" logs to stderr. The returned closer must
// be closed on exit.
func Setup(level, path string) (io.Closer, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch path {
	case "":
		Init(lvl, io.Discard)
		return io.NopCloser(nil), nil
	case "-":
		Init(lvl, os.Stderr)
		return io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	Init(lvl, f)
	return f, nil
}

// logAtLevel records the caller of the exported wrapper as the source.
func logAtLevel(level slog.Level, format string, args ...any) {
	l := Get()
	if !l.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, fmt.Sprintf(format, args...), pcs[0])
	_ = l.Handler().Handle(context.Background(), r)
}

func Debugf(format string, args ...any) { logAtLevel(slog.LevelDebug, format, args...) }

func Infof(format string, args ...any) { logAtLevel(slog.LevelInfo, format, args...) }

func Warnf(format string, args ...any) { logAtLevel(slog.LevelWarn, format, args...) }

func Errorf(format string, args ...any) { logAtLevel(slog.LevelError, format, args...) }

// Get returns the current logger.
func Get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}
