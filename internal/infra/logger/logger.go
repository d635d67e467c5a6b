// Package logger owns the process-wide slog logger. It writes JSON lines to
// <workspace>/.glimpse/logs/glimpse.log and discards everything until Setup.
package logger

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aalvaropc/glimpse/internal/domain"
)

// MaxSize is the size at which Setup rotates glimpse.log to glimpse.log.1.
const MaxSize = 5 << 20

// Config controls where the process-wide logger writes: <Root>/.glimpse/logs/glimpse.log.
type Config struct {
	Root  string
	Debug bool
}

var (
	mu      sync.RWMutex
	global  = discard()
	logFile *os.File
	logPath string
)

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func Setup(cfg Config) (func() error, error) {
	root := filepath.Clean(cfg.Root)
	if root == "" {
		root = "."
	}

	dir := filepath.Join(root, ".glimpse", "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		reset()
		return nil, err
	}

	path := filepath.Join(dir, "glimpse.log")
	if err := rotate(path, MaxSize); err != nil {
		reset()
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		reset()
		return nil, err
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	l := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level:       level,
		AddSource:   cfg.Debug,
		ReplaceAttr: replaceAttr,
	}))

	mu.Lock()
	global = l
	logFile = f
	logPath = path
	mu.Unlock()

	l.Info("logger.initialized", "path", path, "debug", cfg.Debug)

	cleanup := func() error {
		mu.Lock()
		defer mu.Unlock()

		var cerr error
		if logFile != nil {
			cerr = logFile.Close()
		}
		logFile = nil
		logPath = ""
		global = discard()
		return cerr
	}

	return cleanup, nil
}

// replaceAttr writes times in UTC and hides values of secret-looking keys
// (fill values and vars end up in debug logs).
func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
		return a
	}
	if domain.IsSensitiveKey(a.Key) && a.Value.Kind() != slog.KindGroup {
		a.Value = slog.StringValue(domain.MaskedValue)
	}
	return a
}

// rotate moves path to path+".1" once it reaches limit bytes.
func rotate(path string, limit int64) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Size() < limit {
		return nil
	}
	return os.Rename(path, path+".1")
}

// L returns the process-wide logger; it discards everything until Setup succeeds.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Path is the active log file, or "" when logging is off.
func Path() string {
	mu.RLock()
	defer mu.RUnlock()
	return logPath
}

func reset() {
	mu.Lock()
	defer mu.Unlock()
	global = discard()
	logFile = nil
	logPath = ""
}
