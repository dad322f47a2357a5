// Package configwatch reloads the config file while the bot is running.
package configwatch

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jdelaire/clipbot/internal/config"
)

// DefaultInterval is how often the file is polled when no interval is given.
const DefaultInterval = 5 * time.Second

// Watcher polls one config file. When the file's modification time or size
// changes it is parsed again and, if valid, passed to every reload callback.
// A file that fails to parse is logged and the previous settings stay live.
type Watcher struct {
	path     string
	interval time.Duration
	logger   *slog.Logger
	load     func(path string) (*config.Config, error)

	mu       sync.Mutex
	stamp    fileStamp
	handlers []func(*config.Config)
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

func (s fileStamp) missing() bool { return s.modTime.IsZero() }

// New creates a Watcher for path.
func New(path string, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		path:     path,
		interval: interval,
		logger:   logger,
		load:     config.LoadFile,
		stamp:    stat(path),
	}
}

// OnReload registers fn to receive each successfully parsed config.
func (w *Watcher) OnReload(fn func(*config.Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, fn)
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check compares the file against the last seen state and reloads it when
// it changed. It reports whether a reload was applied.
func (w *Watcher) Check() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := stat(w.path)
	// Missing files are usually an editor mid-save.
	if current.missing() || current == w.stamp {
		return false
	}
	w.stamp = current

	cfg, err := w.load(w.path)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous settings", "path", w.path, "error", err)
		return false
	}

	w.logger.Info("config reloaded", "path", w.path, "allowed_chats", len(cfg.AllowedChats))
	for _, fn := range w.handlers {
		fn(cfg)
	}
	return true
}

func stat(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size()}
}
