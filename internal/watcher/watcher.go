// Package watcher reloads the configuration file when it changes on disk.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/raoulx24/dir-archiver/internal/config"
	"github.com/raoulx24/dir-archiver/internal/fsprobe"
	"github.com/raoulx24/dir-archiver/internal/logging"
)

// ReloadFunc receives every configuration that loaded and validated.
type ReloadFunc func(cfg *config.Config)

// Watcher observes one config file and calls onReload after it changes.
// Invalid files are logged and ignored; the running config stays.
type Watcher struct {
	mu sync.RWMutex

	path     string
	mode     string
	interval time.Duration
	debounce time.Duration

	log      logging.Logger
	onReload ReloadFunc

	lastModTime time.Time
	lastSize    int64
}

func New(path string, cfg config.ReloadConfig, log logging.Logger, onReload ReloadFunc) *Watcher {
	w := &Watcher{
		path:     path,
		mode:     cfg.Mode,
		interval: cfg.PollInterval.Std(),
		debounce: cfg.DebounceWindow.Std(),
		log:      log,
		onReload: onReload,
	}
	if st, err := os.Stat(path); err == nil {
		w.lastModTime, w.lastSize = st.ModTime(), st.Size()
	}
	return w
}

// Start blocks until ctx is done, using the configured strategy. "auto"
// probes the config directory and falls back to polling.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.RLock()
	mode := w.mode
	w.mu.RUnlock()

	switch mode {
	case fsprobe.ModeAuto:
		resolved, res := fsprobe.Resolve(mode, filepath.Dir(w.path))
		if resolved == fsprobe.ModePoll {
			w.log.Warn("watcher: fsnotify disabled, polling", "reason", res.Reason)
			w.StartPolling(ctx)
			return nil
		}
		return w.StartFsNotify(ctx)

	case fsprobe.ModeFsnotify:
		return w.StartFsNotify(ctx)

	case fsprobe.ModePoll:
		w.StartPolling(ctx)
		return nil

	default:
		return fmt.Errorf("unknown reload mode %q", mode)
	}
}

// UpdateConfig applies new timings. A mode change takes effect on restart.
func (w *Watcher) UpdateConfig(cfg config.ReloadConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.interval = cfg.PollInterval.Std()
	w.debounce = cfg.DebounceWindow.Std()
	if cfg.Mode != w.mode {
		w.log.Warn("watcher: reload mode change needs a restart", "current", w.mode, "requested", cfg.Mode)
	}
}

// detect reloads if the file's mtime or size moved since the last load.
func (w *Watcher) detect() {
	st, err := os.Stat(w.path)
	if err != nil {
		w.log.Debug("watcher: config not readable", "path", w.path, "error", err)
		return
	}

	w.mu.Lock()
	if st.ModTime().Equal(w.lastModTime) && st.Size() == w.lastSize {
		w.mu.Unlock()
		return
	}
	w.lastModTime, w.lastSize = st.ModTime(), st.Size()
	w.mu.Unlock()

	w.reload()
}

func (w *Watcher) reload() {
	cfg, err := config.Load(w.path)
	if err != nil {
		w.log.Error("watcher: config reload failed, keeping current", "path", w.path, "error", err)
		return
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			w.log.Error("watcher: invalid config, keeping current", "path", w.path, "error", e)
		}
		return
	}

	w.log.Info("watcher: config reloaded", "path", w.path)
	w.UpdateConfig(cfg.ConfigReload)
	w.onReload(cfg)
}
