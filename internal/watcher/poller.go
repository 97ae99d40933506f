package watcher

import (
	"context"
	"time"
)

// StartPolling checks the config file every poll interval. An interval
// changed by a reload applies from the next tick.
func (w *Watcher) StartPolling(ctx context.Context) {
	interval := w.currentInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.detect()
			if next := w.currentInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

func (w *Watcher) currentInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.interval
}
