package main

import (
	"context"
	"sync"
	"time"

	"github.com/raoulx24/dir-archiver/internal/config"
	"github.com/raoulx24/dir-archiver/internal/logging"
	"github.com/raoulx24/dir-archiver/internal/metrics"
	"github.com/raoulx24/dir-archiver/internal/notify"
	"github.com/raoulx24/dir-archiver/internal/report"
	"github.com/raoulx24/dir-archiver/internal/worker"
)

const notifyTimeout = 30 * time.Second

// publisher hands each finished run to metrics and the notifier.
type publisher struct {
	mu       sync.RWMutex
	log      logging.Logger
	metrics  *metrics.Metrics
	textfile string
	notifier notify.Notifier
}

func newPublisher(cfg *config.Config, log logging.Logger) (*publisher, error) {
	n, err := newNotifier(cfg.Notify.Telegram, log)
	if err != nil {
		return nil, err
	}
	return &publisher{
		log:      log,
		metrics:  metrics.New(cfg.Metrics.Namespace),
		textfile: cfg.Metrics.Textfile,
		notifier: n,
	}, nil
}

func newNotifier(cfg config.TelegramConfig, log logging.Logger) (notify.Notifier, error) {
	if !cfg.Enabled {
		return notify.Nop{}, nil
	}
	return notify.NewTelegram(cfg, log)
}

// update swaps the textfile target and notifier after a config reload.
// The metrics registry is kept so counters stay monotonic.
func (p *publisher) update(cfg *config.Config) {
	n, err := newNotifier(cfg.Notify.Telegram, p.log)
	if err != nil {
		p.log.Error("publish: notifier not updated", "error", err)
		n = nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.textfile = cfg.Metrics.Textfile
	if n != nil {
		p.notifier = n
	}
}

func (p *publisher) publish(ctx context.Context, res report.RunResult) {
	p.mu.RLock()
	textfile, notifier := p.textfile, p.notifier
	p.mu.RUnlock()

	p.metrics.Observe(res)
	if textfile != "" {
		if err := p.metrics.WriteTextfile(textfile); err != nil {
			p.log.Error("publish: writing metrics textfile failed", "path", textfile, "error", err)
		}
	}

	// a run interrupted by a signal still gets reported
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := notifier.Notify(nctx, res); err != nil {
		p.log.Error("publish: notification failed", "error", err)
	}
}

// sink adapts publish to worker.RunLoop. Runs that never started are
// only logged.
func (p *publisher) sink(ctx context.Context, _ worker.Job, res report.RunResult, err error) {
	if err != nil {
		return
	}
	p.publish(ctx, res)
}
