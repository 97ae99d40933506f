// Package notify sends run summaries to external channels.
package notify

import (
	"context"

	"github.com/raoulx24/dir-archiver/internal/report"
)

// Notifier delivers a finished run somewhere a human will see it.
type Notifier interface {
	Notify(ctx context.Context, r report.RunResult) error
}

// Nop is used when no channel is configured.
type Nop struct{}

func (Nop) Notify(context.Context, report.RunResult) error { return nil }
