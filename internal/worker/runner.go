package worker

import (
	"context"

	"github.com/raoulx24/dir-archiver/internal/mailbox"
	"github.com/raoulx24/dir-archiver/internal/report"
)

// Sink receives every finished run, including ones that failed to start.
type Sink func(ctx context.Context, job Job, res report.RunResult, err error)

// RunLoop takes jobs from mb and runs them one at a time until ctx is done.
func RunLoop(ctx context.Context, w *Worker, mb *mailbox.Mailbox[Job], sink Sink) {
	for {
		job, ok := mb.Take(ctx)
		if !ok {
			return
		}

		w.log.Info("worker: run triggered", "trigger", job.Trigger, "requestedAt", job.RequestedAt)
		res, err := w.Run(ctx)
		if err != nil {
			w.log.Error("worker: run failed", "trigger", job.Trigger, "error", err)
		}
		if sink != nil {
			sink(ctx, job, res, err)
		}
	}
}
