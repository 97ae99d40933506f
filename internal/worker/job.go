package worker

import (
	"time"
)

// Job asks the worker loop for one run.
type Job struct {
	Trigger     string // "cron", "startup", "reload"
	RequestedAt time.Time
}
