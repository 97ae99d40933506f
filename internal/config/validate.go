package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DateLayout is the format of archive.deleteBefore.
const DateLayout = "2006-01-02"

// Validate returns every problem found, not only the first.
func (c *Config) Validate() []error {
	var errs []error

	a := c.Archive
	if strings.TrimSpace(a.Root) == "" {
		errs = append(errs, errors.New("archive.root is required"))
	}
	if a.ArchiveAfterDays < 0 {
		errs = append(errs, fmt.Errorf("archive.archiveAfterDays must not be negative, got %d", a.ArchiveAfterDays))
	}
	if a.DeleteAfterDays < 0 {
		errs = append(errs, fmt.Errorf("archive.deleteAfterDays must not be negative, got %d", a.DeleteAfterDays))
	}
	if a.DeleteAfterDays > 0 && a.DeleteBefore != "" {
		errs = append(errs, errors.New("archive.deleteAfterDays and archive.deleteBefore are mutually exclusive"))
	}
	if a.DeleteBefore != "" {
		if _, err := time.ParseInLocation(DateLayout, a.DeleteBefore, time.Local); err != nil {
			errs = append(errs, fmt.Errorf("archive.deleteBefore must be YYYY-MM-DD: %w", err))
		}
	}
	switch a.OnCollision {
	case "suffix", "fail":
	default:
		errs = append(errs, fmt.Errorf("archive.onCollision must be suffix or fail, got %q", a.OnCollision))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level invalid: %q", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format invalid: %q", c.Logging.Format))
	}

	tg := c.Notify.Telegram
	if tg.Enabled {
		if tg.Token == "" {
			errs = append(errs, errors.New("notify.telegram.token is required when telegram is enabled"))
		}
		if tg.ChatID == "" {
			errs = append(errs, errors.New("notify.telegram.chatId is required when telegram is enabled"))
		}
	}
	if tg.ProxyURL != "" {
		if _, err := url.Parse(tg.ProxyURL); err != nil {
			errs = append(errs, fmt.Errorf("notify.telegram.proxyUrl: %w", err))
		}
	}

	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			errs = append(errs, fmt.Errorf("schedule.cron: %w", err))
		}
	}

	switch c.ConfigReload.Mode {
	case "auto", "poll", "fsnotify":
	default:
		errs = append(errs, fmt.Errorf("configReload.mode must be auto, poll or fsnotify, got %q", c.ConfigReload.Mode))
	}
	if c.ConfigReload.Enabled && c.ConfigReload.PollInterval.Std() <= 0 {
		errs = append(errs, errors.New("configReload.pollInterval must be positive"))
	}

	return errs
}
