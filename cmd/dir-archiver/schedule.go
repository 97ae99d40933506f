package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raoulx24/dir-archiver/internal/config"
	"github.com/raoulx24/dir-archiver/internal/logging"
	"github.com/raoulx24/dir-archiver/internal/mailbox"
	"github.com/raoulx24/dir-archiver/internal/scheduler"
	"github.com/raoulx24/dir-archiver/internal/watcher"
	"github.com/raoulx24/dir-archiver/internal/worker"
)

var (
	scheduleConfigPath string
	scheduleRunNow     bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run archive passes on the configured cron schedule",
	Long: `Stay in the foreground and run an archive pass on every schedule.cron
activation. Runs never overlap: a tick that arrives while a run is in
progress is queued, and further ticks replace it.

SIGHUP, or a change to the config file when configReload.enabled is set,
reloads the configuration. SIGINT and SIGTERM stop after the current
directory.`,
	Args: cobra.NoArgs,
	RunE: scheduleHandler,
}

func init() {
	scheduleCmd.Flags().StringVarP(&scheduleConfigPath, "config", "c", defaultConfigPath, "config file (.yaml, .yml or .toml)")
	scheduleCmd.Flags().BoolVar(&scheduleRunNow, "run-now", false, "start one run immediately")
}

func scheduleHandler(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(scheduleConfigPath)
	if err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	pub, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mb := mailbox.New[worker.Job]()
	w := worker.New(cfg.Archive, log, nil)

	sched, err := scheduler.New(cfg.Schedule.Cron, mb, log)
	if err != nil {
		return err
	}

	apply := func(nc *config.Config) {
		w.UpdateConfig(nc.Archive)
		if err := sched.UpdateSchedule(nc.Schedule.Cron); err != nil {
			log.Error("schedule: keeping previous schedule", "error", err)
		}
		pub.update(nc)
	}

	if cfg.ConfigReload.Enabled {
		watch := watcher.New(scheduleConfigPath, cfg.ConfigReload, log, apply)
		go func() {
			if err := watch.Start(ctx); err != nil {
				log.Error("schedule: config watcher stopped", "error", err)
			}
		}()
	}
	go reloadOnSIGHUP(ctx, scheduleConfigPath, log, apply)

	var srv *http.Server
	if cfg.Metrics.Listen != "" {
		srv = serveMetrics(cfg.Metrics.Listen, pub, log)
	}

	if err := sched.Start(ctx); err != nil {
		return err
	}
	log.Info("schedule: started", "version", Version, "config", scheduleConfigPath,
		"root", cfg.Archive.Root, "cron", cfg.Schedule.Cron, "next", sched.Next())

	if scheduleRunNow {
		mb.Put(worker.Job{Trigger: "startup", RequestedAt: time.Now()})
	}

	worker.RunLoop(ctx, w, mb, pub.sink)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
	log.Info("schedule: exit complete")
	return nil
}

func reloadOnSIGHUP(ctx context.Context, path string, log logging.Logger, apply func(*config.Config)) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			nc, err := config.Load(path)
			if err != nil {
				log.Error("schedule: config reload failed", "error", err)
				continue
			}
			if err := validateConfig(nc); err != nil {
				log.Error("schedule: config reload rejected", "error", err)
				continue
			}
			apply(nc)
			log.Info("schedule: config reloaded")
		}
	}
}

func serveMetrics(addr string, pub *publisher, log logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", pub.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Info("schedule: serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("schedule: metrics server failed", "error", err)
		}
	}()
	return srv
}
