package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/runnerr0/recollect/internal/config"
)

// snapshotDebounce delays the digest after a snapshot lands so the
// writer has finished before we read it.
const snapshotDebounce = 2 * time.Second

// Execute implements the go-flags Commander interface for WatchCommand.
func (c *WatchCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	if c.LogLevel != "" {
		applyLogLevel(c.LogLevel, false)
	}

	return c.runLoop(cfg)
}

// runLoop schedules capture and consolidation on cron and digests
// snapshots as they appear, until SIGINT or SIGTERM.
func (c *WatchCommand) runLoop(cfg *config.Config) error {
	logsDir, err := cfg.LogsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("create logs directory: %w", err)
	}

	// A single mutex serializes sense, digest, and review so the
	// pipeline stages never run concurrently.
	var mu sync.Mutex

	runSense := func() {
		mu.Lock()
		defer mu.Unlock()
		sense := &SenseCommand{globals: c.globals, version: c.version}
		if err := sense.Execute(nil); err != nil {
			log.WithError(err).Error("scheduled capture failed")
		}
	}
	runDigest := func() {
		mu.Lock()
		defer mu.Unlock()
		digest := &DigestCommand{globals: c.globals, version: c.version}
		if err := digest.Execute(nil); err != nil {
			log.WithError(err).Error("digest failed")
		}
	}
	runReview := func() {
		mu.Lock()
		defer mu.Unlock()
		review := &ReviewCommand{Level: "all", globals: c.globals, version: c.version}
		if err := review.Execute(nil); err != nil {
			log.WithError(err).Error("scheduled review failed")
		}
	}

	sched := cron.New()
	if _, err := sched.AddFunc(cfg.Daemon.SenseCron, func() {
		runSense()
		runDigest()
	}); err != nil {
		return fmt.Errorf("invalid sense cron %q: %w", cfg.Daemon.SenseCron, err)
	}
	if _, err := sched.AddFunc(cfg.Daemon.ReviewCron, runReview); err != nil {
		return fmt.Errorf("invalid review cron %q: %w", cfg.Daemon.ReviewCron, err)
	}
	sched.Start()
	defer sched.Stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(logsDir); err != nil {
		return fmt.Errorf("watch %s: %w", logsDir, err)
	}

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigC)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	log.WithField("logs", logsDir).Info("watching for snapshots")
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSnapshotEvent(ev) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(snapshotDebounce, runDigest)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")

		case sig := <-sigC:
			log.WithField("signal", sig.String()).Info("shutting down")
			return nil
		}
	}
}

// isSnapshotEvent reports whether a filesystem event is a freshly
// written, still unprocessed snapshot file.
func isSnapshotEvent(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	return strings.HasSuffix(ev.Name, ".json")
}
