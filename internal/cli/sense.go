package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/runnerr0/recollect/internal/sensor"
	"github.com/runnerr0/recollect/internal/timeline"
)

// historySource and windowSource abstract the two capture inputs so
// tests can substitute fixtures.
type historySource interface {
	Extract(ctx context.Context, lookback time.Duration) ([]timeline.BrowserVisit, error)
}

type windowSource interface {
	FetchWindowEvents(ctx context.Context, lookback time.Duration) ([]timeline.WindowFocusEvent, error)
}

// Execute implements the go-flags Commander interface for SenseCommand.
func (c *SenseCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	sanitizer := sensor.NewSanitizer(cfg.Privacy)
	reader := sensor.NewHistoryReader(sanitizer, cfg.Sensor.HistoryLimit, "")
	aw := sensor.NewAWClient(cfg.Sensor.ActivityWatchURL, sanitizer)

	hours := cfg.Sensor.Hours
	if c.Hours > 0 {
		hours = c.Hours
	}

	logsDir, err := cfg.LogsPath()
	if err != nil {
		return err
	}

	return c.capture(context.Background(), reader, aw, logsDir, time.Duration(hours)*time.Hour, time.Now())
}

// capture pulls both sources and writes one snapshot. Either source
// may come back empty; an empty snapshot is still recorded so gaps in
// the journal are visible.
func (c *SenseCommand) capture(ctx context.Context, history historySource, windows windowSource, logsDir string, lookback time.Duration, now time.Time) error {
	visits, err := history.Extract(ctx, lookback)
	if err != nil {
		return fmt.Errorf("extract browser history: %w", err)
	}

	events, err := windows.FetchWindowEvents(ctx, lookback)
	if err != nil {
		return fmt.Errorf("fetch window events: %w", err)
	}

	if c.DryRun {
		fmt.Printf("Would capture %d browser visits and %d window events\n", len(visits), len(events))
		return nil
	}

	snap := sensor.NewSnapshot(now, visits, events)
	path, err := snap.Write(logsDir, now)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	fmt.Printf("Captured %d browser visits and %d window events\n", len(visits), len(events))
	fmt.Printf("Snapshot: %s\n", path)
	return nil
}
