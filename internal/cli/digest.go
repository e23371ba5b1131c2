package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/runnerr0/recollect/internal/config"
	"github.com/runnerr0/recollect/internal/journal"
	"github.com/runnerr0/recollect/internal/sensor"
	"github.com/runnerr0/recollect/internal/summarize"
	"github.com/runnerr0/recollect/internal/timeline"
)

var log = logrus.WithField("component", "cli")

// factIngestor is the slice of the memory manager the digest needs.
type factIngestor interface {
	IngestFact(ctx context.Context, fact, date string, meta map[string]any) error
}

// daySummarizer produces a narrative and facts from a day's timeline.
type daySummarizer interface {
	SummarizeDay(ctx context.Context, date, timelineText string) (*summarize.DailySummary, error)
}

// Execute implements the go-flags Commander interface for DigestCommand.
func (c *DigestCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	if c.DryRun {
		return c.digestPending(context.Background(), cfg, nil, nil)
	}

	store, db, err := openMemoryStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	mgr, err := newMemoryManager(cfg, store)
	if err != nil {
		return err
	}

	provider, err := summarize.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}

	return c.digestPending(context.Background(), cfg, summarize.NewSummarizer(provider, cfg.LLM.ContextLimit), mgr)
}

// digestPending processes every unprocessed snapshot in the logs
// directory. A nil summarizer means dry-run: print timelines only.
func (c *DigestCommand) digestPending(ctx context.Context, cfg *config.Config, summarizer daySummarizer, mgr factIngestor) error {
	logsDir, err := cfg.LogsPath()
	if err != nil {
		return err
	}

	pending, err := sensor.PendingSnapshots(logsDir)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("No pending snapshots.")
		return nil
	}

	rules, err := loadRules(cfg)
	if err != nil {
		return err
	}

	// One categorizer for the whole run: its dedup set must span every
	// snapshot so an uncategorized pair is audited at most once per
	// process.
	var audit io.Writer
	if f, err := openAudit(cfg); err != nil {
		return err
	} else if f != nil {
		audit = f
		defer f.Close()
	}
	cat := timeline.NewCategorizer(rules, audit)

	// A failing snapshot is left unprocessed for retry; later snapshots
	// still get their turn.
	var errs []error
	for _, path := range pending {
		if err := c.digestOne(ctx, cfg, cat, summarizer, mgr, path); err != nil {
			log.WithError(err).WithField("snapshot", path).Error("digest failed, snapshot left for retry")
			errs = append(errs, fmt.Errorf("digest %s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// digestOne runs one snapshot through the full pipeline: fuse,
// sessionize, categorize, smooth, summarize, journal, memorize.
func (c *DigestCommand) digestOne(ctx context.Context, cfg *config.Config, cat *timeline.Categorizer, summarizer daySummarizer, mgr factIngestor, path string) error {
	snap, err := sensor.LoadSnapshot(path)
	if err != nil {
		return err
	}

	fused := timeline.Fuse(snap.BrowserHistory, snap.WindowActivity)
	sessions := timeline.Sessionize(fused, time.Duration(cfg.Timeline.GapThresholdSeconds)*time.Second)

	blocks := timeline.Smooth(cat.CategorizeSessions(sessions))

	visible := timeline.VisibleBlocks(blocks, time.Duration(cfg.Timeline.MinVisibleSeconds)*time.Second)
	text := timeline.FormatTimeline(visible)

	if summarizer == nil {
		fmt.Printf("== %s ==\n%s\n", snap.Day(), text)
		return nil
	}

	if len(visible) == 0 {
		log.WithField("snapshot", path).Warn("snapshot produced an empty timeline, skipping")
		return sensor.MarkProcessed(path)
	}

	summary, err := summarizer.SummarizeDay(ctx, snap.Day(), text)
	if err != nil {
		return fmt.Errorf("summarize day %s: %w", snap.Day(), err)
	}

	journalDir, err := cfg.JournalPath()
	if err != nil {
		return err
	}

	notePath, err := journal.WriteDaily(journalDir, snap.Day(), summary.Narrative, summary.Facts)
	if errors.Is(err, fs.ErrExist) {
		log.WithField("date", snap.Day()).Warn("daily journal already exists, marking snapshot processed")
		return sensor.MarkProcessed(path)
	}
	if err != nil {
		return err
	}

	for _, fact := range summary.Facts {
		if err := mgr.IngestFact(ctx, fact, snap.Day(), map[string]any{"source": "daily"}); err != nil {
			return err
		}
	}

	fmt.Printf("Digested %s -> %s (%d facts)\n", snap.Day(), notePath, len(summary.Facts))
	return sensor.MarkProcessed(path)
}

// openAudit opens the uncategorized-activity audit log for appending.
// Audit logging is best-effort: a failure disables it for the run.
func openAudit(cfg *config.Config) (*os.File, error) {
	auditPath, err := cfg.AuditPath()
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(auditPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		log.WithError(err).Warn("audit log unavailable")
		return nil, nil
	}
	return f, nil
}
