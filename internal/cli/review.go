package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/recollect/internal/journal"
	"github.com/runnerr0/recollect/internal/summarize"
)

// Execute implements the go-flags Commander interface for ReviewCommand.
func (c *ReviewCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}

	switch c.Level {
	case "weekly", "monthly", "yearly", "all":
	default:
		return fmt.Errorf("invalid level %q (use weekly, monthly, yearly, or all)", c.Level)
	}

	provider, err := summarize.NewProvider(cfg.LLM)
	if err != nil {
		return err
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

	journalDir, err := cfg.JournalPath()
	if err != nil {
		return err
	}

	rollup := journal.NewRollup(journalDir, provider, mgr)
	return c.consolidate(context.Background(), rollup)
}

func (c *ReviewCommand) consolidate(ctx context.Context, rollup *journal.Rollup) error {
	var written []string

	if c.Level == "weekly" || c.Level == "all" {
		paths, err := rollup.CreateWeekly(ctx)
		if err != nil {
			return fmt.Errorf("weekly consolidation: %w", err)
		}
		written = append(written, paths...)
	}
	if c.Level == "monthly" || c.Level == "all" {
		paths, err := rollup.CreateMonthly(ctx)
		if err != nil {
			return fmt.Errorf("monthly consolidation: %w", err)
		}
		written = append(written, paths...)
	}
	if c.Level == "yearly" || c.Level == "all" {
		paths, err := rollup.CreateYearly(ctx)
		if err != nil {
			return fmt.Errorf("yearly consolidation: %w", err)
		}
		written = append(written, paths...)
	}

	if len(written) == 0 {
		fmt.Println("Nothing to consolidate.")
		return nil
	}
	for _, p := range written {
		fmt.Printf("Wrote %s\n", p)
	}
	return nil
}
