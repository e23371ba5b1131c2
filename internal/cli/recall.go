package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/runnerr0/recollect/internal/memory"
)

// recaller is the slice of the memory manager the recall command needs.
type recaller interface {
	Query(ctx context.Context, text string, n int, before time.Time) ([]memory.Candidate, error)
}

// recallJSON is the JSON output structure for one recalled memory.
type recallJSON struct {
	Content  string  `json:"content"`
	Date     string  `json:"date,omitempty"`
	Score    float64 `json:"score"`
	Distance float64 `json:"distance"`
}

// Execute implements the go-flags Commander interface for RecallCommand.
func (c *RecallCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
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

	limit := cfg.Memory.TopK
	if c.Limit > 0 {
		limit = c.Limit
	}

	var before time.Time
	if c.Before != "" {
		before, err = time.Parse("2006-01-02", c.Before)
		if err != nil {
			return fmt.Errorf("parse --before date %q: %w", c.Before, err)
		}
	}

	query := strings.Join(c.Args.Query, " ")
	return c.recall(context.Background(), mgr, query, limit, before)
}

func (c *RecallCommand) recall(ctx context.Context, mgr recaller, query string, limit int, before time.Time) error {
	candidates, err := mgr.Query(ctx, query, limit, before)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		out := make([]recallJSON, len(candidates))
		for i, cand := range candidates {
			out[i] = recallJSON{
				Content:  cand.Content,
				Score:    cand.Score,
				Distance: cand.Distance,
			}
			if date, ok := cand.Metadata["date"].(string); ok {
				out[i].Date = date
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(candidates) == 0 {
		fmt.Println("No memories found.")
		return nil
	}

	for i, cand := range candidates {
		date := ""
		if d, ok := cand.Metadata["date"].(string); ok {
			date = " (" + d + ")"
		}
		fmt.Printf("%d. [%.3f]%s %s\n", i+1, cand.Score, date, cand.Content)
	}
	return nil
}
