package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/recollect/internal/config"
	"github.com/runnerr0/recollect/internal/journal"
	"github.com/runnerr0/recollect/internal/memory"
	"github.com/runnerr0/recollect/internal/sensor"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string `json:"version"`
	DatabasePath      string `json:"database_path"`
	DatabaseSizeBytes int64  `json:"database_size_bytes"`
	PendingSnapshots  int    `json:"pending_snapshots"`
	DailyNotes        int    `json:"daily_notes"`
	WeeklyNotes       int    `json:"weekly_notes"`
	MonthlyNotes      int    `json:"monthly_notes"`
	YearlyNotes       int    `json:"yearly_notes"`
	StoredMemories    int64  `json:"stored_memories"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
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

	return c.executeWithStore(cfg, store, db)
}

// executeWithStore runs status against a provided store and db (for testing).
func (c *StatusCommand) executeWithStore(cfg *config.Config, store memory.Store, db *sql.DB) error {
	ctx := context.Background()

	logsDir, err := cfg.LogsPath()
	if err != nil {
		return err
	}
	pending, err := sensor.PendingSnapshots(logsDir)
	if err != nil {
		return err
	}

	journalDir, err := cfg.JournalPath()
	if err != nil {
		return err
	}

	counts := map[string]int{}
	for _, suffix := range []string{"_daily.md", "_weekly.md", "_monthly.md", "_yearly.md"} {
		notes, err := journal.ListNotes(journalDir, suffix)
		if err != nil {
			return err
		}
		counts[suffix] = len(notes)
	}

	memories, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count memories: %w", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return err
	}
	dbSize := getDatabaseSize(db, dbPath)

	out := statusJSON{
		Version:           c.version,
		DatabasePath:      dbPath,
		DatabaseSizeBytes: dbSize,
		PendingSnapshots:  len(pending),
		DailyNotes:        counts["_daily.md"],
		WeeklyNotes:       counts["_weekly.md"],
		MonthlyNotes:      counts["_monthly.md"],
		YearlyNotes:       counts["_yearly.md"],
		StoredMemories:    memories,
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	return printStatusHuman(out)
}

func printStatusHuman(s statusJSON) error {
	fmt.Println("Recollect Status")
	fmt.Println("================")
	fmt.Printf("Version:            %s\n", s.Version)
	fmt.Printf("Database:           %s (%s)\n", s.DatabasePath, formatBytes(s.DatabaseSizeBytes))
	fmt.Printf("Pending snapshots:  %d\n", s.PendingSnapshots)
	fmt.Printf("Journal notes:      %d daily / %d weekly / %d monthly / %d yearly\n",
		s.DailyNotes, s.WeeklyNotes, s.MonthlyNotes, s.YearlyNotes)
	fmt.Printf("Stored memories:    %d\n", s.StoredMemories)
	return nil
}

// getDatabaseSize returns the database file size in bytes. For on-disk
// databases it uses os.Stat; in-memory databases fall back to
// page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
