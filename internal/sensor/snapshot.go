package sensor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/runnerr0/recollect/internal/timeline"
)

const (
	snapshotPrefix    = "sensor_log_"
	processedSuffix   = ".processed"
	snapshotTimestamp = "20060102_150405"
)

// Snapshot is one sensor run: everything captured for a time window,
// written as a JSON file and consumed later by the digest step.
type Snapshot struct {
	Date           string                      `json:"date"`
	BrowserHistory []timeline.BrowserVisit     `json:"browser_history"`
	WindowActivity []timeline.WindowFocusEvent `json:"window_activity"`
}

// NewSnapshot builds a snapshot dated now.
func NewSnapshot(now time.Time, history []timeline.BrowserVisit, activity []timeline.WindowFocusEvent) *Snapshot {
	if history == nil {
		history = []timeline.BrowserVisit{}
	}
	if activity == nil {
		activity = []timeline.WindowFocusEvent{}
	}
	return &Snapshot{
		Date:           now.Format(time.RFC3339),
		BrowserHistory: history,
		WindowActivity: activity,
	}
}

// Day returns the snapshot's calendar date (YYYY-MM-DD).
func (s *Snapshot) Day() string {
	if t, err := time.Parse(time.RFC3339, s.Date); err == nil {
		return t.Format("2006-01-02")
	}
	// Tolerate a bare date or a malformed value.
	if len(s.Date) >= 10 {
		return s.Date[:10]
	}
	return s.Date
}

// Write stores the snapshot under dir with a timestamped filename and
// returns the path.
func (s *Snapshot) Write(dir string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create logs directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	path := filepath.Join(dir, snapshotPrefix+now.Format(snapshotTimestamp)+".json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", filepath.Base(path), err)
	}
	return &s, nil
}

// PendingSnapshots lists unprocessed snapshot files under dir, oldest
// first.
func PendingSnapshots(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read logs directory: %w", err)
	}

	paths := make([]string, 0)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) {
			continue
		}
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// MarkProcessed renames a snapshot so it is skipped by later runs.
func MarkProcessed(path string) error {
	if err := os.Rename(path, path+processedSuffix); err != nil {
		return fmt.Errorf("mark snapshot processed: %w", err)
	}
	return nil
}
