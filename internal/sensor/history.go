package sensor

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/runnerr0/recollect/internal/timeline"
)

var log = logrus.WithField("component", "sensor")

// webkitEpochOffsetSeconds is the gap between the WebKit epoch
// (1601-01-01) and the Unix epoch. Chrome stores visit times as
// microseconds since the WebKit epoch.
const webkitEpochOffsetSeconds = 11644473600

const shadowCopyAttempts = 3

// historyCandidates returns the browser history database paths to try,
// in priority order (Chrome before Edge, per platform).
func historyCandidates() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		// Windows
		filepath.Join(home, "AppData", "Local", "Google", "Chrome", "User Data", "Default", "History"),
		filepath.Join(home, "AppData", "Local", "Microsoft", "Edge", "User Data", "Default", "History"),
		// macOS
		filepath.Join(home, "Library", "Application Support", "Google", "Chrome", "Default", "History"),
		// Linux
		filepath.Join(home, ".config", "google-chrome", "Default", "History"),
		filepath.Join(home, ".config", "chromium", "Default", "History"),
	}
}

// findHistoryDB locates the first existing browser history database.
func findHistoryDB() (string, bool) {
	for _, p := range historyCandidates() {
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// shadowCopy copies the history database to dest, retrying with
// backoff because a running browser holds a lock on the file.
func shadowCopy(src, dest string) error {
	var lastErr error
	for attempt := 1; attempt <= shadowCopyAttempts; attempt++ {
		lastErr = copyFile(src, dest)
		if lastErr == nil {
			return nil
		}
		log.WithError(lastErr).Warnf("history copy attempt %d/%d failed", attempt, shadowCopyAttempts)
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	return fmt.Errorf("copy history database after %d attempts: %w", shadowCopyAttempts, lastErr)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

// webkitToTime converts a WebKit microsecond timestamp to UTC.
func webkitToTime(webkitMicros int64) time.Time {
	unixMicros := webkitMicros - webkitEpochOffsetSeconds*1_000_000
	return time.UnixMicro(unixMicros).UTC()
}

// HistoryReader extracts recent browser visits from a Chromium-family
// history database via a shadow copy.
type HistoryReader struct {
	sanitizer *Sanitizer
	limit     int
	tempDir   string
}

// NewHistoryReader creates a reader. limit caps the rows fetched from
// the history database; zero or below falls back to 1000.
func NewHistoryReader(sanitizer *Sanitizer, limit int, tempDir string) *HistoryReader {
	if limit <= 0 {
		limit = 1000
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &HistoryReader{sanitizer: sanitizer, limit: limit, tempDir: tempDir}
}

// Extract returns sanitized browser visits from the last `lookback`
// window. A missing history database yields an empty slice, not an
// error: the pipeline falls back to window titles only.
func (r *HistoryReader) Extract(ctx context.Context, lookback time.Duration) ([]timeline.BrowserVisit, error) {
	src, ok := findHistoryDB()
	if !ok {
		log.Warn("no browser history database found")
		return []timeline.BrowserVisit{}, nil
	}

	temp := filepath.Join(r.tempDir, "recollect_history.sqlite")
	if err := shadowCopy(src, temp); err != nil {
		log.WithError(err).Warn("history unavailable, continuing without browser visits")
		return []timeline.BrowserVisit{}, nil
	}
	defer os.Remove(temp)

	return r.extractFrom(ctx, temp, lookback)
}

// extractFrom reads visits from a copied history database.
func (r *HistoryReader) extractFrom(ctx context.Context, dbPath string, lookback time.Duration) ([]timeline.BrowserVisit, error) {
	db, err := sql.Open("sqlite3", dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT url, title, last_visit_time
		FROM urls
		ORDER BY last_visit_time DESC
		LIMIT ?
	`, r.limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	cutoff := time.Now().UTC().Add(-lookback)
	visits := make([]timeline.BrowserVisit, 0)

	for rows.Next() {
		var url, title string
		var webkitMicros int64
		if err := rows.Scan(&url, &title, &webkitMicros); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		visitedAt := webkitToTime(webkitMicros)
		if visitedAt.Before(cutoff) {
			continue
		}
		if r.sanitizer.IsBlockedURL(url) {
			continue
		}

		visits = append(visits, timeline.BrowserVisit{
			Source:    "browser",
			URL:       url,
			Title:     r.sanitizer.SanitizeText(title),
			Timestamp: visitedAt.Format(time.RFC3339),
		})
	}

	return visits, rows.Err()
}
