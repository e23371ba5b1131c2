package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/recollect/internal/config"
	"github.com/runnerr0/recollect/internal/sensor"
	"github.com/runnerr0/recollect/internal/summarize"
	"github.com/runnerr0/recollect/internal/timeline"
)

// testConfig returns a config rooted in a temp directory.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	base := t.TempDir()
	cfg.Storage.Path = base
	cfg.Journal.Dir = filepath.Join(base, "journals")
	cfg.Timeline.RulesFile = ""
	return cfg
}

type stubSummarizer struct {
	summary *summarize.DailySummary
	calls   int
}

func (s *stubSummarizer) SummarizeDay(ctx context.Context, date, timelineText string) (*summarize.DailySummary, error) {
	s.calls++
	return s.summary, nil
}

type stubIngestor struct {
	facts []string
	dates []string
}

func (s *stubIngestor) IngestFact(ctx context.Context, fact, date string, meta map[string]any) error {
	s.facts = append(s.facts, fact)
	s.dates = append(s.dates, date)
	return nil
}

// writeSnapshot drops one unprocessed snapshot with enough focus time
// to survive the visibility filter.
func writeSnapshot(t *testing.T, cfg *config.Config, now time.Time) string {
	t.Helper()
	logsDir, err := cfg.LogsPath()
	require.NoError(t, err)

	visits := []timeline.BrowserVisit{
		{Source: "chrome", URL: "https://github.com/acme/api/pull/7", Title: "Fix retry logic pull request", Timestamp: now.Add(-10 * time.Minute).Format(time.RFC3339)},
	}
	focus := []timeline.WindowFocusEvent{
		{App: "chrome.exe", Title: "Fix retry logic pull request", Timestamp: now.Add(-9 * time.Minute).Format(time.RFC3339), Duration: 300},
	}

	snap := sensor.NewSnapshot(now, visits, focus)
	path, err := snap.Write(logsDir, now)
	require.NoError(t, err)
	return path
}

// writeUnknownAppSnapshot drops a snapshot whose only focus event
// matches no category rule.
func writeUnknownAppSnapshot(t *testing.T, cfg *config.Config, now time.Time) string {
	t.Helper()
	logsDir, err := cfg.LogsPath()
	require.NoError(t, err)

	focus := []timeline.WindowFocusEvent{
		{App: "obscuretool.exe", Title: "untitled scratchpad", Timestamp: now.Add(-9 * time.Minute).Format(time.RFC3339), Duration: 300},
	}
	snap := sensor.NewSnapshot(now, nil, focus)
	path, err := snap.Write(logsDir, now)
	require.NoError(t, err)
	return path
}

func TestDigestPendingFullPipeline(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	snapPath := writeSnapshot(t, cfg, now)

	summ := &stubSummarizer{summary: &summarize.DailySummary{
		Narrative: "I spent the morning fixing retry logic.",
		Facts:     []string{"Fixed the retry logic in the acme API"},
	}}
	mem := &stubIngestor{}

	cmd := &DigestCommand{globals: &GlobalFlags{}}
	err := cmd.digestPending(context.Background(), cfg, summ, mem)
	require.NoError(t, err)

	// Snapshot renamed, journal written, fact ingested.
	assert.NoFileExists(t, snapPath)
	assert.FileExists(t, snapPath+".processed")
	assert.Equal(t, 1, summ.calls)
	assert.Equal(t, []string{"Fixed the retry logic in the acme API"}, mem.facts)
	assert.Equal(t, []string{"2026-03-02"}, mem.dates)

	note := filepath.Join(cfg.Journal.Dir, "2026-03-02_daily.md")
	data, err := os.ReadFile(note)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fixing retry logic")
}

func TestDigestDryRunLeavesSnapshotPending(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	snapPath := writeSnapshot(t, cfg, now)

	cmd := &DigestCommand{DryRun: true, globals: &GlobalFlags{}}
	err := cmd.digestPending(context.Background(), cfg, nil, nil)
	require.NoError(t, err)

	assert.FileExists(t, snapPath)
	assert.NoFileExists(t, filepath.Join(cfg.Journal.Dir, "2026-03-02_daily.md"))
}

func TestDigestNoPendingSnapshots(t *testing.T) {
	cfg := testConfig(t)
	cmd := &DigestCommand{globals: &GlobalFlags{}}
	err := cmd.digestPending(context.Background(), cfg, &stubSummarizer{}, &stubIngestor{})
	require.NoError(t, err)
}

func TestDigestExistingJournalMarksProcessed(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	snapPath := writeSnapshot(t, cfg, now)

	// Pre-existing daily note for the same date.
	require.NoError(t, os.MkdirAll(cfg.Journal.Dir, 0755))
	existing := filepath.Join(cfg.Journal.Dir, "2026-03-02_daily.md")
	require.NoError(t, os.WriteFile(existing, []byte("---\ndate: \"2026-03-02\"\n---\n\nalready here\n"), 0600))

	summ := &stubSummarizer{summary: &summarize.DailySummary{Narrative: "n", Facts: nil}}
	mem := &stubIngestor{}

	cmd := &DigestCommand{globals: &GlobalFlags{}}
	err := cmd.digestPending(context.Background(), cfg, summ, mem)
	require.NoError(t, err)

	assert.FileExists(t, snapPath+".processed")
	assert.Empty(t, mem.facts)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "already here"))
}

func TestDigestAuditDedupSpansSnapshots(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)

	// Two snapshots in one backlog, both containing the same
	// uncategorized pair.
	writeUnknownAppSnapshot(t, cfg, now)
	writeUnknownAppSnapshot(t, cfg, now.Add(time.Minute))

	summ := &stubSummarizer{summary: &summarize.DailySummary{Narrative: "n", Facts: nil}}
	cmd := &DigestCommand{globals: &GlobalFlags{}}
	err := cmd.digestPending(context.Background(), cfg, summ, &stubIngestor{})
	require.NoError(t, err)

	auditPath, err := cfg.AuditPath()
	require.NoError(t, err)
	data, err := os.ReadFile(auditPath)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "obscuretool.exe\tuntitled scratchpad"))
}

func TestDigestUnwritableAuditStillClassifies(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	snapPath := writeUnknownAppSnapshot(t, cfg, now)

	// Point the audit file under a path segment that is a regular file,
	// so opening it fails.
	blocked := filepath.Join(cfg.Storage.Path, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0600))
	cfg.Storage.AuditFile = filepath.Join("blocked", "audit.log")

	summ := &stubSummarizer{summary: &summarize.DailySummary{Narrative: "n", Facts: nil}}
	cmd := &DigestCommand{globals: &GlobalFlags{}}
	err := cmd.digestPending(context.Background(), cfg, summ, &stubIngestor{})
	require.NoError(t, err)

	assert.FileExists(t, snapPath+".processed")
	assert.Equal(t, 1, summ.calls)
}

// flakySummarizer fails its first call and succeeds afterwards.
type flakySummarizer struct {
	calls   int
	summary *summarize.DailySummary
}

func (s *flakySummarizer) SummarizeDay(ctx context.Context, date, timelineText string) (*summarize.DailySummary, error) {
	s.calls++
	if s.calls == 1 {
		return nil, errors.New("model returned garbage")
	}
	return s.summary, nil
}

func TestDigestContinuesPastFailingSnapshot(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	first := writeSnapshot(t, cfg, now)
	second := writeSnapshot(t, cfg, now.Add(time.Minute))

	summ := &flakySummarizer{summary: &summarize.DailySummary{
		Narrative: "I recovered after a bad response.",
		Facts:     []string{"second snapshot survived"},
	}}
	mem := &stubIngestor{}

	cmd := &DigestCommand{globals: &GlobalFlags{}}
	err := cmd.digestPending(context.Background(), cfg, summ, mem)
	require.Error(t, err)
	assert.Contains(t, err.Error(), filepath.Base(first))

	// The failing snapshot stays pending for retry; the later one was
	// still digested.
	assert.FileExists(t, first)
	assert.NoFileExists(t, second)
	assert.FileExists(t, second+".processed")
	assert.Equal(t, []string{"second snapshot survived"}, mem.facts)
}

func TestDigestEmptySnapshotSkipsSummarizer(t *testing.T) {
	cfg := testConfig(t)
	now := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)

	logsDir, err := cfg.LogsPath()
	require.NoError(t, err)
	snap := sensor.NewSnapshot(now, nil, nil)
	snapPath, err := snap.Write(logsDir, now)
	require.NoError(t, err)

	summ := &stubSummarizer{summary: &summarize.DailySummary{Narrative: "n"}}
	cmd := &DigestCommand{globals: &GlobalFlags{}}
	err = cmd.digestPending(context.Background(), cfg, summ, &stubIngestor{})
	require.NoError(t, err)

	assert.Equal(t, 0, summ.calls)
	assert.FileExists(t, snapPath+".processed")
}
