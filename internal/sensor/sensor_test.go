package sensor

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/recollect/internal/config"
)

func testSanitizer(t *testing.T) *Sanitizer {
	t.Helper()
	return NewSanitizer(config.PrivacyConfig{
		BlockedDomains:    []string{`bank\.example\.com`, `accounts\.google\.com`},
		SensitiveKeywords: []string{"Project Nightfall"},
	})
}

func TestSanitizeText(t *testing.T) {
	s := testSanitizer(t)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keyword redacted", "meeting notes for Project Nightfall", "meeting notes for [REDACTED]"},
		{"email redacted", "mail from alice@example.com today", "mail from [EMAIL_REDACTED] today"},
		{"clean text untouched", "reading godoc", "reading godoc"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.SanitizeText(tc.in))
		})
	}
}

func TestIsBlockedURL(t *testing.T) {
	s := testSanitizer(t)

	assert.True(t, s.IsBlockedURL("https://bank.example.com/login"))
	assert.True(t, s.IsBlockedURL("https://accounts.google.com/signin"))
	assert.False(t, s.IsBlockedURL("https://go.dev/doc"))
	assert.False(t, s.IsBlockedURL(""))
}

func TestNewSanitizer_SkipsInvalidPatterns(t *testing.T) {
	s := NewSanitizer(config.PrivacyConfig{BlockedDomains: []string{`[invalid`, `ok\.com`}})

	assert.True(t, s.IsBlockedURL("https://ok.com"))
	assert.False(t, s.IsBlockedURL("https://other.com"))
}

func TestWebkitToTime(t *testing.T) {
	// 2026-03-02T09:00:00Z in WebKit microseconds.
	want := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	webkit := (want.Unix() + webkitEpochOffsetSeconds) * 1_000_000

	assert.Equal(t, want, webkitToTime(webkit))
}

// seedHistoryDB builds a Chromium-shaped history database for tests.
func seedHistoryDB(t *testing.T, rows []struct {
	url, title string
	at         time.Time
}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "History")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE urls (url TEXT, title TEXT, visit_count INTEGER DEFAULT 1, last_visit_time INTEGER)`)
	require.NoError(t, err)

	for _, r := range rows {
		webkit := (r.at.Unix() + webkitEpochOffsetSeconds) * 1_000_000
		_, err = db.Exec(`INSERT INTO urls (url, title, last_visit_time) VALUES (?, ?, ?)`, r.url, r.title, webkit)
		require.NoError(t, err)
	}
	return path
}

func TestHistoryReader_ExtractFrom(t *testing.T) {
	now := time.Now().UTC()
	path := seedHistoryDB(t, []struct {
		url, title string
		at         time.Time
	}{
		{"https://go.dev/doc", "Go Documentation", now.Add(-1 * time.Hour)},
		{"https://bank.example.com/login", "My Bank", now.Add(-2 * time.Hour)},
		{"https://old.example.com", "Stale Page", now.Add(-72 * time.Hour)},
		{"https://mail.example.com", "Mail for bob@example.com", now.Add(-30 * time.Minute)},
	})

	r := NewHistoryReader(testSanitizer(t), 100, t.TempDir())
	visits, err := r.extractFrom(context.Background(), path, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, visits, 2, "blocked and stale rows are dropped")

	byURL := map[string]string{}
	for _, v := range visits {
		byURL[v.URL] = v.Title
		assert.Equal(t, "browser", v.Source)
		_, err := time.Parse(time.RFC3339, v.Timestamp)
		assert.NoError(t, err, "timestamps serialize as RFC3339")
	}
	assert.Equal(t, "Go Documentation", byURL["https://go.dev/doc"])
	assert.Equal(t, "Mail for [EMAIL_REDACTED]", byURL["https://mail.example.com"])
}

func TestAWClient_FetchWindowEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/0/buckets":
			json.NewEncoder(w).Encode(map[string]any{
				"aw-watcher-afk_host":    map[string]any{},
				"aw-watcher-window_host": map[string]any{},
			})
		case r.URL.Path == "/api/0/buckets/aw-watcher-window_host/events":
			assert.NotEmpty(t, r.URL.Query().Get("start"))
			assert.NotEmpty(t, r.URL.Query().Get("end"))
			json.NewEncoder(w).Encode([]map[string]any{
				{
					"timestamp": "2026-03-02T09:00:05Z",
					"duration":  235.0,
					"data":      map[string]any{"app": "chrome.exe", "title": "sqlite3 — DB-API"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewAWClient(srv.URL, testSanitizer(t))
	events, err := c.FetchWindowEvents(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "chrome.exe", events[0].App)
	assert.Equal(t, "sqlite3 — DB-API", events[0].Title)
	assert.Equal(t, 235.0, events[0].Duration)
}

func TestAWClient_UnreachableServerDegrades(t *testing.T) {
	c := NewAWClient("http://127.0.0.1:1", testSanitizer(t))

	events, err := c.FetchWindowEvents(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSnapshot_WriteLoadRoundtrip(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)

	snap := NewSnapshot(now, nil, nil)
	path, err := snap.Write(dir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sensor_log_20260302_183000.json"), path)

	got, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", got.Day())
	assert.NotNil(t, got.BrowserHistory)
	assert.NotNil(t, got.WindowActivity)
}

func TestPendingSnapshots_SkipsProcessed(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	first, err := NewSnapshot(now, nil, nil).Write(dir, now.Add(-time.Hour))
	require.NoError(t, err)
	second, err := NewSnapshot(now, nil, nil).Write(dir, now)
	require.NoError(t, err)

	require.NoError(t, MarkProcessed(first))

	pending, err := PendingSnapshots(dir)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second, pending[0])
}

func TestPendingSnapshots_MissingDir(t *testing.T) {
	pending, err := PendingSnapshots(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, pending)
}
