package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuse_AttachesDetailOnExactTitleMatch(t *testing.T) {
	history := []BrowserVisit{
		{Source: "browser", URL: "https://docs.python.org/3/library/sqlite3.html", Title: "sqlite3 — DB-API", Timestamp: "2026-03-02T09:00:00Z"},
	}
	focus := []WindowFocusEvent{
		{App: "chrome.exe", Title: "sqlite3 — DB-API", Timestamp: "2026-03-02T09:00:05Z", Duration: 235},
	}

	fused := Fuse(history, focus)
	require.Len(t, fused, 1)
	require.NotNil(t, fused[0].Browsing)
	assert.Equal(t, "https://docs.python.org/3/library/sqlite3.html", fused[0].Browsing.URL)
	assert.Equal(t, 235*time.Second, fused[0].Duration)
}

func TestFuse_NonBrowserAppNeverGetsDetail(t *testing.T) {
	history := []BrowserVisit{
		{URL: "https://example.com", Title: "Slack", Timestamp: "2026-03-02T09:00:00Z"},
	}
	focus := []WindowFocusEvent{
		{App: "slack.exe", Title: "Slack", Timestamp: "2026-03-02T09:01:00Z", Duration: 60},
	}

	fused := Fuse(history, focus)
	require.Len(t, fused, 1)
	assert.Nil(t, fused[0].Browsing, "non-browser apps must not correlate with visits")
}

func TestFuse_FuzzySubstringMatch(t *testing.T) {
	history := []BrowserVisit{
		{URL: "https://go.dev/doc", Title: "Documentation - The Go Programming Language", Timestamp: "2026-03-02T10:00:00Z"},
	}
	// Window title has a browser suffix the history title lacks.
	focus := []WindowFocusEvent{
		{App: "firefox", Title: "Documentation - The Go Programming Language — Mozilla Firefox", Timestamp: "2026-03-02T10:00:30Z", Duration: 90},
	}

	fused := Fuse(history, focus)
	require.Len(t, fused, 1)
	require.NotNil(t, fused[0].Browsing)
	assert.Equal(t, "https://go.dev/doc", fused[0].Browsing.URL)
}

func TestFuse_EmptyTitleNeverMatches(t *testing.T) {
	history := []BrowserVisit{
		{URL: "https://example.com", Title: "", Timestamp: "2026-03-02T09:00:00Z"},
		{URL: "https://other.com", Title: "Other Page", Timestamp: "2026-03-02T09:00:01Z"},
	}
	focus := []WindowFocusEvent{
		{App: "chrome", Title: "", Timestamp: "2026-03-02T09:01:00Z", Duration: 10},
	}

	fused := Fuse(history, focus)
	require.Len(t, fused, 1)
	assert.Nil(t, fused[0].Browsing, "an empty focus title must not match any cache entry")
}

func TestFuse_LastWriteWinsPerTitle(t *testing.T) {
	history := []BrowserVisit{
		{URL: "https://old.example.com", Title: "Release Notes", Timestamp: "2026-03-02T08:00:00Z"},
		{URL: "https://new.example.com", Title: "Release Notes", Timestamp: "2026-03-02T09:00:00Z"},
	}
	focus := []WindowFocusEvent{
		{App: "chrome", Title: "Release Notes", Timestamp: "2026-03-02T09:30:00Z", Duration: 30},
	}

	fused := Fuse(history, focus)
	require.Len(t, fused, 1)
	require.NotNil(t, fused[0].Browsing)
	assert.Equal(t, "https://new.example.com", fused[0].Browsing.URL)
}

func TestFuse_VisitAfterFocusDoesNotCorrelate(t *testing.T) {
	// The cache only holds visits seen up to the focus event's time.
	history := []BrowserVisit{
		{URL: "https://example.com", Title: "Late Page", Timestamp: "2026-03-02T11:00:00Z"},
	}
	focus := []WindowFocusEvent{
		{App: "chrome", Title: "Late Page", Timestamp: "2026-03-02T10:00:00Z", Duration: 60},
	}

	fused := Fuse(history, focus)
	require.Len(t, fused, 1)
	assert.Nil(t, fused[0].Browsing)
}

func TestFuse_MalformedTimestampsDegradeToOldest(t *testing.T) {
	history := []BrowserVisit{
		{URL: "https://example.com", Title: "Broken Clock", Timestamp: "not-a-timestamp"},
	}
	focus := []WindowFocusEvent{
		{App: "chrome", Title: "Broken Clock", Timestamp: "2026-03-02T09:00:00Z", Duration: 5},
		{App: "code.exe", Title: "main.go", Timestamp: "garbage", Duration: 5},
	}

	// Must not panic or drop events; the malformed visit sorts oldest
	// and is therefore visible to every focus event.
	fused := Fuse(history, focus)
	require.Len(t, fused, 2)

	assert.True(t, fused[0].Start.IsZero(), "malformed focus timestamp sorts first as zero time")
	require.NotNil(t, fused[1].Browsing)
	assert.Equal(t, "https://example.com", fused[1].Browsing.URL)
}

func TestFuse_EmptyInputs(t *testing.T) {
	assert.Empty(t, Fuse(nil, nil))
	assert.Empty(t, Fuse([]BrowserVisit{{URL: "https://a.com", Title: "A", Timestamp: "2026-03-02T09:00:00Z"}}, nil))
}

func TestFuse_UnsortedInputsAreOrdered(t *testing.T) {
	focus := []WindowFocusEvent{
		{App: "code.exe", Title: "later", Timestamp: "2026-03-02T10:00:00Z", Duration: 10},
		{App: "code.exe", Title: "earlier", Timestamp: "2026-03-02T09:00:00Z", Duration: 10},
	}

	fused := Fuse(nil, focus)
	require.Len(t, fused, 2)
	assert.Equal(t, "earlier", fused[0].Title)
	assert.Equal(t, "later", fused[1].Title)
}

func TestIsBrowserApp(t *testing.T) {
	tests := []struct {
		app  string
		want bool
	}{
		{"chrome.exe", true},
		{"Google Chrome", true},
		{"msedge.exe", true},
		{"firefox", true},
		{"Brave Browser", true},
		{"slack.exe", false},
		{"Code.exe", false},
		{"", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, isBrowserApp(tc.app), "app %q", tc.app)
	}
}
