package timeline

import (
	"sort"
	"strings"
	"time"
)

// browserProcessNames are process name fragments that identify a
// window-focus event as belonging to a web browser. Matched
// case-insensitively as substrings of the app name.
var browserProcessNames = []string{
	"chrome",
	"msedge",
	"firefox",
	"brave",
	"safari",
	"vivaldi",
	"opera",
	"arc",
}

// isBrowserApp reports whether app names a recognized browser process.
func isBrowserApp(app string) bool {
	lower := strings.ToLower(app)
	for _, name := range browserProcessNames {
		if strings.Contains(lower, name) {
			return true
		}
	}
	return false
}

// normalizeTitle lowercases and trims a window or page title for
// cache lookup.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// instantFormats are the timestamp layouts accepted from event feeds.
var instantFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// parseInstant parses an ISO-8601 instant leniently. Malformed or
// missing values degrade to the zero time, which sorts before every
// real instant, so fusion always completes.
func parseInstant(s string) time.Time {
	for _, f := range instantFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// cachedVisit is a title-cache entry: the most recent visit observed
// for a normalized title.
type cachedVisit struct {
	url       string
	title     string
	timestamp time.Time
}

// Fuse merges browser history and window-focus events into a single
// time-ordered sequence of FusedEvents. Every focus event is emitted;
// browser visits only feed the title cache used to attach a
// BrowsingDetail to focus events on recognized browser windows.
//
// Correlation is exact match on the normalized title first, then a
// substring match in either direction against cached titles. The
// fuzzy pass walks cache keys in sorted order so the chosen match is
// stable across runs; callers should still only rely on a match being
// found, not on which of several valid candidates wins.
func Fuse(history []BrowserVisit, focus []WindowFocusEvent) []FusedEvent {
	type timedVisit struct {
		visit BrowserVisit
		at    time.Time
	}
	type timedFocus struct {
		event WindowFocusEvent
		at    time.Time
	}

	visits := make([]timedVisit, 0, len(history))
	for _, v := range history {
		visits = append(visits, timedVisit{visit: v, at: parseInstant(v.Timestamp)})
	}
	sort.SliceStable(visits, func(i, j int) bool { return visits[i].at.Before(visits[j].at) })

	focuses := make([]timedFocus, 0, len(focus))
	for _, e := range focus {
		focuses = append(focuses, timedFocus{event: e, at: parseInstant(e.Timestamp)})
	}
	sort.SliceStable(focuses, func(i, j int) bool { return focuses[i].at.Before(focuses[j].at) })

	cache := make(map[string]cachedVisit)
	fused := make([]FusedEvent, 0, len(focuses))

	vi := 0
	for _, f := range focuses {
		// Advance the visit cursor: every visit at or before this focus
		// event updates the cache, last write wins per normalized title.
		for vi < len(visits) && !visits[vi].at.After(f.at) {
			v := visits[vi]
			if key := normalizeTitle(v.visit.Title); key != "" {
				cache[key] = cachedVisit{url: v.visit.URL, title: v.visit.Title, timestamp: v.at}
			}
			vi++
		}

		ev := FusedEvent{
			App:      f.event.App,
			Title:    f.event.Title,
			Start:    f.at,
			Duration: time.Duration(f.event.Duration * float64(time.Second)),
		}
		if isBrowserApp(f.event.App) {
			ev.Browsing = lookupVisit(cache, f.event.Title)
		}
		fused = append(fused, ev)
	}

	return fused
}

// lookupVisit finds the cached visit correlating with a focus title,
// or nil when none matches. Empty titles never match.
func lookupVisit(cache map[string]cachedVisit, title string) *BrowsingDetail {
	key := normalizeTitle(title)
	if key == "" {
		return nil
	}

	if v, ok := cache[key]; ok {
		return &BrowsingDetail{URL: v.url, Title: v.title, Timestamp: v.timestamp}
	}

	// Fuzzy pass over sorted keys for a deterministic first match.
	keys := make([]string, 0, len(cache))
	for k := range cache {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "" {
			continue
		}
		if strings.Contains(key, k) || strings.Contains(k, key) {
			v := cache[k]
			return &BrowsingDetail{URL: v.url, Title: v.title, Timestamp: v.timestamp}
		}
	}

	return nil
}
