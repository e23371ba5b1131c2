package timeline

import "time"

// DefaultGapThreshold is the maximum idle gap between two focus events
// on the same application before a new session is opened.
const DefaultGapThreshold = 5 * time.Minute

// sessionBuilder accumulates an open session. The title and URL sets
// are deduplicated while building and sealed into slices on output.
type sessionBuilder struct {
	session    Session
	titleSeen  map[string]struct{}
	urlSeen    map[string]struct{}
}

func newSessionBuilder(ev FusedEvent) *sessionBuilder {
	b := &sessionBuilder{
		session: Session{
			Start:      ev.Start,
			End:        ev.Start.Add(ev.Duration),
			App:        ev.App,
			Duration:   ev.Duration,
			EventCount: 1,
		},
		titleSeen: make(map[string]struct{}),
		urlSeen:   make(map[string]struct{}),
	}
	b.absorb(ev)
	return b
}

// absorb records the event's title and URL. Merge-specific fields
// (end, duration, count) are handled by extend.
func (b *sessionBuilder) absorb(ev FusedEvent) {
	if ev.Title != "" {
		if _, ok := b.titleSeen[ev.Title]; !ok {
			b.titleSeen[ev.Title] = struct{}{}
			b.session.Titles = append(b.session.Titles, ev.Title)
		}
	}
	if ev.Browsing != nil && ev.Browsing.URL != "" {
		if _, ok := b.urlSeen[ev.Browsing.URL]; !ok {
			b.urlSeen[ev.Browsing.URL] = struct{}{}
			b.session.URLs = append(b.session.URLs, ev.Browsing.URL)
		}
	}
}

// extend merges a subsequent event into the open session.
func (b *sessionBuilder) extend(ev FusedEvent) {
	if end := ev.Start.Add(ev.Duration); end.After(b.session.End) {
		b.session.End = end
	}
	b.session.Duration += ev.Duration
	b.session.EventCount++
	b.absorb(ev)
}

// matches reports whether the event belongs in the open session: same
// application and a gap below the threshold. A negative gap (events
// overlap) counts as zero and is always mergeable.
func (b *sessionBuilder) matches(ev FusedEvent, gapThreshold time.Duration) bool {
	if ev.App != b.session.App {
		return false
	}
	gap := ev.Start.Sub(b.session.End)
	if gap < 0 {
		gap = 0
	}
	return gap < gapThreshold
}

// Sessionize collapses a chronological fused-event sequence into
// per-application sessions using a single left-to-right scan.
// A gapThreshold of zero or below falls back to DefaultGapThreshold.
func Sessionize(fused []FusedEvent, gapThreshold time.Duration) []Session {
	if gapThreshold <= 0 {
		gapThreshold = DefaultGapThreshold
	}

	sessions := make([]Session, 0)
	var current *sessionBuilder

	for _, ev := range fused {
		switch {
		case current == nil:
			current = newSessionBuilder(ev)
		case current.matches(ev, gapThreshold):
			current.extend(ev)
		default:
			sessions = append(sessions, current.session)
			current = newSessionBuilder(ev)
		}
	}

	if current != nil {
		sessions = append(sessions, current.session)
	}

	return sessions
}
