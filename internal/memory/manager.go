package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "memory")

// Manager ties the vector store and the embedder together: ingesting
// facts extracted from daily journals and answering recency-weighted
// retrieval queries.
type Manager struct {
	store     Store
	embedder  Embedder
	decayRate float64
}

// NewManager creates a Manager. A decayRate of zero or below falls
// back to DefaultDecayRate.
func NewManager(store Store, embedder Embedder, decayRate float64) *Manager {
	if decayRate <= 0 {
		decayRate = DefaultDecayRate
	}
	return &Manager{store: store, embedder: embedder, decayRate: decayRate}
}

// IngestFact embeds and stores one fact attributed to a calendar date
// (YYYY-MM-DD). Embedding failures are logged and swallowed: a dead
// embedding service must not fail journal generation.
func (m *Manager) IngestFact(ctx context.Context, fact, date string, meta map[string]any) error {
	ts, err := time.Parse("2006-01-02", date)
	if err != nil {
		return fmt.Errorf("parse fact date %q: %w", date, err)
	}

	vec, err := m.embedder.Embed(ctx, fact)
	if err != nil {
		log.WithError(err).Warn("embedding unavailable, fact not ingested")
		return nil
	}

	item := &Item{
		ID:        FactID(fact, date),
		Content:   fact,
		Vector:    vec,
		Metadata:  meta,
		Timestamp: ts,
		Date:      date,
	}
	if err := m.store.Add(ctx, item); err != nil {
		return fmt.Errorf("store fact: %w", err)
	}

	log.WithField("date", date).Debugf("ingested fact: %.40s", fact)
	return nil
}

// Query retrieves the n most relevant memories for text, blending
// semantic similarity with recency. A non-zero before restricts the
// search to memories from strictly before that instant. The search
// over-fetches 2n candidates so recency re-ranking has room to
// reorder, then trims to n.
func (m *Manager) Query(ctx context.Context, text string, n int, before time.Time) ([]Candidate, error) {
	if n <= 0 {
		n = 5
	}

	vec, err := m.embedder.Embed(ctx, text)
	if err != nil {
		log.WithError(err).Warn("embedding unavailable, returning no memories")
		return []Candidate{}, nil
	}

	candidates, err := m.store.Search(ctx, vec, n*2, before)
	if err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}

	return RankByRecency(candidates, time.Now(), n, m.decayRate)
}

// Count reports how many facts are stored.
func (m *Manager) Count(ctx context.Context) (int64, error) {
	return m.store.Count(ctx)
}
