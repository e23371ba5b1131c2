package memory

import (
	"fmt"
	"sort"
	"time"
)

// DefaultDecayRate controls how quickly recency boosts fall off.
// Larger values favor newer memories more aggressively.
const DefaultDecayRate = 0.05

// Candidate is one nearest-neighbor search result. Distance is the
// semantic distance from the query (0 = identical, nonnegative).
// Metadata must carry a "timestamp" entry in unix seconds; the ranker
// refuses to score candidates without one.
type Candidate struct {
	Content  string
	Metadata map[string]any
	Distance float64
	Score    float64
}

// metadataTimestamp extracts the unix-seconds event time from a
// candidate's metadata. A missing or non-numeric timestamp is a hard
// error: fabricating one would silently corrupt the ranking.
func metadataTimestamp(meta map[string]any) (float64, error) {
	raw, ok := meta["timestamp"]
	if !ok {
		return 0, fmt.Errorf("candidate metadata missing timestamp")
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("candidate timestamp has unsupported type %T", raw)
	}
}

// RankByRecency rescores candidates by blending semantic similarity
// with time decay and returns the top k by descending score.
//
//	base       = 1 / (1 + distance)
//	days_old   = max(0, (now - timestamp) / 86400)
//	time_decay = 1 / (1 + decayRate * days_old)
//	score      = base * (1 + time_decay)
//
// The decay term is an additive boost on top of the similarity score,
// never a penalty below it: a highly relevant old memory is outranked
// by an equally relevant new one, not crushed by its age. Ties keep
// input order (stable sort). Fewer than k candidates ranks them all.
func RankByRecency(candidates []Candidate, now time.Time, k int, decayRate float64) ([]Candidate, error) {
	if decayRate <= 0 {
		decayRate = DefaultDecayRate
	}

	nowUnix := float64(now.Unix())
	ranked := make([]Candidate, len(candidates))
	for i, c := range candidates {
		ts, err := metadataTimestamp(c.Metadata)
		if err != nil {
			return nil, fmt.Errorf("rank candidate %d: %w", i, err)
		}

		daysOld := (nowUnix - ts) / 86400
		if daysOld < 0 {
			daysOld = 0
		}

		base := 1 / (1 + c.Distance)
		decay := 1 / (1 + decayRate*daysOld)
		c.Score = base * (1 + decay)
		ranked[i] = c
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if k > 0 && k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked, nil
}
