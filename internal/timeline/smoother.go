package timeline

import "time"

const (
	// NoiseThreshold is the maximum duration of a block that can be
	// absorbed into a preceding focused-work block.
	NoiseThreshold = 30 * time.Second

	// DefaultMinVisible is the minimum duration for a block to appear
	// in human-facing renderings. Shorter blocks still participate in
	// smoothing; filtering is a presentation step only.
	DefaultMinVisible = time.Minute

	categoryWork          = "Work"
	categoryEntertainment = "Entertainment"
)

// Smooth merges adjacent blocks with identical classification and
// absorbs short noise blocks into a preceding Work block, in one
// left-to-right scan. Blocks are never split.
//
// Noise absorption folds brief interruptions (an alt-tab to check a
// message) into the surrounding focused block instead of fragmenting
// it, unless the interruption is a strong competing category.
func Smooth(blocks []CategorizedBlock) []CategorizedBlock {
	if len(blocks) == 0 {
		return []CategorizedBlock{}
	}

	out := make([]CategorizedBlock, 0, len(blocks))
	current := blocks[0]

	for _, next := range blocks[1:] {
		switch {
		case current.Category == next.Category && current.Activity == next.Activity:
			current = mergeBlocks(current, next)
		case next.Duration < NoiseThreshold &&
			current.Category == categoryWork &&
			next.Category != categoryEntertainment:
			current = absorbBlock(current, next)
		default:
			out = append(out, current)
			current = next
		}
	}

	return append(out, current)
}

// mergeBlocks combines two identically-classified blocks.
func mergeBlocks(current, next CategorizedBlock) CategorizedBlock {
	if next.End.After(current.End) {
		current.End = next.End
	}
	current.Duration += next.Duration
	current.EventCount += next.EventCount
	current.Titles = appendUnique(current.Titles, next.Titles)
	current.URLs = appendUnique(current.URLs, next.URLs)
	// App of the first block wins; merged blocks share a classification
	// but may span several applications.
	return current
}

// absorbBlock folds a noise block into the current block, keeping the
// current block's classification and content.
func absorbBlock(current, next CategorizedBlock) CategorizedBlock {
	if next.End.After(current.End) {
		current.End = next.End
	}
	current.Duration += next.Duration
	current.EventCount += next.EventCount
	return current
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]struct{}, len(dst))
	for _, s := range dst {
		seen[s] = struct{}{}
	}
	for _, s := range src {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			dst = append(dst, s)
		}
	}
	return dst
}

// VisibleBlocks filters out blocks below the minimum rendered duration
// for presentation. A minVisible of zero or below falls back to
// DefaultMinVisible.
func VisibleBlocks(blocks []CategorizedBlock, minVisible time.Duration) []CategorizedBlock {
	if minVisible <= 0 {
		minVisible = DefaultMinVisible
	}
	out := make([]CategorizedBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.Duration >= minVisible {
			out = append(out, b)
		}
	}
	return out
}
