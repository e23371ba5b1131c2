package timeline

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Classification values used when no rule matches.
const (
	UncategorizedLabel = "Uncategorized"
	GeneralActivity    = "General"
	uncategorizedIcon  = "❓"
)

// Categorizer maps (app, title) pairs to a category and activity using
// a prioritized rule set. It also records previously-unseen pairs that
// matched no rule to an audit writer, once per pair per instance, as
// feedback for rule authoring.
//
// A Categorizer is not safe for concurrent use; parallel pipeline runs
// must each construct their own instance.
type Categorizer struct {
	rules []CategoryRule
	seen  map[string]struct{}
	audit io.Writer
}

// NewCategorizer builds a Categorizer over a copy of rules, stable-
// sorted by ascending priority. audit may be nil to disable the
// uncategorized-activity log.
func NewCategorizer(rules []CategoryRule, audit io.Writer) *Categorizer {
	sorted := make([]CategoryRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	return &Categorizer{
		rules: sorted,
		seen:  make(map[string]struct{}),
		audit: audit,
	}
}

// Classify returns the category label, activity name, and icon for an
// (app, title) pair.
//
// All activity keywords are tested in full rule-priority order before
// any app-name fallback: a low-priority rule's keyword match beats a
// high-priority rule's app match, because a specific activity name is
// preferred over generic app bucketing.
func (c *Categorizer) Classify(app, title string) (category, activity, icon string) {
	lowerTitle := strings.ToLower(title)
	lowerApp := strings.ToLower(app)

	for _, rule := range c.rules {
		for _, act := range rule.Activities {
			for _, kw := range act.Keywords {
				// Empty keywords would match every title.
				if kw == "" {
					continue
				}
				if strings.Contains(lowerTitle, strings.ToLower(kw)) {
					return rule.Label, act.Name, rule.Icon
				}
			}
		}
	}

	for _, rule := range c.rules {
		for _, appSub := range rule.Apps {
			if appSub == "" {
				continue
			}
			if strings.Contains(lowerApp, strings.ToLower(appSub)) {
				return rule.Label, GeneralActivity, rule.Icon
			}
		}
	}

	c.logUncategorized(app, title)
	return UncategorizedLabel, UncategorizedLabel, uncategorizedIcon
}

// logUncategorized appends one audit line per unique (app, title) pair
// over the lifetime of this Categorizer.
func (c *Categorizer) logUncategorized(app, title string) {
	if c.audit == nil {
		return
	}
	sig := app + "\x00" + title
	if _, ok := c.seen[sig]; ok {
		return
	}
	c.seen[sig] = struct{}{}
	fmt.Fprintf(c.audit, "%s\t%s\n", app, title)
}

// CategorizeSessions classifies each session into a CategorizedBlock.
// Session titles are joined so every observed title can contribute a
// keyword match.
func (c *Categorizer) CategorizeSessions(sessions []Session) []CategorizedBlock {
	blocks := make([]CategorizedBlock, 0, len(sessions))
	for _, s := range sessions {
		title := strings.Join(s.Titles, " ")
		category, activity, icon := c.Classify(s.App, title)
		blocks = append(blocks, CategorizedBlock{
			Session:  s,
			Category: category,
			Activity: activity,
			Icon:     icon,
		})
	}
	return blocks
}
