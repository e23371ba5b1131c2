package timeline

import (
	"fmt"
	"strings"
	"time"
)

// BlockRecord is the serialized form of a CategorizedBlock handed to
// the summarization consumer.
type BlockRecord struct {
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	App       string   `json:"app"`
	Titles    []string `json:"titles"`
	URLs      []string `json:"urls"`
	Duration  int64    `json:"duration"`
	Category  string   `json:"category"`
	Activity  string   `json:"activity"`
	Icon      string   `json:"icon"`
}

// Records converts blocks to their output contract: ISO-8601 times and
// whole seconds of focus duration.
func Records(blocks []CategorizedBlock) []BlockRecord {
	records := make([]BlockRecord, 0, len(blocks))
	for _, b := range blocks {
		titles := b.Titles
		if titles == nil {
			titles = []string{}
		}
		urls := b.URLs
		if urls == nil {
			urls = []string{}
		}
		records = append(records, BlockRecord{
			StartTime: b.Start.UTC().Format(time.RFC3339),
			EndTime:   b.End.UTC().Format(time.RFC3339),
			App:       b.App,
			Titles:    titles,
			URLs:      urls,
			Duration:  int64(b.Duration / time.Second),
			Category:  b.Category,
			Activity:  b.Activity,
			Icon:      b.Icon,
		})
	}
	return records
}

// FormatTimeline renders blocks as human-readable lines for prompts
// and terminal output.
func FormatTimeline(blocks []CategorizedBlock) string {
	var sb strings.Builder
	for _, b := range blocks {
		title := ""
		if len(b.Titles) > 0 {
			title = " — " + b.Titles[0]
		}
		fmt.Fprintf(&sb, "%s–%s %s %s/%s (%s, %dm%ds)%s\n",
			b.Start.UTC().Format("15:04"),
			b.End.UTC().Format("15:04"),
			b.Icon,
			b.Category,
			b.Activity,
			b.App,
			int(b.Duration.Minutes()),
			int(b.Duration.Seconds())%60,
			title,
		)
	}
	return sb.String()
}
