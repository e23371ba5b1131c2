package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "summarize")

// chunkSize is the character length of one map-reduce segment, sized
// so a segment plus prompt scaffolding fits comfortably in context.
const chunkSize = 6000

// contextHeadroom is reserved for the prompt scaffolding and the
// response when deciding whether the timeline fits in one call.
const contextHeadroom = 1000

// DailySummary is the parsed digest output.
type DailySummary struct {
	Narrative string   `json:"narrative"`
	Facts     []string `json:"facts"`
}

// Summarizer turns a rendered activity timeline into a daily summary,
// map-reducing through the provider when the timeline exceeds the
// model's context window.
type Summarizer struct {
	provider     Provider
	contextLimit int
}

// NewSummarizer creates a Summarizer. A contextLimit of zero or below
// defaults to 8192 tokens.
func NewSummarizer(provider Provider, contextLimit int) *Summarizer {
	if contextLimit <= 0 {
		contextLimit = 8192
	}
	return &Summarizer{provider: provider, contextLimit: contextLimit}
}

// SummarizeDay produces the digest for one day's timeline text.
func (s *Summarizer) SummarizeDay(ctx context.Context, date, timelineText string) (*DailySummary, error) {
	tokens := CountTokens(timelineText)
	log.WithFields(logrus.Fields{"date": date, "tokens": tokens}).Info("summarizing day")

	finalContext := timelineText
	if tokens >= s.contextLimit-contextHeadroom {
		reduced, err := s.mapReduce(ctx, timelineText)
		if err != nil {
			return nil, err
		}
		finalContext = reduced
	}

	raw, err := s.provider.Chat(ctx, systemPrompt, fmt.Sprintf(finalPrompt, date, finalContext), true)
	if err != nil {
		return nil, fmt.Errorf("generate daily summary: %w", err)
	}

	summary, err := parseSummary(raw)
	if err != nil {
		return nil, fmt.Errorf("daily summary for %s: %w", date, err)
	}
	return summary, nil
}

// mapReduce splits the timeline into chunks, summarizes each, and
// joins the partial summaries into a reduced context.
func (s *Summarizer) mapReduce(ctx context.Context, text string) (string, error) {
	chunks := splitChunks(text, chunkSize)
	log.Infof("timeline exceeds context limit, map-reducing %d chunks", len(chunks))

	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		part, err := s.provider.Chat(ctx, mapSystemPrompt, fmt.Sprintf(mapPrompt, chunk), false)
		if err != nil {
			return "", fmt.Errorf("map chunk %d/%d: %w", i+1, len(chunks), err)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "\n"), nil
}

// splitChunks cuts text into size-character pieces.
func splitChunks(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		return []string{text}
	}
	chunks := make([]string, 0, len(text)/size+1)
	for len(text) > size {
		chunks = append(chunks, text[:size])
		text = text[size:]
	}
	if len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}

// parseSummary decodes the model's JSON response, tolerating markdown
// code fences around the object.
func parseSummary(raw string) (*DailySummary, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var summary DailySummary
	if err := json.Unmarshal([]byte(cleaned), &summary); err != nil {
		return nil, fmt.Errorf("parse summary JSON: %w", err)
	}
	if summary.Narrative == "" {
		return nil, fmt.Errorf("summary has no narrative")
	}
	return &summary, nil
}
