package sensor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/runnerr0/recollect/internal/timeline"
)

// windowBucketPrefix identifies the ActivityWatch window-watcher
// bucket; the full bucket ID varies by hostname.
const windowBucketPrefix = "aw-watcher-window"

// AWClient fetches window-focus events from a local ActivityWatch
// server.
type AWClient struct {
	baseURL   string
	http      *http.Client
	sanitizer *Sanitizer
}

// NewAWClient creates a client for the ActivityWatch REST API at
// baseURL (e.g. "http://localhost:5600").
func NewAWClient(baseURL string, sanitizer *Sanitizer) *AWClient {
	return &AWClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: 10 * time.Second},
		sanitizer: sanitizer,
	}
}

// awEvent is the wire shape of one ActivityWatch event.
type awEvent struct {
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration"`
	Data      struct {
		App   string `json:"app"`
		Title string `json:"title"`
	} `json:"data"`
}

// findWindowBucket returns the first bucket whose ID contains the
// window-watcher prefix.
func (c *AWClient) findWindowBucket(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/0/buckets", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("list buckets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("list buckets: unexpected status %d", resp.StatusCode)
	}

	var buckets map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&buckets); err != nil {
		return "", fmt.Errorf("decode buckets: %w", err)
	}

	for id := range buckets {
		if strings.Contains(id, windowBucketPrefix) {
			return id, nil
		}
	}
	return "", fmt.Errorf("no %s bucket found", windowBucketPrefix)
}

// FetchWindowEvents returns sanitized window-focus events for the last
// `lookback` window. An unreachable server or missing bucket yields an
// empty slice with a warning, never an error that stops the run.
func (c *AWClient) FetchWindowEvents(ctx context.Context, lookback time.Duration) ([]timeline.WindowFocusEvent, error) {
	bucket, err := c.findWindowBucket(ctx)
	if err != nil {
		log.WithError(err).Warn("activitywatch unavailable, continuing without window events")
		return []timeline.WindowFocusEvent{}, nil
	}

	end := time.Now().UTC()
	start := end.Add(-lookback)

	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))

	eventsURL := fmt.Sprintf("%s/api/0/buckets/%s/events?%s", c.baseURL, url.PathEscape(bucket), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, eventsURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("activitywatch fetch failed, continuing without window events")
		return []timeline.WindowFocusEvent{}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch events: unexpected status %d", resp.StatusCode)
	}

	var raw []awEvent
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	events := make([]timeline.WindowFocusEvent, 0, len(raw))
	for _, e := range raw {
		events = append(events, timeline.WindowFocusEvent{
			App:       e.Data.App,
			Title:     c.sanitizer.SanitizeText(e.Data.Title),
			Timestamp: e.Timestamp,
			Duration:  e.Duration,
		})
	}
	return events, nil
}
