package timeline

import "time"

// BrowserVisit is a single page visit extracted from a browser history
// database. Timestamp is an ISO-8601 instant as produced by the sensor;
// it is parsed leniently during fusion.
type BrowserVisit struct {
	Source    string `json:"source"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

// WindowFocusEvent is a single window-focus interval reported by the
// activity watcher. Timestamp marks focus gain; Duration is seconds of
// focus time.
type WindowFocusEvent struct {
	App       string  `json:"app"`
	Title     string  `json:"title"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration"`
}

// BrowsingDetail links a window-focus event back to the browser visit
// it most likely corresponds to.
type BrowsingDetail struct {
	URL       string
	Title     string
	Timestamp time.Time
}

// FusedEvent is a WindowFocusEvent with normalized timestamps and, for
// browser windows whose title correlates with a recorded visit, an
// attached BrowsingDetail. Created by Fuse, never mutated afterwards.
type FusedEvent struct {
	App      string
	Title    string
	Start    time.Time
	Duration time.Duration
	Browsing *BrowsingDetail
}

// Session is a contiguous run of focus events on one application.
// Duration is the sum of contributing event durations, not End minus
// Start: focus inside a session window is intermittent, and the span
// would overstate idle time.
type Session struct {
	Start      time.Time
	End        time.Time
	App        string
	Titles     []string
	URLs       []string
	Duration   time.Duration
	EventCount int
}

// CategorizedBlock is a Session with its classification attached.
type CategorizedBlock struct {
	Session
	Category string
	Activity string
	Icon     string
}

// ActivityRule names one activity within a category and the title
// keywords that identify it.
type ActivityRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// CategoryRule maps applications and title keywords to a category
// label. Lower Priority values are evaluated first. Apps entries are
// matched as case-insensitive substrings of the application name.
type CategoryRule struct {
	Priority   int            `yaml:"priority"`
	Label      string         `yaml:"label"`
	Icon       string         `yaml:"icon"`
	Apps       []string       `yaml:"apps"`
	Activities []ActivityRule `yaml:"activities"`
}
