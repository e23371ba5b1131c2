package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// SenseCommand — capture browser history and window activity into a snapshot.
type SenseCommand struct {
	Hours  int  `long:"hours" description:"Override capture lookback window in hours"`
	DryRun bool `long:"dry-run" description:"Capture and report counts without writing a snapshot"`

	globals *GlobalFlags
	version string
}

// DigestCommand — turn pending snapshots into timelines, journals, and memories.
type DigestCommand struct {
	DryRun bool `long:"dry-run" description:"Print the activity timeline without summarizing or journaling"`

	globals *GlobalFlags
	version string
}

// ReviewCommand — consolidate journals into weekly/monthly/yearly reviews.
type ReviewCommand struct {
	Level string `long:"level" description:"Consolidation level: weekly | monthly | yearly | all" default:"all"`

	globals *GlobalFlags
	version string
}

// RecallCommand — retrieve memories relevant to a query, recency-weighted.
type RecallCommand struct {
	Limit  int    `long:"limit" description:"Maximum memories to return (defaults to config top_k)"`
	Before string `long:"before" description:"Only memories from before this date (YYYY-MM-DD)"`

	Args struct {
		Query []string `positional-arg-name:"QUERY" required:"1"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// StatusCommand — show snapshot backlog, journal counts, and memory stats.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// WatchCommand — run the capture and digest loop as a long-lived process.
type WatchCommand struct {
	LogLevel string `long:"log-level" description:"Override log level"`

	globals *GlobalFlags
	version string
}
