package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Sense  *SenseCommand
	Digest *DigestCommand
	Review *ReviewCommand
	Recall *RecallCommand
	Status *StatusCommand
	Watch  *WatchCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "recollect"
	parser.LongDescription = "Local-first activity journaling: capture what you did, digest it into timelines and journals, and recall it later."

	cmds := &commands{
		Sense:  &SenseCommand{globals: &globals, version: version},
		Digest: &DigestCommand{globals: &globals, version: version},
		Review: &ReviewCommand{globals: &globals, version: version},
		Recall: &RecallCommand{globals: &globals, version: version},
		Status: &StatusCommand{globals: &globals, version: version},
		Watch:  &WatchCommand{globals: &globals, version: version},
	}

	parser.AddCommand("sense", "Capture activity into a snapshot", "Capture browser history and window activity into a sensor snapshot.", cmds.Sense)
	parser.AddCommand("digest", "Process pending snapshots", "Fuse, sessionize, and categorize pending snapshots into daily journals and memories.", cmds.Digest)
	parser.AddCommand("review", "Consolidate journals", "Consolidate daily journals into weekly, monthly, and yearly reviews.", cmds.Review)
	parser.AddCommand("recall", "Retrieve relevant memories", "Retrieve memories relevant to a query, weighted by similarity and recency.", cmds.Recall)
	parser.AddCommand("status", "Show pipeline health", "Show snapshot backlog, journal counts, and memory statistics.", cmds.Status)
	parser.AddCommand("watch", "Run the capture loop", "Run sense and digest on a schedule as a long-lived process.", cmds.Watch)

	return parser, &globals, cmds
}

// Run is the main entry point for the Recollect CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("recollect %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
