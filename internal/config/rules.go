package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/runnerr0/recollect/internal/timeline"
)

// rulesFile is the YAML shape of a category rules file.
type rulesFile struct {
	Rules []timeline.CategoryRule `yaml:"rules"`
}

// LoadRules reads the category rules file at path. A missing file is
// not an error: the categorizer runs with an empty rule set and
// classifies everything as Uncategorized.
func LoadRules(path string) ([]timeline.CategoryRule, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(expanded)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}

	return f.Rules, nil
}

// DefaultRules returns the built-in category rules used when the user
// has not authored a rules file.
func DefaultRules() []timeline.CategoryRule {
	return []timeline.CategoryRule{
		{
			Priority: 1,
			Label:    "Work",
			Icon:     "💻",
			Apps:     []string{"code", "goland", "intellij", "terminal", "wezterm", "alacritty"},
			Activities: []timeline.ActivityRule{
				{Name: "Coding", Keywords: []string{".go", ".py", ".rs", "pull request", "merge request", "git"}},
				{Name: "Code Review", Keywords: []string{"review", "diff"}},
				{Name: "Docs", Keywords: []string{"documentation", "godoc", "readme", "api reference"}},
			},
		},
		{
			Priority: 2,
			Label:    "Research",
			Icon:     "🔍",
			Apps:     []string{},
			Activities: []timeline.ActivityRule{
				{Name: "Reading", Keywords: []string{"stack overflow", "arxiv", "wikipedia", "tutorial"}},
			},
		},
		{
			Priority: 3,
			Label:    "Comms",
			Icon:     "💬",
			Apps:     []string{"slack", "discord", "teams", "thunderbird", "outlook"},
			Activities: []timeline.ActivityRule{
				{Name: "Email", Keywords: []string{"inbox", "compose"}},
				{Name: "Meetings", Keywords: []string{"zoom", "meet.google", "standup"}},
			},
		},
		{
			Priority: 4,
			Label:    "Entertainment",
			Icon:     "🎬",
			Apps:     []string{"spotify", "steam", "vlc"},
			Activities: []timeline.ActivityRule{
				{Name: "Video", Keywords: []string{"youtube", "netflix", "twitch"}},
				{Name: "Social", Keywords: []string{"reddit", "twitter", "instagram", "hacker news"}},
			},
		},
	}
}
