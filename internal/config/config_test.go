package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 24, cfg.Sensor.Hours)
	assert.Equal(t, 300, cfg.Timeline.GapThresholdSeconds)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 0.05, cfg.Memory.DecayRate)
	assert.NotEmpty(t, cfg.Privacy.BlockedDomains)
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sensor:
  hours: 12
llm:
  model: qwen2.5
timeline:
  gap_threshold_seconds: 600
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Sensor.Hours)
	assert.Equal(t, "qwen2.5", cfg.LLM.Model)
	assert.Equal(t, 600, cfg.Timeline.GapThresholdSeconds)

	// Untouched sections keep defaults.
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.Memory.TopK)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sensor: [not a mapping"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadOrDefault_MissingFileFallsBack(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadRules_MissingFileIsEmptyRuleSet(t *testing.T) {
	rules, err := LoadRules(filepath.Join(t.TempDir(), "rules.yaml"))
	require.NoError(t, err)
	assert.Nil(t, rules)
}

func TestLoadRules_ParsesSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rules:
  - priority: 1
    label: Work
    icon: "💻"
    apps: [code, goland]
    activities:
      - name: Coding
        keywords: [".go", "pull request"]
`), 0644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)

	assert.Equal(t, 1, rules[0].Priority)
	assert.Equal(t, "Work", rules[0].Label)
	assert.Equal(t, []string{"code", "goland"}, rules[0].Apps)
	require.Len(t, rules[0].Activities, 1)
	assert.Equal(t, "Coding", rules[0].Activities[0].Name)
	assert.Equal(t, []string{".go", "pull request"}, rules[0].Activities[0].Keywords)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/foo/bar")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "foo", "bar"), got)

	got, err = ExpandPath("/absolute/path")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/path", got)
}
