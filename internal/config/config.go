package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/recollect/config.yaml"

// Config holds all Recollect configuration.
type Config struct {
	Sensor   SensorConfig   `yaml:"sensor"`
	Privacy  PrivacyConfig  `yaml:"privacy"`
	Timeline TimelineConfig `yaml:"timeline"`
	LLM      LLMConfig      `yaml:"llm"`
	Memory   MemoryConfig   `yaml:"memory"`
	Journal  JournalConfig  `yaml:"journal"`
	Storage  StorageConfig  `yaml:"storage"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type SensorConfig struct {
	Hours            int    `yaml:"hours"`
	ActivityWatchURL string `yaml:"activitywatch_url"`
	HistoryLimit     int    `yaml:"history_limit"`
}

type PrivacyConfig struct {
	BlockedDomains    []string `yaml:"blocked_domains"`
	SensitiveKeywords []string `yaml:"sensitive_keywords"`
}

type TimelineConfig struct {
	GapThresholdSeconds int    `yaml:"gap_threshold_seconds"`
	MinVisibleSeconds   int    `yaml:"min_visible_seconds"`
	RulesFile           string `yaml:"rules_file"`
}

type LLMConfig struct {
	Provider     string `yaml:"provider"`
	Host         string `yaml:"host"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	ContextLimit int    `yaml:"context_limit"`
}

type MemoryConfig struct {
	EmbedModel string  `yaml:"embed_model"`
	TopK       int     `yaml:"top_k"`
	DecayRate  float64 `yaml:"decay_rate"`
}

type JournalConfig struct {
	Dir string `yaml:"dir"`
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
	LogsDir    string `yaml:"logs_dir"`
	AuditFile  string `yaml:"audit_file"`
}

type DaemonConfig struct {
	SenseCron  string `yaml:"sense_cron"`
	ReviewCron string `yaml:"review_cron"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults
// when the file does not exist. Any other failure is returned.
func LoadOrDefault(path string) (*Config, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	cfg, err := Load(expanded)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// DatabasePath returns the absolute path of the memory database.
func (c *Config) DatabasePath() (string, error) {
	base, err := ExpandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, c.Storage.SQLiteFile), nil
}

// LogsPath returns the absolute path of the sensor snapshot directory.
func (c *Config) LogsPath() (string, error) {
	base, err := ExpandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, c.Storage.LogsDir), nil
}

// JournalPath returns the absolute path of the journal directory.
func (c *Config) JournalPath() (string, error) {
	return ExpandPath(c.Journal.Dir)
}

// AuditPath returns the absolute path of the uncategorized-activity
// audit log.
func (c *Config) AuditPath() (string, error) {
	base, err := ExpandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, c.Storage.AuditFile), nil
}
