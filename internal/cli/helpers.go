package cli

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/runnerr0/recollect/internal/config"
	"github.com/runnerr0/recollect/internal/memory"
	"github.com/runnerr0/recollect/internal/timeline"
)

// loadConfig resolves the config path from globals, loads it merged over
// defaults, and applies the logging level.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	path := config.DefaultConfigPath
	if globals != nil && globals.Config != "" {
		path = globals.Config
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}

	applyLogLevel(cfg.Logging.Level, globals != nil && globals.Verbose)
	return cfg, nil
}

func applyLogLevel(level string, verbose bool) {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// openMemoryStore opens the memory database, runs migrations, and
// returns a ready-to-use store and the underlying *sql.DB.
func openMemoryStore(cfg *config.Config) (*memory.SQLiteStore, *sql.DB, error) {
	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := memory.NewMigrationRunner(db)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := memory.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	return store, db, nil
}

// newMemoryManager wires the store to an ollama embedder.
func newMemoryManager(cfg *config.Config, store memory.Store) (*memory.Manager, error) {
	embedder, err := memory.NewOllamaEmbedder(cfg.LLM.Host, cfg.Memory.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return memory.NewManager(store, embedder, cfg.Memory.DecayRate), nil
}

// loadRules loads categorization rules from the configured file,
// falling back to the built-in rule set.
func loadRules(cfg *config.Config) ([]timeline.CategoryRule, error) {
	if cfg.Timeline.RulesFile == "" {
		return config.DefaultRules(), nil
	}

	path, err := config.ExpandPath(cfg.Timeline.RulesFile)
	if err != nil {
		return nil, err
	}

	rules, err := config.LoadRules(path)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return config.DefaultRules(), nil
	}
	return rules, nil
}
