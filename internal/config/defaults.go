package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Sensor: SensorConfig{
			Hours:            24,
			ActivityWatchURL: "http://localhost:5600",
			HistoryLimit:     1000,
		},
		Privacy: PrivacyConfig{
			BlockedDomains:    DefaultBlockedDomains(),
			SensitiveKeywords: []string{},
		},
		Timeline: TimelineConfig{
			GapThresholdSeconds: 300,
			MinVisibleSeconds:   60,
			RulesFile:           "~/.config/recollect/rules.yaml",
		},
		LLM: LLMConfig{
			Provider:     "ollama",
			Host:         "http://localhost:11434",
			Model:        "llama3",
			ContextLimit: 8192,
		},
		Memory: MemoryConfig{
			EmbedModel: "nomic-embed-text",
			TopK:       5,
			DecayRate:  0.05,
		},
		Journal: JournalConfig{
			Dir: "~/.local/share/recollect/journals",
		},
		Storage: StorageConfig{
			Path:       "~/.local/share/recollect",
			SQLiteFile: "memory.db",
			LogsDir:    "logs",
			AuditFile:  "uncategorized.log",
		},
		Daemon: DaemonConfig{
			SenseCron:  "0 */6 * * *",
			ReviewCron: "30 4 * * *",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultBlockedDomains returns URL patterns that should never be
// captured from browser history: banking, password managers, health
// portals, and authentication providers.
func DefaultBlockedDomains() []string {
	return []string{
		// Banking & financial
		`paypal\.com`,
		`chase\.com`,
		`bankofamerica\.com`,
		`wellsfargo\.com`,
		`fidelity\.com`,
		`vanguard\.com`,
		`coinbase\.com`,

		// Password managers
		`1password\.com`,
		`lastpass\.com`,
		`bitwarden\.com`,
		`dashlane\.com`,

		// Authentication & identity
		`accounts\.google\.com`,
		`login\.microsoftonline\.com`,
		`login\.live\.com`,
		`auth0\.com`,
		`okta\.com`,

		// Healthcare & government
		`mychart\.com`,
		`healthcare\.gov`,
		`irs\.gov`,
		`ssa\.gov`,
	}
}
