// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - Functions that may do I/O accept context.Context first.
// - Errors are wrapped with this package's sentinels.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DedupeSize bounds the idempotency-key cache for mutation requests.
	// Zero or negative means unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// WinnerMinSubjects is how many subjects must be compared before the top
	// ranked one is called the winner.
	WinnerMinSubjects int `koanf:"winner_min_subjects"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		DedupeSize:        10_000,
		WinnerMinSubjects: 2,
		ShutdownTimeoutMS: 30_000,
	}
}
