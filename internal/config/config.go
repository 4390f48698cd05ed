// Package config defines process configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Layer defaults, an optional YAML file, and environment variables.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BaseURL is the gradebook service root, e.g. "https://lms.example.edu".
	BaseURL string `koanf:"base_url"`

	// APIToken authenticates against the gradebook service.
	APIToken string `koanf:"api_token"`

	// PollIntervalMS controls bulk upload job polling.
	PollIntervalMS int `koanf:"poll_interval_ms"`

	// StrictBounds rejects threshold bounds above the maximum score
	// instead of warning and accepting them.
	StrictBounds bool `koanf:"strict_bounds"`

	// PartialCreditTarget is the exact score marking a student as
	// eligible for a revision.
	PartialCreditTarget float64 `koanf:"partial_credit_target"`

	// MasteryCutoff is the minimum outcome score counted toward mastery.
	MasteryCutoff float64 `koanf:"mastery_cutoff"`

	// Timezone names the IANA zone used when parsing revision due dates.
	Timezone string `koanf:"timezone"`

	// TestStudentID is the roster identity dropped from imported files.
	TestStudentID string `koanf:"test_student_id"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		BaseURL:             "",
		APIToken:            "",
		PollIntervalMS:      1000,
		StrictBounds:        false,
		PartialCreditTarget: 2.0,
		MasteryCutoff:       3.0,
		Timezone:            "America/New_York",
		TestStudentID:       "X889900",
	}
}
