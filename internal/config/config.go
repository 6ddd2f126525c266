// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Profile          string `json:"profile,omitempty"`            // Path to candidate profile JSON
	Resume           string `json:"resume,omitempty"`             // Path to resume file for uploads
	JobsFile         string `json:"jobs_file,omitempty"`          // Path to file with one posting URL per line
	JobURL           string `json:"job_url,omitempty"`            // Single posting URL to apply to
	LegacyAnswersCSV string `json:"legacy_answers_csv,omitempty"` // Old CSV answer cache to import on startup
	CallLog          string `json:"call_log,omitempty"`           // JSONL file for oracle call accounting
	UserDataDir      string `json:"user_data_dir,omitempty"`      // Browser profile dir, keeps login sessions

	// Numeric answer bounds
	NumericDefault int `json:"numeric_default,omitempty" validate:"min=0"`          // Fallback when the oracle gives no digits
	NumericMin     int `json:"numeric_min,omitempty" validate:"min=0"`              // Lower clamp for numeric answers
	NumericMax     int `json:"numeric_max,omitempty" validate:"gtefield=NumericMin"` // Upper clamp for numeric answers

	// Session limits
	RetryCap         int `json:"retry_cap,omitempty" validate:"min=0,max=10"`          // Validation retries per element
	ScanPasses       int `json:"scan_passes,omitempty" validate:"min=1,max=20"`        // Re-scan passes per step
	StepCeiling      int `json:"step_ceiling,omitempty" validate:"min=1,max=100"`      // Hard cap on steps per application
	ApplicationLimit int `json:"application_limit,omitempty" validate:"min=0"`         // Stop after this many submissions (0 = no limit)

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL for the answer store
	Headless    bool   `json:"headless,omitempty"`     // Run Chrome without a window
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information

	// Timeouts in seconds
	OracleTimeoutSec int `json:"oracle_timeout_sec,omitempty" validate:"min=0,max=600"` // Per oracle call
	RenderTimeoutSec int `json:"render_timeout_sec,omitempty" validate:"min=0,max=600"` // Per page settle
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate mutually exclusive fields
	if c.JobsFile != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'jobs_file' and 'job_url' are mutually exclusive")
	}

	if err := validator.New().Struct(c); err != nil {
		var invalid []string
		for _, fieldErr := range err.(validator.ValidationErrors) {
			invalid = append(invalid, fieldErr.Field())
		}
		return fmt.Errorf("config error: invalid values for %v", invalid)
	}

	// Validate file paths exist (if specified)
	if c.Profile != "" {
		if _, err := os.Stat(c.Profile); os.IsNotExist(err) {
			return fmt.Errorf("config error: profile file not found: %s", c.Profile)
		}
	}
	if c.Resume != "" {
		if _, err := os.Stat(c.Resume); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.Resume)
		}
	}
	if c.JobsFile != "" {
		if _, err := os.Stat(c.JobsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: jobs file not found: %s", c.JobsFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Profile == "" {
		result.Profile = defaults.Profile
	}
	if result.Resume == "" {
		result.Resume = defaults.Resume
	}
	if result.JobsFile == "" {
		result.JobsFile = defaults.JobsFile
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.LegacyAnswersCSV == "" {
		result.LegacyAnswersCSV = defaults.LegacyAnswersCSV
	}
	if result.CallLog == "" {
		result.CallLog = defaults.CallLog
	}
	if result.UserDataDir == "" {
		result.UserDataDir = defaults.UserDataDir
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Int fields: use default if zero
	if result.NumericDefault == 0 {
		result.NumericDefault = defaults.NumericDefault
	}
	if result.NumericMin == 0 {
		result.NumericMin = defaults.NumericMin
	}
	if result.NumericMax == 0 {
		result.NumericMax = defaults.NumericMax
	}
	if result.RetryCap == 0 {
		result.RetryCap = defaults.RetryCap
	}
	if result.ScanPasses == 0 {
		result.ScanPasses = defaults.ScanPasses
	}
	if result.StepCeiling == 0 {
		result.StepCeiling = defaults.StepCeiling
	}
	if result.ApplicationLimit == 0 {
		result.ApplicationLimit = defaults.ApplicationLimit
	}
	if result.OracleTimeoutSec == 0 {
		result.OracleTimeoutSec = defaults.OracleTimeoutSec
	}
	if result.RenderTimeoutSec == 0 {
		result.RenderTimeoutSec = defaults.RenderTimeoutSec
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		NumericDefault:   3,
		NumericMin:       1,
		NumericMax:       99,
		RetryCap:         3,
		ScanPasses:       5,
		StepCeiling:      24,
		ApplicationLimit: 10,
		OracleTimeoutSec: 60,
		RenderTimeoutSec: 30,
		Headless:         true,
	}
}
