// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided
// via CLI flags. Environment variables (loaded via .env in main) fill any
// field still empty after flag/config merging.
type Config struct {
	// Endpoints
	GeneratorBaseURL string `json:"generator_base_url,omitempty"` // External generation service base URL
	ProfileBaseURL   string `json:"profile_base_url,omitempty"`   // Applicant-profile backend base URL

	// Persistence
	StateFile   string `json:"state_file,omitempty"`   // Path to the JSON draft-state file
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL (optional alternative to StateFile)

	// Behavior
	APIKey     string `json:"api_key,omitempty"`     // Gemini API key (dev generation backend)
	UseBrowser bool   `json:"use_browser,omitempty"` // Use headless browser for SPA job postings
	Verbose    bool   `json:"verbose,omitempty"`     // Print detailed debug information

	// Server
	Port      int    `json:"port,omitempty"`       // HTTP server port
	JWTSecret string `json:"jwt_secret,omitempty"` // Session token verification secret
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

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

// FromEnv returns a Config populated from environment variables. Call after
// godotenv.Load so a local .env participates.
func FromEnv() Config {
	return Config{
		GeneratorBaseURL: os.Getenv("GENERATOR_BASE_URL"),
		ProfileBaseURL:   os.Getenv("PROFILE_BASE_URL"),
		StateFile:        os.Getenv("RESUME_STATE_FILE"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		APIKey:           os.Getenv("GEMINI_API_KEY"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
	}
}

// Validate checks that the configuration has valid values.
// Required fields are handled by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be in [0, 65535]")
	}
	if c.StateFile != "" && c.DatabaseURL != "" {
		return fmt.Errorf("config error: 'state_file' and 'database_url' are mutually exclusive")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.GeneratorBaseURL == "" {
		result.GeneratorBaseURL = defaults.GeneratorBaseURL
	}
	if result.ProfileBaseURL == "" {
		result.ProfileBaseURL = defaults.ProfileBaseURL
	}
	if result.StateFile == "" {
		result.StateFile = defaults.StateFile
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.JWTSecret == "" {
		result.JWTSecret = defaults.JWTSecret
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// DefaultStateFile returns the default location of the draft-state file.
func DefaultStateFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".resume-tailor/state.json"
	}
	return filepath.Join(home, ".resume-tailor", "state.json")
}
