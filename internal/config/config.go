package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/file-organizer/internal/logging"
	"github.com/fenilsonani/file-organizer/internal/security"
)

// Environment variables read after the config file
const (
	EnvEngine        = "ORGANIZER_ENGINE"
	EnvEngineTimeout = "ORGANIZER_ENGINE_TIMEOUT"
	EnvLogLevel      = "ORGANIZER_LOG_LEVEL"
	EnvLogFile       = "ORGANIZER_LOG_FILE"
	EnvDryRun        = "ORGANIZER_DRY_RUN"
	EnvTrace         = "ORGANIZER_TRACE"
)

// Config represents the application configuration
type Config struct {
	Scan            ScanConfig            `yaml:"scan"`
	CategoryListing CategoryListingConfig `yaml:"category_listing"`
	Duplicates      DuplicatesConfig      `yaml:"duplicates"`
	Move            MoveConfig            `yaml:"move"`
	Engine          EngineConfig          `yaml:"engine"`
	Plans           PlansConfig           `yaml:"plans"`
	Log             LogConfig             `yaml:"log"`
	Trace           bool                  `yaml:"trace"`
	ProtectedPaths  []string              `yaml:"protected_paths"`
	ExtraCategories map[string][]string   `yaml:"extra_categories"`
}

// ScanConfig bounds the statistics walk. Zero means the built-in default.
type ScanConfig struct {
	MaxDepth        int      `yaml:"max_depth"`
	MaxEntries      int      `yaml:"max_entries"`
	TopFiles        int      `yaml:"top_files"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

// CategoryListingConfig bounds the per-category file listing
type CategoryListingConfig struct {
	MaxDepth   int `yaml:"max_depth"`
	MaxEntries int `yaml:"max_entries"`
	MaxResults int `yaml:"max_results"`
}

// DuplicatesConfig tunes the duplicate finder
type DuplicatesConfig struct {
	MinSize string `yaml:"min_size"` // e.g. "1B", "4 KiB"
	Workers int    `yaml:"workers"`
}

// MinSizeBytes parses MinSize. An empty value means 0 (finder default).
func (d DuplicatesConfig) MinSizeBytes() (int64, error) {
	if strings.TrimSpace(d.MinSize) == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(d.MinSize)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

// MoveConfig holds move defaults; command-line flags override them
type MoveConfig struct {
	ApplyRenaming  bool `yaml:"apply_renaming"`
	DryRun         bool `yaml:"dry_run"`
	SkipDuplicates bool `yaml:"skip_duplicates"`
}

// EngineConfig locates the external classification engine
type EngineConfig struct {
	Command string        `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"`
}

// PlansConfig controls where saved plans live
type PlansConfig struct {
	Dir        string `yaml:"dir"` // empty means ~/.config/file-organizer/plans
	MaxAgeDays int    `yaml:"max_age_days"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load loads configuration from a file, then applies environment overrides.
// A missing file yields the defaults.
func Load(configPath string) (*Config, error) {
	config := GetDefault()

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadEnvFile loads KEY=value pairs from a .env file into the process
// environment. A missing file is not an error; variables already set win.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from ORGANIZER_* environment variables
func (c *Config) ApplyEnv() error {
	if v, ok := lookupEnv(EnvEngine); ok {
		c.Engine.Command = v
	}
	if v, ok := lookupEnv(EnvEngineTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvEngineTimeout, err)
		}
		c.Engine.Timeout = d
	}
	if v, ok := lookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookupEnv(EnvLogFile); ok {
		c.Log.File = v
	}
	if v, ok := lookupEnv(EnvDryRun); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDryRun, err)
		}
		c.Move.DryRun = b
	}
	if v, ok := lookupEnv(EnvTrace); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTrace, err)
		}
		c.Trace = b
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	limits := []struct {
		name  string
		value int
	}{
		{"scan.max_depth", c.Scan.MaxDepth},
		{"scan.max_entries", c.Scan.MaxEntries},
		{"scan.top_files", c.Scan.TopFiles},
		{"category_listing.max_depth", c.CategoryListing.MaxDepth},
		{"category_listing.max_entries", c.CategoryListing.MaxEntries},
		{"category_listing.max_results", c.CategoryListing.MaxResults},
		{"duplicates.workers", c.Duplicates.Workers},
		{"plans.max_age_days", c.Plans.MaxAgeDays},
	}
	for _, l := range limits {
		if l.value < 0 {
			return fmt.Errorf("%s must be >= 0", l.name)
		}
	}

	if c.Engine.Timeout < 0 {
		return fmt.Errorf("engine.timeout must be >= 0")
	}

	if _, err := c.Duplicates.MinSizeBytes(); err != nil {
		return fmt.Errorf("invalid duplicates.min_size '%s': %w", c.Duplicates.MinSize, err)
	}

	// Validate exclude patterns (glob syntax)
	for _, pattern := range c.Scan.ExcludePatterns {
		if err := security.ValidateGlobPattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	// Validate protected paths are absolute
	for _, path := range c.ProtectedPaths {
		if !filepath.IsAbs(path) {
			return fmt.Errorf("protected path must be absolute: %s", path)
		}
	}

	for label, exts := range c.ExtraCategories {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("extra category with empty label")
		}
		if len(exts) == 0 {
			return fmt.Errorf("extra category %q has no extensions", label)
		}
	}

	return nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", "file-organizer")
	return filepath.Join(configDir, "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if it doesn't exist
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return "", fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(configPath, []byte(GetExampleConfig()), 0644); err != nil {
			return "", fmt.Errorf("failed to write config file: %w", err)
		}
	}

	return configPath, nil
}
