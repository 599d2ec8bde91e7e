package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// GetDefault Tests
// =============================================================================

func TestGetDefault(t *testing.T) {
	cfg := GetDefault()

	if cfg == nil {
		t.Fatal("GetDefault returned nil")
	}

	if cfg.Scan.MaxDepth != 10 || cfg.Scan.MaxEntries != 50000 || cfg.Scan.TopFiles != 15 {
		t.Errorf("unexpected scan defaults: %+v", cfg.Scan)
	}
	if cfg.CategoryListing.MaxDepth != 10 || cfg.CategoryListing.MaxEntries != 10000 || cfg.CategoryListing.MaxResults != 500 {
		t.Errorf("unexpected category listing defaults: %+v", cfg.CategoryListing)
	}
	if cfg.Move.DryRun || cfg.Move.ApplyRenaming || cfg.Move.SkipDuplicates {
		t.Errorf("move flags should default to off: %+v", cfg.Move)
	}
	if cfg.Engine.Timeout != 10*time.Minute {
		t.Errorf("expected engine timeout 10m, got %s", cfg.Engine.Timeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestExampleConfigMatchesDefaults(t *testing.T) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(GetExampleConfig()), &cfg); err != nil {
		t.Fatalf("example config does not parse: %v", err)
	}

	def := GetDefault()
	if cfg.Scan.MaxEntries != def.Scan.MaxEntries || cfg.CategoryListing.MaxResults != def.CategoryListing.MaxResults {
		t.Errorf("example limits drifted from defaults")
	}
	if cfg.Engine.Timeout != def.Engine.Timeout {
		t.Errorf("example timeout %s, default %s", cfg.Engine.Timeout, def.Engine.Timeout)
	}
}

// =============================================================================
// Load Tests
// =============================================================================

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scan.MaxEntries != 50000 {
		t.Error("expected defaults for a missing file")
	}
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeConfig(t, `
scan:
  max_depth: 3
  exclude_patterns: ["node_modules"]
engine:
  command: /usr/local/bin/organizer-engine
  timeout: 90s
extra_categories:
  Partituras: [mscz, musicxml]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Scan.MaxDepth != 3 {
		t.Errorf("expected max_depth 3, got %d", cfg.Scan.MaxDepth)
	}
	// keys absent from the file keep their defaults
	if cfg.Scan.MaxEntries != 50000 || cfg.Scan.TopFiles != 15 {
		t.Errorf("defaults lost: %+v", cfg.Scan)
	}
	if cfg.Engine.Command != "/usr/local/bin/organizer-engine" || cfg.Engine.Timeout != 90*time.Second {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if len(cfg.ExtraCategories["Partituras"]) != 2 {
		t.Errorf("extra categories = %v", cfg.ExtraCategories)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "scan: [unclosed"},
		{"negative depth", "scan:\n  max_depth: -1\n"},
		{"negative results", "category_listing:\n  max_results: -5\n"},
		{"traversal exclude", "scan:\n  exclude_patterns: [\"../*\"]\n"},
		{"bad glob", "scan:\n  exclude_patterns: [\"[\"]\n"},
		{"unknown log level", "log:\n  level: chatty\n"},
		{"relative protected path", "protected_paths: [relative/dir]\n"},
		{"empty extra category", "extra_categories:\n  Empty: []\n"},
		{"bad min size", "duplicates:\n  min_size: lots\n"},
		{"bad timeout", "engine:\n  timeout: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "engine:\n  command: from-file\nlog:\n  level: warn\n")

	t.Setenv(EnvEngine, "from-env")
	t.Setenv(EnvEngineTimeout, "2m")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFile, "/tmp/organizer.log")
	t.Setenv(EnvDryRun, "true")
	t.Setenv(EnvTrace, "1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Engine.Command != "from-env" || cfg.Engine.Timeout != 2*time.Minute {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/organizer.log" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if !cfg.Move.DryRun || !cfg.Trace {
		t.Errorf("dry run %v, trace %v", cfg.Move.DryRun, cfg.Trace)
	}
}

func TestLoadEnvEmptyValueIgnored(t *testing.T) {
	t.Setenv(EnvEngine, "  ")
	cfg, err := Load(writeConfig(t, "engine:\n  command: kept\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Command != "kept" {
		t.Errorf("command = %q, want kept", cfg.Engine.Command)
	}
}

func TestLoadEnvInvalidBool(t *testing.T) {
	t.Setenv(EnvDryRun, "sometimes")
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil || !strings.Contains(err.Error(), EnvDryRun) {
		t.Errorf("error = %v, want mention of %s", err, EnvDryRun)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("ORGANIZER_ENGINE=dotenv-engine\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// register cleanup for the variable godotenv is about to set
	t.Setenv(EnvEngine, "")
	os.Unsetenv(EnvEngine)

	if err := LoadEnvFile(envPath); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	if got := os.Getenv(EnvEngine); got != "dotenv-engine" {
		t.Errorf("%s = %q", EnvEngine, got)
	}

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

// =============================================================================
// Save Tests
// =============================================================================

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	cfg := GetDefault()
	cfg.Scan.ExcludePatterns = []string{"node_modules", "*.photoslibrary"}
	cfg.Engine.Command = "engine"
	cfg.Engine.Timeout = 45 * time.Second
	cfg.Move.ApplyRenaming = true

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Scan.ExcludePatterns) != 2 || loaded.Engine.Timeout != 45*time.Second || !loaded.Move.ApplyRenaming {
		t.Errorf("loaded = %+v", loaded)
	}
}

// =============================================================================
// Misc Tests
// =============================================================================

func TestMinSizeBytes(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"1B", 1},
		{"4 KiB", 4096},
		{"1MB", 1000 * 1000},
	}
	for _, tt := range tests {
		got, err := DuplicatesConfig{MinSize: tt.in}.MinSizeBytes()
		if err != nil || got != tt.want {
			t.Errorf("MinSizeBytes(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join(".config", "file-organizer", "config.yaml")) {
		t.Errorf("unexpected config path %s", path)
	}
}

func TestEnsureConfigExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := EnsureConfigExists()
	if err != nil {
		t.Fatalf("EnsureConfigExists: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not created: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("created config does not load: %v", err)
	}
}
