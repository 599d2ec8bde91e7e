package config

import "time"

// GetDefault returns the default configuration
func GetDefault() *Config {
	return &Config{
		Scan: ScanConfig{
			MaxDepth:        10,
			MaxEntries:      50000,
			TopFiles:        15,
			ExcludePatterns: []string{},
		},
		CategoryListing: CategoryListingConfig{
			MaxDepth:   10,
			MaxEntries: 10000,
			MaxResults: 500,
		},
		Duplicates: DuplicatesConfig{
			MinSize: "1B",
		},
		Move: MoveConfig{
			ApplyRenaming:  false,
			DryRun:         false,
			SkipDuplicates: false,
		},
		Engine: EngineConfig{
			Command: "",
			Timeout: 10 * time.Minute,
		},
		Plans: PlansConfig{
			MaxAgeDays: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
		ProtectedPaths:  []string{},
		ExtraCategories: map[string][]string{},
	}
}

// GetExampleConfig returns an example configuration with comments
func GetExampleConfig() string {
	return `# file-organizer configuration
# Location: ~/.config/file-organizer/config.yaml

# Statistics walk (organizer stats)
scan:
  max_depth: 10        # files directly in the scanned folder are depth 1
  max_entries: 50000   # stop after this many files
  top_files: 15        # size of the largest-files list
  exclude_patterns: [] # directory name globs to skip, e.g. ["node_modules", "*.photoslibrary"]

# Per-category listing (organizer category)
category_listing:
  max_depth: 10
  max_entries: 10000
  max_results: 500

# Duplicate finder (organizer duplicates)
duplicates:
  min_size: 1B   # ignore files smaller than this
  workers: 0     # hashing goroutines, 0 = one per CPU

# Defaults for organizer move
move:
  apply_renaming: false   # use the engine's suggested names
  dry_run: false          # resolve destinations without touching files
  skip_duplicates: false  # leave files flagged as duplicates in place

# External classification engine, invoked as "<command> analyze <dir>"
engine:
  command: ""
  timeout: 10m

# Saved plans
plans:
  dir: ""          # default ~/.config/file-organizer/plans
  max_age_days: 30 # organizer plans clean removes older plans

log:
  level: info  # debug, info, warn, error
  file: ""     # append log lines here instead of stderr

# Print OpenTelemetry spans to stderr
trace: false

# Extra destination paths to refuse, on top of the system directories
protected_paths: []

# Additional categories, label -> extensions
extra_categories: {}
#  Partituras: [mscz, musicxml]
`
}
