package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/fenilsonani/file-organizer/internal/security"
)

// ErrNoPlans is returned by Latest when the store is empty
var ErrNoPlans = errors.New("no saved plans")

// Plan is an analysis saved for review. A bare engine analyze document is
// also a valid plan file.
type Plan struct {
	ID            string    `json:"id,omitempty" yaml:"id,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Directory     string    `json:"directory,omitempty" yaml:"directory,omitempty"`
	Notes         string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	AnalyzeResult `yaml:",inline"`
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadPlan reads a plan from path, as YAML for .yaml/.yml files and JSON otherwise
func LoadPlan(path string) (*Plan, error) {
	return readPlan(afero.NewOsFs(), path)
}

// SavePlan writes plan to path in the format its extension selects
func SavePlan(path string, plan *Plan) error {
	return writePlan(afero.NewOsFs(), path, plan)
}

func readPlan(fs afero.Fs, path string) (*Plan, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var plan Plan
	if isYAML(path) {
		err = yaml.Unmarshal(data, &plan)
	} else {
		err = json.Unmarshal(data, &plan)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}
	return &plan, nil
}

func writePlan(fs afero.Fs, path string, plan *Plan) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plan directory: %w", err)
	}

	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(plan)
	} else {
		data, err = json.MarshalIndent(plan, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// DefaultPlansDir returns ~/.config/file-organizer/plans
func DefaultPlansDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "file-organizer", "plans"), nil
}

// PlanStore keeps saved plans as JSON files in one directory
type PlanStore struct {
	fs  afero.Fs
	dir string
}

// NewPlanStore opens (and creates) a plan directory. An empty dir means
// DefaultPlansDir; a nil fs means the OS filesystem.
func NewPlanStore(fs afero.Fs, dir string) (*PlanStore, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		var err error
		if dir, err = DefaultPlansDir(); err != nil {
			return nil, err
		}
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create plans directory: %w", err)
	}
	return &PlanStore{fs: fs, dir: dir}, nil
}

// Dir returns the directory plans are kept in
func (s *PlanStore) Dir() string {
	return s.dir
}

// Save stores plan, assigning an ID and timestamp when missing
func (s *PlanStore) Save(plan *Plan) error {
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}
	if plan.ID == "" {
		plan.ID = generatePlanID(plan.CreatedAt)
	}
	path, err := s.path(plan.ID)
	if err != nil {
		return err
	}
	return writePlan(s.fs, path, plan)
}

// Load reads the plan with the given ID
func (s *PlanStore) Load(id string) (*Plan, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}
	return readPlan(s.fs, path)
}

// List returns every readable plan, newest first
func (s *PlanStore) List() ([]*Plan, error) {
	names, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans directory: %w", err)
	}

	plans := []*Plan{}
	for _, entry := range names {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		plan, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		plans = append(plans, plan)
	}

	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	return plans, nil
}

// Latest returns the most recently created plan
func (s *PlanStore) Latest() (*Plan, error) {
	plans, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, ErrNoPlans
	}
	return plans[0], nil
}

// Delete removes a plan
func (s *PlanStore) Delete(id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil {
		return fmt.Errorf("failed to delete plan file: %w", err)
	}
	return nil
}

// Clean removes plans created before now minus maxAge and returns how many went
func (s *PlanStore) Clean(maxAge time.Duration) (int, error) {
	plans, err := s.List()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, plan := range plans {
		if !plan.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.Delete(plan.ID); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *PlanStore) path(id string) (string, error) {
	if err := security.ValidateFileName(id); err != nil {
		return "", fmt.Errorf("invalid plan id %q: %w", id, err)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func generatePlanID(t time.Time) string {
	return fmt.Sprintf("plan_%s_%03d", t.Format("20060102-150405"), t.Nanosecond()/int(time.Millisecond))
}
