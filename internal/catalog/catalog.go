// Package catalog maps file extensions to storage category labels.
//
// The mapping is a data table (categories.yaml) loaded once; lookups are a
// single map access on the lower-cased extension.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Other is the label for extensions no group claims
const Other = "Outros"

//go:embed categories.yaml
var defaultTable []byte

// Group is one label and the extensions it owns
type Group struct {
	Label      string   `json:"label" yaml:"label"`
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// Catalog resolves extensions to labels
type Catalog struct {
	groups []Group
	index  map[string]string
}

var defaultCatalog = mustLoad(defaultTable)

// Default returns the built-in catalog
func Default() *Catalog {
	return defaultCatalog
}

// CategoryFor resolves ext with the built-in catalog
func CategoryFor(ext string) string {
	return defaultCatalog.CategoryFor(ext)
}

// Load parses a YAML group table into a Catalog
func Load(data []byte) (*Catalog, error) {
	var groups []Group
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("failed to parse category table: %w", err)
	}
	return New(groups)
}

// New builds a Catalog from groups, rejecting extensions claimed twice
func New(groups []Group) (*Catalog, error) {
	c := &Catalog{
		groups: make([]Group, 0, len(groups)),
		index:  make(map[string]string),
	}
	for _, g := range groups {
		if err := c.add(g.Label, g.Extensions); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func mustLoad(data []byte) *Catalog {
	c, err := Load(data)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) add(label string, extensions []string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return fmt.Errorf("category label must not be empty")
	}
	if label == Other {
		return fmt.Errorf("label %q is reserved for unmatched extensions", Other)
	}

	pos := -1
	for i, g := range c.groups {
		if g.Label == label {
			pos = i
			break
		}
	}
	if pos < 0 {
		c.groups = append(c.groups, Group{Label: label})
		pos = len(c.groups) - 1
	}

	for _, ext := range extensions {
		key := normalize(ext)
		if key == "" {
			return fmt.Errorf("empty extension under %q", label)
		}
		if owner, ok := c.index[key]; ok {
			return fmt.Errorf("extension %q listed under both %q and %q", key, owner, label)
		}
		c.index[key] = label
		c.groups[pos].Extensions = append(c.groups[pos].Extensions, key)
	}
	return nil
}

// Merge returns a copy of c extended with extra label -> extensions entries.
// Labels are added in sorted order so the result does not depend on map order.
func (c *Catalog) Merge(extra map[string][]string) (*Catalog, error) {
	merged, err := New(c.groups)
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(extra))
	for label := range extra {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		if err := merged.add(label, extra[label]); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// CategoryFor returns the label owning ext, or Other
func (c *Catalog) CategoryFor(ext string) string {
	if label, ok := c.index[normalize(ext)]; ok {
		return label
	}
	return Other
}

// Labels lists every label in table order, Other last
func (c *Catalog) Labels() []string {
	labels := make([]string, 0, len(c.groups)+1)
	for _, g := range c.groups {
		labels = append(labels, g.Label)
	}
	return append(labels, Other)
}

// Groups returns a copy of the table
func (c *Catalog) Groups() []Group {
	out := make([]Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = Group{Label: g.Label, Extensions: append([]string(nil), g.Extensions...)}
	}
	return out
}

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
