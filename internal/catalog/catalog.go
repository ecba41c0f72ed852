// Package catalog loads the read-only Activity Catalog and interaction-moment
// list that Scenes reference, plus optional placeholder label overrides.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"curriculum/api/internal/curriculum"
)

// Unassigned is shown for a Scene whose activity is missing or unknown.
const Unassigned = "unassigned"

const maxFileSize = 1 << 20

//go:embed default.yaml
var defaultYAML []byte

type Activity struct {
	ID               string                 `yaml:"id" json:"id"`
	Name             string                 `yaml:"name" json:"name"`
	Category         string                 `yaml:"category" json:"category"`
	Tool             string                 `yaml:"tool" json:"tool"`
	ABCTypes         []curriculum.ABCMethod `yaml:"abcTypes" json:"abcTypes"`
	CognitiveOutputs []string               `yaml:"cognitiveOutputs" json:"cognitiveOutputs"`
}

type file struct {
	Activities   []Activity        `yaml:"activities"`
	Moments      []string          `yaml:"moments"`
	Labels       curriculum.Labels `yaml:"labels"`
	Placeholders curriculum.Labels `yaml:"placeholders"`
}

// Catalog is immutable after Load.
type Catalog struct {
	activities   []Activity
	byID         map[string]Activity
	moments      []string
	labels       curriculum.Labels
	placeholders curriculum.Labels
}

// Load reads the catalog at path. An empty path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("catalog %s exceeds %d bytes", path, maxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &Catalog{
		byID:         make(map[string]Activity, len(doc.Activities)),
		labels:       doc.Labels,
		placeholders: doc.Placeholders,
	}
	for i, activity := range doc.Activities {
		activity.ID = strings.TrimSpace(activity.ID)
		if activity.ID == "" {
			return nil, fmt.Errorf("activity %d: missing id", i)
		}
		if _, dup := c.byID[activity.ID]; dup {
			return nil, fmt.Errorf("activity %q: duplicate id", activity.ID)
		}
		if strings.TrimSpace(activity.Name) == "" {
			activity.Name = activity.ID
		}
		for _, method := range activity.ABCTypes {
			if !method.Valid() {
				return nil, fmt.Errorf("activity %q: unknown ABC method %q", activity.ID, method)
			}
		}
		c.activities = append(c.activities, activity)
		c.byID[activity.ID] = activity
	}
	seen := map[string]bool{}
	for _, moment := range doc.Moments {
		moment = strings.TrimSpace(moment)
		if moment == "" || seen[moment] {
			continue
		}
		seen[moment] = true
		c.moments = append(c.moments, moment)
	}
	if len(c.activities) == 0 && len(c.moments) == 0 {
		return nil, errors.New("catalog is empty")
	}
	return c, nil
}

// Activities returns a copy of the activity list in file order.
func (c *Catalog) Activities() []Activity {
	out := make([]Activity, len(c.activities))
	copy(out, c.activities)
	return out
}

// ForMethod lists activities tagged with method.
func (c *Catalog) ForMethod(method curriculum.ABCMethod) []Activity {
	out := make([]Activity, 0)
	for _, activity := range c.activities {
		for _, m := range activity.ABCTypes {
			if m == method {
				out = append(out, activity)
				break
			}
		}
	}
	return out
}

func (c *Catalog) Activity(id string) (Activity, bool) {
	activity, ok := c.byID[strings.TrimSpace(id)]
	return activity, ok
}

// ActivityName resolves id for display. Blank and dangling ids render as
// Unassigned.
func (c *Catalog) ActivityName(id string) string {
	if activity, ok := c.Activity(id); ok {
		return activity.Name
	}
	return Unassigned
}

func (c *Catalog) Moments() []string {
	out := make([]string, len(c.moments))
	copy(out, c.moments)
	return out
}

// ValidMoment reports whether moment is blank or listed in the catalog.
func (c *Catalog) ValidMoment(moment string) bool {
	moment = strings.TrimSpace(moment)
	if moment == "" {
		return true
	}
	for _, candidate := range c.moments {
		if candidate == moment {
			return true
		}
	}
	return false
}

// EditorOptions carries the label overrides into a curriculum.Editor.
// Blank overrides fall back to the editor defaults.
func (c *Catalog) EditorOptions() curriculum.Options {
	return curriculum.Options{Labels: c.labels, Placeholders: c.placeholders}
}
