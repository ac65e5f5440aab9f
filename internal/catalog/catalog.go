package catalog

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/catalog.yaml
var catalogYAML embed.FS

// Catalog holds display metadata for the enumerated values the grants
// API returns.
type Catalog struct {
	Sources     []Entry      `yaml:"sources"`
	Statuses    []Entry      `yaml:"statuses"`
	SortOptions []SortOption `yaml:"sort_options"`
}

// Entry describes how one enum value is shown.
type Entry struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Class string `yaml:"class"` // CSS classes for the web badge
	Color string `yaml:"color"` // Foreground color for the terminal badge
}

type SortOption struct {
	Sort  string `yaml:"sort"`
	Order string `yaml:"order"`
	Label string `yaml:"label"`
}

// Key is the combined selector value, e.g. "deadline_asc".
func (o SortOption) Key() string {
	return o.Sort + "_" + o.Order
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	data, err := catalogYAML.ReadFile("config/catalog.yaml")
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a catalog document. Both lists must be non-empty since
// their first entries are the fallbacks for unknown values.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cat.Sources) == 0 || len(cat.Statuses) == 0 {
		return nil, fmt.Errorf("catalog needs at least one source and one status")
	}
	return &cat, nil
}

// Default returns the embedded catalog. It panics if the embedded file is
// malformed, which is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		cat, err := Load()
		if err != nil {
			panic(err)
		}
		defaultCat = cat
	})
	return defaultCat
}

// Source returns the entry for id, falling back to the first source.
func (c *Catalog) Source(id string) Entry {
	return lookup(c.Sources, id)
}

// Status returns the entry for id, falling back to the first status.
func (c *Catalog) Status(id string) Entry {
	return lookup(c.Statuses, id)
}

// SortLabel returns the label for a sort/order pair, or "" if the pair is
// not offered.
func (c *Catalog) SortLabel(sort, order string) string {
	for _, o := range c.SortOptions {
		if o.Sort == sort && o.Order == order {
			return o.Label
		}
	}
	return ""
}

func lookup(entries []Entry, id string) Entry {
	for _, e := range entries {
		if e.ID == id {
			return e
		}
	}
	return entries[0]
}
