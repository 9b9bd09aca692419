// internal/content/catalog.go

package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mixee/internal/domain/activity"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// ErrInvalidCatalog is returned when a catalog is missing required content
var ErrInvalidCatalog = errors.New("invalid catalog")

// SectionEntry is a navigation section with its badge baseline
type SectionEntry struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Badge int    `yaml:"badge"`
}

// Catalog holds the fixed pools the simulation draws from
type Catalog struct {
	Names     []string                       `yaml:"names"`
	Locations []string                       `yaml:"locations"`
	Phrases   map[activity.Category][]string `yaml:"phrases"`
	Sections  []SectionEntry                 `yaml:"sections"`
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, falling back to the embedded one when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("error decoding catalog: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate checks that every pool has content and every category has phrases
func (c *Catalog) Validate() error {
	if len(c.Names) == 0 {
		return fmt.Errorf("%w: name pool is empty", ErrInvalidCatalog)
	}
	if len(c.Locations) == 0 {
		return fmt.Errorf("%w: location pool is empty", ErrInvalidCatalog)
	}
	for _, cat := range activity.Categories {
		if len(c.Phrases[cat]) == 0 {
			return fmt.Errorf("%w: no phrases for category %s", ErrInvalidCatalog, cat)
		}
	}
	for cat := range c.Phrases {
		if !cat.Valid() {
			return fmt.Errorf("%w: unknown category %s", ErrInvalidCatalog, cat)
		}
	}

	seen := make(map[string]bool, len(c.Sections))
	for _, s := range c.Sections {
		if s.ID == "" {
			return fmt.Errorf("%w: section without id", ErrInvalidCatalog)
		}
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate section %s", ErrInvalidCatalog, s.ID)
		}
		if s.Badge < 0 {
			return fmt.Errorf("%w: negative badge for section %s", ErrInvalidCatalog, s.ID)
		}
		seen[s.ID] = true
	}

	return nil
}

// NavSections returns the sections in navigation order
func (c *Catalog) NavSections() []activity.Section {
	out := make([]activity.Section, 0, len(c.Sections))
	for _, s := range c.Sections {
		out = append(out, activity.Section{ID: s.ID, Title: s.Title})
	}
	return out
}
