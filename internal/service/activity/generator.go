// internal/service/activity/generator.go

package activity

import (
	"time"

	"github.com/google/uuid"

	"mixee/internal/content"
	"mixee/internal/domain/activity"
	"mixee/internal/service/schedule"
)

// Random is the random source used by the generator
type Random interface {
	Float64() float64
	Intn(n int) int
	Int63n(n int64) int64
}

// GeneratorConfig contains configuration for the event generator
type GeneratorConfig struct {
	LocationProbability float64
	MinInterval         time.Duration
	MaxInterval         time.Duration
}

// DefaultGeneratorConfig returns the observed generator parameters
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		LocationProbability: 0.7,
		MinInterval:         2 * time.Second,
		MaxInterval:         8 * time.Second,
	}
}

// Generator produces synthetic activity events from a content catalog
type Generator struct {
	catalog *content.Catalog
	rng     Random
	config  GeneratorConfig
	now     func() time.Time
	newID   func() string
}

// NewGenerator creates a new event generator
func NewGenerator(catalog *content.Catalog, rng Random, config GeneratorConfig) *Generator {
	return &Generator{
		catalog: catalog,
		rng:     rng,
		config:  config,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// WithClock overrides the time source used for event timestamps
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate creates one event with a fresh identity
func (g *Generator) Generate() activity.Event {
	category := activity.Categories[g.rng.Intn(len(activity.Categories))]
	phrases := g.catalog.Phrases[category]

	e := activity.Event{
		ID:          g.newID(),
		Category:    category,
		Actor:       g.catalog.Names[g.rng.Intn(len(g.catalog.Names))],
		Description: phrases[g.rng.Intn(len(phrases))],
		CreatedAt:   g.now(),
	}

	if g.rng.Float64() < g.config.LocationProbability {
		e.Location = g.catalog.Locations[g.rng.Intn(len(g.catalog.Locations))]
	}

	return e
}

// NextDelay returns the randomized wait before the next event
func (g *Generator) NextDelay() time.Duration {
	return schedule.Between(g.rng, g.config.MinInterval, g.config.MaxInterval)()
}
