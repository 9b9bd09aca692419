// internal/service/activity/badges.go

package activity

import (
	"strconv"
	"time"

	"go.uber.org/zap"

	"mixee/internal/content"
	"mixee/internal/domain/activity"
	"mixee/internal/service/drift"
)

// GroupBadges is the counter group name of the navigation badges
const GroupBadges = "badges"

// BadgeConfig contains configuration for navigation badges
type BadgeConfig struct {
	Period      time.Duration
	Probability float64
	Ceiling     int
	Threshold   int
}

// DefaultBadgeConfig returns the observed badge parameters
func DefaultBadgeConfig() BadgeConfig {
	return BadgeConfig{
		Period:      12 * time.Second,
		Probability: 0.3,
		Ceiling:     25,
		Threshold:   9,
	}
}

// Display renders a badge count: empty for zero, capped as "N+" above the threshold
func Display(count, threshold int) string {
	if count <= 0 {
		return ""
	}
	if threshold > 0 && count > threshold {
		return strconv.Itoa(threshold) + "+"
	}
	return strconv.Itoa(count)
}

// NavigationBadges drifts one counter per navigation section
type NavigationBadges struct {
	sections  []activity.Section
	engine    *drift.Engine
	threshold int
}

// NewNavigationBadges creates inactive badges for the catalog's sections
func NewNavigationBadges(catalog *content.Catalog, rng drift.Random, config BadgeConfig, logger *zap.Logger) (*NavigationBadges, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	group := drift.Group{Name: GroupBadges, Period: config.Period}
	for _, s := range catalog.Sections {
		ceiling := config.Ceiling
		if ceiling > 0 && ceiling < s.Badge {
			ceiling = s.Badge
		}
		group.Counters = append(group.Counters, drift.CounterSpec{
			Name:        s.ID,
			Baseline:    s.Badge,
			Probability: config.Probability,
			Ceiling:     ceiling,
		})
	}

	engine, err := drift.NewEngine([]drift.Group{group}, rng, logger)
	if err != nil {
		return nil, err
	}

	return &NavigationBadges{
		sections:  catalog.NavSections(),
		engine:    engine,
		threshold: config.Threshold,
	}, nil
}

// SetActive turns badge drift on or off
func (b *NavigationBadges) SetActive(active bool) {
	b.engine.SetActive(active)
}

// Active reports whether badge drift is running
func (b *NavigationBadges) Active() bool {
	return b.engine.Active()
}

// Badges returns the badges in navigation order
func (b *NavigationBadges) Badges() []activity.Badge {
	return b.fromSnapshot(b.engine.Snapshot())
}

// Count returns one section's count
func (b *NavigationBadges) Count(section string) int {
	return b.engine.Value(section)
}

// Tick runs one badge tick immediately
func (b *NavigationBadges) Tick() bool {
	return b.engine.Tick(GroupBadges)
}

// RegisterChangeHandler registers a callback invoked after each badge tick
func (b *NavigationBadges) RegisterChangeHandler(handler func([]activity.Badge)) {
	b.engine.RegisterTickHandler(func(_ string, snap drift.Snapshot) {
		handler(b.fromSnapshot(snap))
	})
}

// Dispose stops badge drift for good
func (b *NavigationBadges) Dispose() {
	b.engine.Dispose()
}

func (b *NavigationBadges) fromSnapshot(snap drift.Snapshot) []activity.Badge {
	out := make([]activity.Badge, 0, len(b.sections))
	for _, s := range b.sections {
		count := snap[s.ID]
		out = append(out, activity.Badge{
			Section: s.ID,
			Count:   count,
			Display: Display(count, b.threshold),
		})
	}
	return out
}

var _ activity.Badges = (*NavigationBadges)(nil)
