// internal/service/activity/pulse.go

package activity

import (
	"time"

	"go.uber.org/zap"

	"mixee/internal/content"
	"mixee/internal/domain/activity"
	"mixee/internal/service/drift"
)

// Counter group names
const (
	GroupPresence = "presence"
	GroupContent  = "content"
)

// PulseConfig contains configuration for the pulse widget
type PulseConfig struct {
	PresencePeriod time.Duration
	ContentPeriod  time.Duration
	Generator      GeneratorConfig
	Feed           FeedServiceConfig
}

// DefaultPulseConfig returns the observed pulse parameters
func DefaultPulseConfig() PulseConfig {
	return PulseConfig{
		PresencePeriod: 8 * time.Second,
		ContentPeriod:  15 * time.Second,
		Generator:      DefaultGeneratorConfig(),
		Feed: FeedServiceConfig{
			Capacity:  DefaultFeedCapacity,
			SeedCount: DefaultSeedCount,
		},
	}
}

// PulseGroups returns the counter groups with their fixture baselines and bounds
func PulseGroups(presencePeriod, contentPeriod time.Duration) []drift.Group {
	return []drift.Group{
		{
			Name:   GroupPresence,
			Period: presencePeriod,
			Counters: []drift.CounterSpec{
				{Name: activity.CounterNearbyUsers, Baseline: 23, Probability: 0.5, Floor: 15},
				{Name: activity.CounterActiveNow, Baseline: 12, Probability: 0.4, Floor: 5, Ceiling: 40},
				{Name: activity.CounterTotalConnections, Baseline: 156, Probability: 0.3, Floor: 100},
			},
		},
		{
			Name:   GroupContent,
			Period: contentPeriod,
			Counters: []drift.CounterSpec{
				{Name: activity.CounterVideosWatched, Baseline: 6058, Probability: 0.7, MinStep: 1, MaxStep: 5, Growing: true},
				{Name: activity.CounterNewPosts, Baseline: 63, Probability: 0.3},
			},
		},
	}
}

// Pulse composes the counter engine and the feed service behind one activation switch
type Pulse struct {
	counters *drift.Engine
	feed     *FeedService
	logger   *zap.Logger
}

// NewPulse creates an inactive pulse drawing events from catalog
func NewPulse(catalog *content.Catalog, rng Random, config PulseConfig, logger *zap.Logger) (*Pulse, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	counters, err := drift.NewEngine(
		PulseGroups(config.PresencePeriod, config.ContentPeriod),
		rng,
		logger.Named("counters"),
	)
	if err != nil {
		return nil, err
	}

	return &Pulse{
		counters: counters,
		feed:     NewFeedService(NewGenerator(catalog, rng, config.Generator), config.Feed, logger.Named("feed")),
		logger:   logger,
	}, nil
}

// SetActive turns counters and feed on or off together
func (p *Pulse) SetActive(active bool) {
	p.counters.SetActive(active)
	p.feed.SetActive(active)

	p.logger.Info("pulse toggled", zap.Bool("active", active))
}

// Active reports whether the pulse is running
func (p *Pulse) Active() bool {
	return p.counters.Active()
}

// Stats returns a snapshot of the counters
func (p *Pulse) Stats() activity.Stats {
	return activity.StatsFromCounters(p.counters.Snapshot())
}

// RecentEvents returns the retained events, newest first
func (p *Pulse) RecentEvents() []activity.Event {
	return p.feed.Events()
}

// RegisterTickHandler registers a callback invoked after each counter tick
func (p *Pulse) RegisterTickHandler(handler func(activity.Stats)) {
	p.counters.RegisterTickHandler(func(_ string, snap drift.Snapshot) {
		handler(activity.StatsFromCounters(snap))
	})
}

// RegisterEventHandler registers a callback invoked after each appended event
func (p *Pulse) RegisterEventHandler(handler func(activity.Event)) {
	p.feed.RegisterEventHandler(handler)
}

// RegisterClearHandler registers a callback invoked after deactivation empties the feed
func (p *Pulse) RegisterClearHandler(handler func()) {
	p.feed.RegisterClearHandler(handler)
}

// Counters exposes the underlying counter engine
func (p *Pulse) Counters() *drift.Engine {
	return p.counters
}

// Feed exposes the underlying feed service
func (p *Pulse) Feed() *FeedService {
	return p.feed
}

// Dispose stops every schedule for good
func (p *Pulse) Dispose() {
	p.counters.Dispose()
	p.feed.Dispose()
}

var _ activity.Pulse = (*Pulse)(nil)
