// internal/service/activity/feed_service.go

package activity

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"mixee/internal/domain/activity"
	"mixee/internal/service/schedule"
)

// DefaultSeedCount is the number of events generated on activation
const DefaultSeedCount = 8

// FeedServiceConfig contains configuration for the feed service
type FeedServiceConfig struct {
	Capacity  int
	SeedCount int
}

// FeedService drives a Feed from a Generator on a randomized schedule
type FeedService struct {
	generator *Generator
	feed      *Feed
	config    FeedServiceConfig
	logger    *zap.Logger

	lifecycle sync.Mutex
	task      *schedule.Task
	disposed  bool

	mu         sync.RWMutex
	active     bool
	generation uint64

	handlersMu    sync.RWMutex
	eventHandlers []func(activity.Event)
	clearHandlers []func()
}

// NewFeedService creates an inactive feed service
func NewFeedService(generator *Generator, config FeedServiceConfig, logger *zap.Logger) *FeedService {
	if config.SeedCount < 0 {
		config.SeedCount = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fs := &FeedService{
		generator: generator,
		feed:      NewFeed(config.Capacity),
		config:    config,
		logger:    logger,
	}

	fs.task = schedule.NewTask("feed", generator.NextDelay, func(ctx context.Context) {
		fs.mu.RLock()
		gen := fs.generation
		fs.mu.RUnlock()
		fs.emit(gen)
	})

	return fs
}

// SetActive seeds the feed and starts generation, or clears it and cancels generation
func (fs *FeedService) SetActive(active bool) {
	fs.lifecycle.Lock()
	defer fs.lifecycle.Unlock()

	if active {
		fs.activate()
	} else {
		fs.deactivate()
	}
}

// Active reports whether generation is running
func (fs *FeedService) Active() bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.active
}

// Events returns the retained events, newest first
func (fs *FeedService) Events() []activity.Event {
	return fs.feed.Events()
}

// Running reports whether the generation schedule is live
func (fs *FeedService) Running() bool {
	return fs.task.Running()
}

// Emit generates and appends one event now.
// It returns false when the service is inactive.
func (fs *FeedService) Emit() bool {
	fs.mu.RLock()
	gen := fs.generation
	fs.mu.RUnlock()

	return fs.emit(gen)
}

// RegisterEventHandler registers a callback invoked after each appended event
func (fs *FeedService) RegisterEventHandler(handler func(activity.Event)) {
	fs.handlersMu.Lock()
	defer fs.handlersMu.Unlock()

	fs.eventHandlers = append(fs.eventHandlers, handler)
}

// RegisterClearHandler registers a callback invoked after deactivation empties the feed
func (fs *FeedService) RegisterClearHandler(handler func()) {
	fs.handlersMu.Lock()
	defer fs.handlersMu.Unlock()

	fs.clearHandlers = append(fs.clearHandlers, handler)
}

// Dispose stops the service for good
func (fs *FeedService) Dispose() {
	fs.lifecycle.Lock()
	defer fs.lifecycle.Unlock()

	fs.deactivate()
	fs.disposed = true
}

func (fs *FeedService) activate() {
	if fs.disposed {
		fs.logger.Warn("activation ignored on disposed feed")
		return
	}

	fs.mu.Lock()
	if fs.active {
		fs.mu.Unlock()
		return
	}
	fs.active = true
	fs.generation++
	fs.feed.Clear()
	seeded := make([]activity.Event, 0, fs.config.SeedCount)
	for i := 0; i < fs.config.SeedCount; i++ {
		e := fs.generator.Generate()
		fs.feed.Append(e)
		seeded = append(seeded, e)
	}
	fs.mu.Unlock()

	// Seeded events are pushed oldest first, before the schedule starts
	for _, e := range seeded {
		fs.callEventHandlers(e)
	}

	fs.task.Start(context.Background())

	fs.logger.Debug("feed activated", zap.Int("seeded", fs.config.SeedCount))
}

func (fs *FeedService) deactivate() {
	fs.mu.Lock()
	if !fs.active {
		fs.mu.Unlock()
		return
	}
	fs.active = false
	fs.generation++
	fs.feed.Clear()
	fs.mu.Unlock()

	fs.task.Stop()

	fs.handlersMu.RLock()
	handlers := make([]func(), len(fs.clearHandlers))
	copy(handlers, fs.clearHandlers)
	fs.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler()
	}

	fs.logger.Debug("feed deactivated")
}

func (fs *FeedService) emit(gen uint64) bool {
	fs.mu.Lock()
	if !fs.active || fs.generation != gen {
		fs.mu.Unlock()
		return false
	}
	e := fs.generator.Generate()
	fs.feed.Append(e)
	fs.mu.Unlock()

	fs.callEventHandlers(e)

	return true
}

func (fs *FeedService) callEventHandlers(e activity.Event) {
	fs.handlersMu.RLock()
	handlers := make([]func(activity.Event), len(fs.eventHandlers))
	copy(handlers, fs.eventHandlers)
	fs.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(e)
	}
}
