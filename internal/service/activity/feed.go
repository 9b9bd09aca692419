// internal/service/activity/feed.go

package activity

import (
	"sync"

	"mixee/internal/domain/activity"
)

// DefaultFeedCapacity is the number of events a feed retains
const DefaultFeedCapacity = 12

// Feed is a bounded, newest-first event history
type Feed struct {
	mu       sync.RWMutex
	events   []activity.Event
	capacity int
}

// NewFeed creates an empty feed; a capacity below 1 uses the default
func NewFeed(capacity int) *Feed {
	if capacity < 1 {
		capacity = DefaultFeedCapacity
	}
	return &Feed{
		events:   make([]activity.Event, 0, capacity+1),
		capacity: capacity,
	}
}

// Append inserts e at the head and evicts the oldest events beyond capacity
func (f *Feed) Append(e activity.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append(f.events, activity.Event{})
	copy(f.events[1:], f.events)
	f.events[0] = e

	if len(f.events) > f.capacity {
		f.events = f.events[:f.capacity]
	}
}

// Events returns a copy of the retained events, newest first
func (f *Feed) Events() []activity.Event {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]activity.Event, len(f.events))
	copy(out, f.events)
	return out
}

// Len returns the number of retained events
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.events)
}

// Capacity returns the retention cap
func (f *Feed) Capacity() int {
	return f.capacity
}

// Clear drops every event
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = f.events[:0]
}
