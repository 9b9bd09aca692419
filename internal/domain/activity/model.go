package activity

import (
	"time"
)

// Category tags a synthetic activity event
type Category string

const (
	CategoryMessage     Category = "message"
	CategoryVideo       Category = "video"
	CategoryPost        Category = "post"
	CategoryCommunity   Category = "community"
	CategoryConnection  Category = "connection"
	CategoryMarketplace Category = "marketplace"
	CategoryLearning    Category = "learning"
)

// Categories is the closed set of event categories
var Categories = []Category{
	CategoryMessage,
	CategoryVideo,
	CategoryPost,
	CategoryCommunity,
	CategoryConnection,
	CategoryMarketplace,
	CategoryLearning,
}

// Valid reports whether c belongs to the closed set
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Counter names shared by the pulse engine and its consumers
const (
	CounterNearbyUsers      = "nearby_users"
	CounterActiveNow        = "active_now"
	CounterTotalConnections = "total_connections"
	CounterVideosWatched    = "videos_watched"
	CounterNewPosts         = "new_posts"
)

// Event is one "what's happening now" item
type Event struct {
	ID          string    `json:"id"`
	Category    Category  `json:"category"`
	Actor       string    `json:"actor"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats is the set of live-looking counters shown by the pulse widget
type Stats struct {
	NearbyUsers      int `json:"nearby_users"`
	ActiveNow        int `json:"active_now"`
	TotalConnections int `json:"total_connections"`
	VideosWatched    int `json:"videos_watched"`
	NewPosts         int `json:"new_posts"`
}

// StatsFromCounters maps named counters onto Stats; missing names read as zero
func StatsFromCounters(values map[string]int) Stats {
	return Stats{
		NearbyUsers:      values[CounterNearbyUsers],
		ActiveNow:        values[CounterActiveNow],
		TotalConnections: values[CounterTotalConnections],
		VideosWatched:    values[CounterVideosWatched],
		NewPosts:         values[CounterNewPosts],
	}
}

// IsZero reports whether every counter is zero
func (s Stats) IsZero() bool {
	return s == Stats{}
}
