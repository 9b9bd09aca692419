package activity

// Pulse defines the activation contract of the live-activity widget
type Pulse interface {
	// SetActive turns the simulation on (baseline + schedules) or off (zero + cancel)
	SetActive(active bool)

	// Active reports whether the simulation is running
	Active() bool

	// Stats returns a snapshot of the counters
	Stats() Stats

	// RecentEvents returns the retained events, newest first
	RecentEvents() []Event

	// RegisterTickHandler registers a callback invoked after each counter tick and
	// after every activation change
	RegisterTickHandler(handler func(Stats))

	// RegisterEventHandler registers a callback invoked after each appended event,
	// seeded events included
	RegisterEventHandler(handler func(Event))

	// RegisterClearHandler registers a callback invoked after deactivation empties the feed
	RegisterClearHandler(handler func())
}

// Section is a top-level navigation entry of the deck
type Section struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Badge is the indicator shown next to a navigation section
type Badge struct {
	Section string `json:"section"`
	Count   int    `json:"count"`
	Display string `json:"display"`
}

// Badges defines the navigation badge state
type Badges interface {
	// SetActive turns badge drift on or off
	SetActive(active bool)

	// Active reports whether badge drift is running
	Active() bool

	// Badges returns the badges in navigation order
	Badges() []Badge

	// RegisterChangeHandler registers a callback invoked after each badge tick
	RegisterChangeHandler(handler func([]Badge))
}
