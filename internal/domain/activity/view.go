package activity

import (
	"sync"
)

// ViewState is the display state of the pulse widget
type ViewState string

const (
	ViewCollapsed ViewState = "collapsed"
	ViewExpanded  ViewState = "expanded"
)

// Shell holds the collapsed/expanded state. It never touches the engines.
type Shell struct {
	mu    sync.Mutex
	state ViewState

	handlersMu     sync.RWMutex
	changeHandlers []func(ViewState)
}

// NewShell creates a collapsed shell
func NewShell() *Shell {
	return &Shell{state: ViewCollapsed}
}

// State returns the current view state
func (s *Shell) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Toggle flips the view state and returns the new one
func (s *Shell) Toggle() ViewState {
	s.mu.Lock()
	if s.state == ViewExpanded {
		s.state = ViewCollapsed
	} else {
		s.state = ViewExpanded
	}
	state := s.state
	s.mu.Unlock()

	s.callChangeHandlers(state)
	return state
}

// Set puts the shell in a given state; unknown states collapse it
func (s *Shell) Set(state ViewState) ViewState {
	if state != ViewExpanded {
		state = ViewCollapsed
	}

	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()

	if changed {
		s.callChangeHandlers(state)
	}
	return state
}

// RegisterChangeHandler registers a callback invoked after every view change,
// whichever caller made it
func (s *Shell) RegisterChangeHandler(handler func(ViewState)) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()

	s.changeHandlers = append(s.changeHandlers, handler)
}

func (s *Shell) callChangeHandlers(state ViewState) {
	s.handlersMu.RLock()
	handlers := make([]func(ViewState), len(s.changeHandlers))
	copy(handlers, s.changeHandlers)
	s.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(state)
	}
}
