// internal/service/drift/engine.go

package drift

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"mixee/internal/service/schedule"
)

// Engine owns a set of named counters that drift on per-group periods
type Engine struct {
	groups map[string]Group
	order  []string
	rng    Random
	logger *zap.Logger

	// lifecycle serializes activation changes; it is never taken by a tick
	lifecycle sync.Mutex
	tasks     map[string]*schedule.Task
	disposed  bool

	mu         sync.RWMutex
	values     map[string]int
	active     bool
	generation uint64

	handlersMu   sync.RWMutex
	tickHandlers []func(group string, snap Snapshot)
}

// NewEngine creates an inactive engine; every counter reads zero until SetActive(true)
func NewEngine(groups []Group, rng Random, logger *zap.Logger) (*Engine, error) {
	if err := ValidateGroups(groups); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		groups: make(map[string]Group, len(groups)),
		rng:    rng,
		logger: logger,
		tasks:  make(map[string]*schedule.Task, len(groups)),
		values: make(map[string]int),
	}

	for _, g := range groups {
		e.groups[g.Name] = g
		e.order = append(e.order, g.Name)
		for _, c := range g.Counters {
			e.values[c.Name] = 0
		}
	}

	return e, nil
}

// SetActive turns the simulation on or off. Repeated calls with the same value are no-ops.
func (e *Engine) SetActive(active bool) {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if active {
		e.activate()
	} else {
		e.deactivate()
	}
}

// Active reports whether the engine is running
func (e *Engine) Active() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// Snapshot returns a copy of every counter
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

// Value returns a single counter, zero if unknown
func (e *Engine) Value(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.values[name]
}

// Tick runs one tick of a group immediately.
// It returns false when the engine is inactive or the group is unknown.
func (e *Engine) Tick(group string) bool {
	e.mu.RLock()
	gen := e.generation
	e.mu.RUnlock()

	return e.tick(group, gen)
}

// RegisterTickHandler registers a callback invoked after each committed tick and,
// once per group, after every activation change. Tick handlers run on the tick
// goroutine of the group, activation handlers on the SetActive caller; neither may
// call SetActive.
func (e *Engine) RegisterTickHandler(handler func(group string, snap Snapshot)) {
	e.handlersMu.Lock()
	defer e.handlersMu.Unlock()

	e.tickHandlers = append(e.tickHandlers, handler)
}

// RunningTasks returns the number of live periodic tasks
func (e *Engine) RunningTasks() int {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	n := 0
	for _, t := range e.tasks {
		if t.Running() {
			n++
		}
	}
	return n
}

// Dispose stops the engine for good; later SetActive(true) calls are ignored
func (e *Engine) Dispose() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	e.deactivate()
	e.disposed = true
}

func (e *Engine) activate() {
	if e.disposed {
		e.logger.Warn("activation ignored on disposed engine")
		return
	}

	e.mu.Lock()
	if e.active {
		e.mu.Unlock()
		return
	}
	e.active = true
	e.generation++
	gen := e.generation
	for _, g := range e.groups {
		for _, c := range g.Counters {
			e.values[c.Name] = Clamp(c.Baseline, c)
		}
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	// Baselines are pushed before the first tick can run
	e.notifyAll(snap)

	for _, name := range e.order {
		g := e.groups[name]
		task := schedule.NewTask(g.Name, schedule.Every(g.Period), func(ctx context.Context) {
			e.tick(g.Name, gen)
		})
		e.tasks[g.Name] = task
		task.Start(context.Background())
	}

	e.logger.Debug("counter engine activated", zap.Int("groups", len(e.order)))
}

func (e *Engine) deactivate() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()
		return
	}
	e.active = false
	e.generation++
	for name := range e.values {
		e.values[name] = 0
	}
	e.mu.Unlock()

	// Ticks already past the timer see the bumped generation and skip
	for name, task := range e.tasks {
		task.Stop()
		delete(e.tasks, name)
	}

	e.notifyAll(e.Snapshot())

	e.logger.Debug("counter engine deactivated")
}

func (e *Engine) tick(group string, gen uint64) bool {
	g, ok := e.groups[group]
	if !ok {
		return false
	}

	e.mu.Lock()
	if !e.active || e.generation != gen {
		e.mu.Unlock()
		return false
	}
	for _, c := range g.Counters {
		e.values[c.Name] = Step(e.rng, e.values[c.Name], c)
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.callTickHandlers(group, snap)

	return true
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := make(Snapshot, len(e.values))
	for k, v := range e.values {
		snap[k] = v
	}
	return snap
}

// notifyAll reports a lifecycle change once per group, in group order
func (e *Engine) notifyAll(snap Snapshot) {
	for _, name := range e.order {
		e.callTickHandlers(name, snap)
	}
}

func (e *Engine) callTickHandlers(group string, snap Snapshot) {
	e.handlersMu.RLock()
	handlers := make([]func(string, Snapshot), len(e.tickHandlers))
	copy(handlers, e.tickHandlers)
	e.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(group, snap)
	}
}
