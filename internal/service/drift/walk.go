// internal/service/drift/walk.go

package drift

import (
	"fmt"
	"time"
)

// Random is the subset of a random source a walk needs
type Random interface {
	Float64() float64
	Intn(n int) int
}

// CounterSpec describes one bounded random-walk counter
type CounterSpec struct {
	Name        string
	Baseline    int
	Probability float64 // chance of a step on each tick
	MinStep     int     // growing counters only
	MaxStep     int     // growing counters only
	Floor       int
	Ceiling     int // 0 means unbounded
	Growing     bool
}

// Group is a set of counters sharing one tick period
type Group struct {
	Name     string
	Period   time.Duration
	Counters []CounterSpec
}

// Snapshot is a point-in-time copy of counter values keyed by name
type Snapshot map[string]int

// Step draws one random trial for a counter and clamps the result
func Step(rng Random, value int, spec CounterSpec) int {
	if rng.Float64() < spec.Probability {
		if spec.Growing {
			value += growth(rng, spec)
		} else if rng.Intn(2) == 0 {
			value--
		} else {
			value++
		}
	}

	return Clamp(value, spec)
}

// Clamp enforces the floor (never below zero) and, when set, the ceiling
func Clamp(value int, spec CounterSpec) int {
	floor := spec.Floor
	if floor < 0 {
		floor = 0
	}
	if value < floor {
		value = floor
	}
	if spec.Ceiling > 0 && value > spec.Ceiling {
		value = spec.Ceiling
	}
	return value
}

func growth(rng Random, spec CounterSpec) int {
	lo, hi := spec.MinStep, spec.MaxStep
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// ValidateGroups checks that group and counter definitions are usable
func ValidateGroups(groups []Group) error {
	seen := make(map[string]bool)
	for _, g := range groups {
		if g.Name == "" {
			return fmt.Errorf("group name is required")
		}
		if g.Period <= 0 {
			return fmt.Errorf("group %s: period must be positive", g.Name)
		}
		for _, c := range g.Counters {
			if seen[c.Name] {
				return fmt.Errorf("group %s: duplicate counter %s", g.Name, c.Name)
			}
			seen[c.Name] = true

			if c.Probability < 0 || c.Probability > 1 {
				return fmt.Errorf("counter %s: probability must be within [0, 1]", c.Name)
			}
			if c.Ceiling > 0 && c.Ceiling < c.Floor {
				return fmt.Errorf("counter %s: ceiling below floor", c.Name)
			}
			if c.Baseline != Clamp(c.Baseline, c) {
				return fmt.Errorf("counter %s: baseline outside bounds", c.Name)
			}
		}
	}
	return nil
}
