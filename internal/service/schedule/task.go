// internal/service/schedule/task.go

package schedule

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Interval returns the delay before the next run of a task
type Interval func() time.Duration

// Every returns a fixed interval
func Every(d time.Duration) Interval {
	return func() time.Duration {
		return d
	}
}

// Int63Source draws random int64 values
type Int63Source interface {
	Int63n(n int64) int64
}

// Between returns a random interval in [min, max]
func Between(rng Int63Source, min, max time.Duration) Interval {
	return func() time.Duration {
		if max <= min {
			return min
		}
		return min + time.Duration(rng.Int63n(int64(max-min)+1))
	}
}

// Task is a periodic job owning exactly one goroutine while running.
// Stop is the single cancellation point: once it returns, run will not be invoked again.
type Task struct {
	name     string
	interval Interval
	run      func(ctx context.Context)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTask creates a new task that calls run after every interval
func NewTask(name string, interval Interval, run func(ctx context.Context)) *Task {
	return &Task{
		name:     name,
		interval: interval,
		run:      run,
	}
}

// Name returns the task name
func (t *Task) Name() string {
	return t.name
}

// Start begins the periodic loop. It returns false if the task is already running.
func (t *Task) Start(parent context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return false
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go t.loop(ctx, done)

	return true
}

// Stop cancels the loop and waits for its goroutine to exit.
// It returns false if the task was not running.
func (t *Task) Stop() bool {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel = nil
	t.done = nil
	t.mu.Unlock()

	if cancel == nil {
		return false
	}

	cancel()
	<-done

	return true
}

// Running reports whether the loop is live
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cancel != nil
}

func (t *Task) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		// A parent cancellation ends the loop without Stop; release the slot so Start works again
		t.mu.Lock()
		if t.done == done {
			t.cancel()
			t.cancel = nil
			t.done = nil
		}
		t.mu.Unlock()
		close(done)
	}()

	for {
		timer := time.NewTimer(t.interval())

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		// A cancel racing the timer must win
		if ctx.Err() != nil {
			return
		}

		t.run(ctx)
	}
}

// Rand is a math/rand source safe for use from several task goroutines
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand creates a locked random source. A zero seed picks one from the clock.
func NewRand(seed int64) *Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a number in [0.0, 1.0)
func (r *Rand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Float64()
}

// Intn returns a number in [0, n)
func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Intn(n)
}

// Int63n returns a number in [0, n)
func (r *Rand) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Int63n(n)
}
