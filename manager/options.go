// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manager

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// SchedulerKind selects which scheduler.Scheduler implementation a Runtime
// builds for each worker.
type SchedulerKind int

const (
	// SchedulerWorkStealingDeque is Variant A (§4.3): a pair of Chase–Lev
	// deques per worker.
	SchedulerWorkStealingDeque SchedulerKind = iota
	// SchedulerDistributedFIFO is Variant B (§4.3): an unbounded MPMC FIFO
	// per worker.
	SchedulerDistributedFIFO
)

// Config holds Runtime construction parameters. Zero value is not valid
// standalone; use NewConfig to get the documented defaults.
type Config struct {
	Workers         int
	TickResolution  time.Duration
	Logger          Logger
	Scheduler       SchedulerKind
	DefaultStackHint int
	MinStackHint     int
}

// Option configures a Config.
type Option func(*Config)

// WithWorkers sets the number of worker OS threads (realized as
// runtime.LockOSThread-pinned goroutines). Fewer than 1 is clamped to 1.
func WithWorkers(n int) Option {
	return func(c *Config) {
		if n < 1 {
			n = 1
		}
		c.Workers = n
	}
}

// WithTickResolution sets the event bridge's default blocking-poll timeout
// (spec.md §4.5's 5ms default tick).
func WithTickResolution(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.TickResolution = d
		}
	}
}

// WithLogger sets the structured logger threaded through every worker.
func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithScheduler selects the scheduler variant used by every worker.
func WithScheduler(kind SchedulerKind) Option {
	return func(c *Config) { c.Scheduler = kind }
}

// NewConfig builds a Config with documented defaults (one worker per
// logical CPU, a 5ms tick, the work-stealing-deque scheduler, no logger),
// then applies opts.
func NewConfig(opts ...Option) Config {
	c := Config{
		Workers:        runtime.NumCPU(),
		TickResolution: 5 * time.Millisecond,
		Scheduler:      SchedulerWorkStealingDeque,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ConfigFromEnv reads the three environment variables spec.md §6 names
// (FIBER_SYSTEM_THREADS, FIBER_DEFAULT_STACK_SIZE, FIBER_MIN_STACK_SIZE)
// and applies any that parse, on top of NewConfig's defaults. It never
// reads the environment implicitly — callers opt in by calling this
// function.
func ConfigFromEnv(opts ...Option) Config {
	c := NewConfig(opts...)
	if v, ok := os.LookupEnv("FIBER_SYSTEM_THREADS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Workers = n
		}
	}
	if v, ok := os.LookupEnv("FIBER_DEFAULT_STACK_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.DefaultStackHint = n
		}
	}
	if v, ok := os.LookupEnv("FIBER_MIN_STACK_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MinStackHint = n
		}
	}
	return c
}
