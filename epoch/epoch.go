// Package epoch provides epoch-based reclamation guards for lock-free
// structures.
//
// Writers that unlink a pointer from a shared structure must not destroy it
// while a concurrent reader may still dereference it. The Collector defers
// those destructions: readers hold a Guard for the duration of an operation,
// writers file the displaced pointer's destructor with Retire, and the
// destructor runs only once every guard that was active at retirement time
// has been released.
//
// # Usage
//
//	c := epoch.NewCollector()
//
//	g := c.Acquire()
//	defer g.Release()
//	// ... read shared pointers, or unlink one and file its destructor:
//	g.Retire(func() { pool.Put(old) })
//
// Reclamation is amortized: once enough retirements are pending, a Retire
// call runs a reclaim pass inline (optionally paced, see Options). Callers
// can also drive passes explicitly with TryReclaim, and Drain runs
// everything during shutdown.
//
// # Reclamation Safety
//
// The global epoch only advances. A guard publishes the epoch it entered at;
// Retire files destructors under the epoch current at call time. A
// destructor filed at epoch E runs only when the minimum epoch across active
// guards exceeds E. Any guard that could have observed the retired pointer
// was acquired before the pointer was unlinked and therefore entered at an
// epoch <= E, so it blocks reclamation until released.
//
// # Garbage-Collected Runtimes
//
// On a collected runtime the Collector is not needed for memory safety - a
// reader's reference keeps memory alive regardless. What it adds is
// deterministic destruction: engines that pool page buffers, count
// allocations, or hold non-memory resources know exactly when a retired
// value is dead. Embedders that need none of that can skip retirement
// entirely and use plain shared ownership.
package epoch

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
	"golang.org/x/time/rate"
)

const (
	// DefaultMaxGuards bounds the number of simultaneously held guards.
	DefaultMaxGuards = 1024

	// DefaultReclaimThreshold is the pending-retirement count that triggers
	// an amortized reclaim pass.
	DefaultReclaimThreshold = 128
)

// Options configure a Collector.
type Options struct {
	// MaxGuards bounds the number of guards held concurrently. Acquire
	// yields and retries when every slot is busy, so guards must be
	// short-lived.
	MaxGuards int

	// ReclaimThreshold is the number of pending retirements that triggers
	// an inline reclaim pass during Retire. 0 disables amortized
	// reclamation; callers then drive TryReclaim themselves.
	ReclaimThreshold int

	// MaxReclaimPerSecond paces amortized reclaim passes so retirement
	// bursts do not turn into reclaim storms. 0 means unpaced.
	MaxReclaimPerSecond float64
}

// slot holds the epoch a guard entered at; zero means free. Slots are
// padded to a cache line so concurrent Acquire/Release do not false-share.
type slot struct {
	epoch atomic.Uint64
	_     cpu.CacheLinePad
}

// Collector tracks active guards and defers retired destructors until no
// guard that could still observe them remains active.
//
// All methods are safe for concurrent use.
type Collector struct {
	global atomic.Uint64
	slots  []slot
	next   atomic.Uint64 // rotating probe start for slot claims

	mu      sync.Mutex
	retired map[uint64][]func()

	pending   atomic.Int64
	threshold int64
	limiter   *rate.Limiter

	retiredTotal   atomic.Uint64
	reclaimedTotal atomic.Uint64
}

// Stats is a point-in-time snapshot of collector counters.
type Stats struct {
	Retired      uint64 // destructors filed, cumulative
	Reclaimed    uint64 // destructors run, cumulative
	Pending      int64  // filed but not yet run
	ActiveGuards int    // guards currently held
}

// NewCollector creates a Collector.
func NewCollector(optFns ...func(*Options)) *Collector {
	o := Options{
		MaxGuards:        DefaultMaxGuards,
		ReclaimThreshold: DefaultReclaimThreshold,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.MaxGuards <= 0 {
		o.MaxGuards = DefaultMaxGuards
	}

	c := &Collector{
		slots:     make([]slot, o.MaxGuards),
		retired:   make(map[uint64][]func()),
		threshold: int64(o.ReclaimThreshold),
	}

	if o.MaxReclaimPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(o.MaxReclaimPerSecond), 1)
	}

	// Slot value 0 marks a free slot, so the epoch counter starts at 1.
	c.global.Store(1)

	return c
}

// Guard scopes one thread's access to guarded memory. It must be released
// exactly when the operation it covers ends; holding guards long delays
// every reclamation filed in the meantime.
type Guard struct {
	c *Collector
	s *slot
}

// Acquire claims a guard at the current epoch.
func (c *Collector) Acquire() *Guard {
	e := c.global.Load()
	s := c.claim(e)

	// Republish if the epoch advanced between the load and the claim, so a
	// reclaimer can never compute a minimum that misses this guard.
	for {
		cur := c.global.Load()
		if cur == e {
			break
		}
		e = cur
		s.epoch.Store(e)
	}

	return &Guard{c: c, s: s}
}

func (c *Collector) claim(e uint64) *slot {
	n := uint64(len(c.slots))
	for {
		start := c.next.Add(1)
		for i := uint64(0); i < n; i++ {
			s := &c.slots[(start+i)%n]
			if s.epoch.Load() == 0 && s.epoch.CompareAndSwap(0, e) {
				return s
			}
		}
		// Every slot is busy. Guards are short-lived; yield and retry.
		runtime.Gosched()
	}
}

// Release ends the guard's protection. Release is idempotent; using the
// guard after releasing it is a caller bug.
func (g *Guard) Release() {
	if g == nil || g.s == nil {
		return
	}
	g.s.epoch.Store(0)
	g.s = nil
}

// Epoch returns the epoch the guard currently pins, or 0 if released.
func (g *Guard) Epoch() uint64 {
	if g == nil || g.s == nil {
		return 0
	}
	return g.s.epoch.Load()
}

// Retire schedules drop to run once every guard active at the time of the
// call has been released. The caller must have already unlinked the value
// drop destroys; the guard must still be held. A nil drop is ignored.
func (g *Guard) Retire(drop func()) {
	if drop == nil {
		return
	}
	g.c.retire(drop)
}

func (c *Collector) retire(drop func()) {
	e := c.global.Load()

	c.mu.Lock()
	c.retired[e] = append(c.retired[e], drop)
	c.mu.Unlock()

	c.retiredTotal.Add(1)

	if n := c.pending.Add(1); c.threshold > 0 && n >= c.threshold {
		if c.limiter == nil || c.limiter.Allow() {
			c.TryReclaim()
		}
	}
}

// Advance increments the global epoch and returns the new value.
func (c *Collector) Advance() uint64 {
	return c.global.Add(1)
}

// TryReclaim advances the global epoch and runs every retired destructor
// filed before the minimum epoch still pinned by an active guard. It
// returns the number of destructors run.
func (c *Collector) TryReclaim() int {
	c.Advance()
	min := c.minActive()

	var ready []func()
	c.mu.Lock()
	for e, drops := range c.retired {
		if e < min {
			ready = append(ready, drops...)
			delete(c.retired, e)
		}
	}
	c.mu.Unlock()

	if len(ready) == 0 {
		return 0
	}

	// Destructors run outside the lock; they may take arbitrary user code
	// paths (pools, accounting) and must not block retirement.
	for _, drop := range ready {
		drop()
	}

	c.pending.Add(-int64(len(ready)))
	c.reclaimedTotal.Add(uint64(len(ready)))

	return len(ready)
}

func (c *Collector) minActive() uint64 {
	min := c.global.Load()
	for i := range c.slots {
		if e := c.slots[i].epoch.Load(); e != 0 && e < min {
			min = e
		}
	}
	return min
}

// Drain waits for every active guard to release, then runs all pending
// destructors. It is the shutdown path: no new guards may be acquired
// concurrently, or Drain may never return. It returns the number of
// destructors run.
func (c *Collector) Drain() int {
	for c.Active() > 0 {
		runtime.Gosched()
	}

	var ready []func()
	c.mu.Lock()
	for e, drops := range c.retired {
		ready = append(ready, drops...)
		delete(c.retired, e)
	}
	c.mu.Unlock()

	for _, drop := range ready {
		drop()
	}

	if n := len(ready); n > 0 {
		c.pending.Add(-int64(n))
		c.reclaimedTotal.Add(uint64(n))
		return n
	}

	return 0
}

// Active returns the number of currently held guards.
func (c *Collector) Active() int {
	n := 0
	for i := range c.slots {
		if c.slots[i].epoch.Load() != 0 {
			n++
		}
	}
	return n
}

// Pending returns the number of retired destructors not yet run.
func (c *Collector) Pending() int {
	return int(c.pending.Load())
}

// Epoch returns the current global epoch.
func (c *Collector) Epoch() uint64 {
	return c.global.Load()
}

// Stats returns a snapshot of the collector counters.
func (c *Collector) Stats() Stats {
	return Stats{
		Retired:      c.retiredTotal.Load(),
		Reclaimed:    c.reclaimedTotal.Load(),
		Pending:      c.pending.Load(),
		ActiveGuards: c.Active(),
	}
}
