package pagetable

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/pagetable/internal/conv"
	"github.com/hupe1980/pagetable/internal/resource"
)

// PageID identifies a page in the table.
type PageID uint64

const (
	// FanBits is the number of identifier bits consumed per radix level.
	FanBits = 18
	// FanOut is the number of entries per radix node.
	FanOut = 1 << FanBits
	// FanMask extracts the second-level index from an identifier.
	FanMask = FanOut - 1

	// MaxPageID is the largest identifier two radix levels can address.
	MaxPageID PageID = 1<<(2*FanBits) - 1
)

// Page is the constraint on stored page types.
//
// Clone must copy deeply enough that mutating the clone leaves the original
// untouched; updates transform clones, never installed pages. Version is the
// caller's conflict token: an update through a View fails with *ErrConflict
// once the installed page's version no longer matches the one the view
// observed. Both methods must be cheap value-receiver methods, as the table
// calls them on its hot paths.
type Page[P any] interface {
	Clone() P
	Version() uint64
}

// Table is a lock-free two-level page table mapping dense page identifiers
// to pages.
//
// Lookups are pointer chases over the two radix levels and allocate nothing.
// Inserts materialize the covering second-level node on first touch. All
// methods are safe for concurrent use; the only write coordination is the
// compare-and-swap on the slot or child being changed.
type Table[P Page[P]] struct {
	root *node1[P]

	resources   *resource.Controller
	releaseFunc func(*P)
	metrics     MetricsCollector
	logger      *Logger

	node1Size int64
	node2Size int64

	stats  tableStats
	closed atomic.Bool
}

// New creates a new Table.
//
// The first radix level is allocated eagerly; with a memory limit configured
// (see Options), New fails with *ErrMemoryLimit when even that does not fit.
func New[P Page[P]](optFns ...func(*Options[P])) (*Table[P], error) {
	opts := applyOptions(optFns)

	node1Size, err := node1Bytes[P]()
	if err != nil {
		return nil, fmt.Errorf("pagetable: node sizing: %w", err)
	}
	node2Size, err := node2Bytes[P]()
	if err != nil {
		return nil, fmt.Errorf("pagetable: node sizing: %w", err)
	}

	resources := resource.NewController(resource.Config{
		MemoryLimitBytes: opts.MemoryLimitBytes,
	})
	if err := resources.AcquireMemory(node1Size); err != nil {
		return nil, &ErrMemoryLimit{
			Requested: node1Size,
			Limit:     resources.MemoryLimit(),
			cause:     err,
		}
	}

	t := &Table[P]{
		root:        new(node1[P]),
		resources:   resources,
		releaseFunc: opts.ReleaseFunc,
		metrics:     opts.MetricsCollector,
		logger:      opts.Logger,
		node1Size:   node1Size,
		node2Size:   node2Size,
	}

	t.logger.Debug("table created",
		"fan_out", FanOut,
		"max_page_id", uint64(MaxPageID),
		"memory_limit_bytes", opts.MemoryLimitBytes,
	)

	return t, nil
}

// Insert installs page under id.
//
// The identifier must be unoccupied: the table is insert-once, and a
// duplicate insert panics with *ErrDuplicateInsert while the first page
// stays installed. Identifiers above MaxPageID panic with *ErrOutOfRange.
// The caller owns the page until Insert returns; afterwards it is shared
// and must only change through View.Update.
func (t *Table[P]) Insert(g Guard, id PageID, page P) {
	start := time.Now()

	validateID(id)
	hi, lo := splitID(id)

	child := t.child(hi)
	if !child.slots[lo].CompareAndSwap(nil, &page) {
		panic(&ErrDuplicateInsert{ID: id})
	}
	child.occupied.Add(1)

	t.stats.pagesInserted.Add(1)
	t.metrics.RecordInsert(time.Since(start))
	t.logger.LogInsert(id)
}

// Get returns a view of the page under id.
//
// Get allocates nothing: a missing page, with or without its covering
// second-level node, reports (View, false) without materializing anything.
// The view is valid only while g is held. Identifiers above MaxPageID panic
// with *ErrOutOfRange.
func (t *Table[P]) Get(g Guard, id PageID) (View[P], bool) {
	validateID(id)
	hi, lo := splitID(id)

	child := t.root.children[hi].Load()
	if child == nil {
		return View[P]{}, false
	}

	slot := &child.slots[lo]
	cur := slot.Load()
	if cur == nil {
		return View[P]{}, false
	}

	return View[P]{
		table:   t,
		id:      id,
		slot:    slot,
		read:    cur,
		version: (*cur).Version(),
	}, true
}

// child returns the second-level node covering hi, creating it on first
// touch. Creation is a single-shot race: every contender allocates once, one
// install CAS wins, losers discard their node and adopt the winner's.
func (t *Table[P]) child(hi int) *node2[P] {
	if child := t.root.children[hi].Load(); child != nil {
		return child
	}
	return t.growChild(hi)
}

func (t *Table[P]) growChild(hi int) *node2[P] {
	if err := t.resources.AcquireMemory(t.node2Size); err != nil {
		// The budget's last bytes may have gone to a contender that already
		// installed this child; adopt its node before treating the budget
		// as exhausted.
		if child := t.root.children[hi].Load(); child != nil {
			return child
		}
		panic(&ErrMemoryLimit{
			Requested: t.node2Size,
			Limit:     t.resources.MemoryLimit(),
			cause:     err,
		})
	}
	t.stats.nodesAllocated.Add(1)

	fresh := new(node2[P])
	if t.root.children[hi].CompareAndSwap(nil, fresh) {
		t.stats.nodesInstalled.Add(1)
		t.root.occupied.Add(1)
		return fresh
	}

	t.resources.ReleaseMemory(t.node2Size)
	t.stats.nodesDiscarded.Add(1)

	return t.root.children[hi].Load()
}

func (t *Table[P]) release(page *P) {
	t.stats.pagesReleased.Add(1)
	if t.releaseFunc != nil {
		t.releaseFunc(page)
	}
}

func validateID(id PageID) {
	if id > MaxPageID {
		panic(&ErrOutOfRange{ID: id, Max: MaxPageID})
	}
}

// splitID splits an identifier into its two radix indexes. Identifiers are
// range-checked before the split, so a failing conversion means corrupted
// state and panics with *ErrIndexConversion.
func splitID(id PageID) (int, int) {
	hi, err := conv.Uint64ToInt(uint64(id >> FanBits))
	if err != nil {
		panic(&ErrIndexConversion{Value: uint64(id >> FanBits), cause: err})
	}
	lo, err := conv.Uint64ToInt(uint64(id & FanMask))
	if err != nil {
		panic(&ErrIndexConversion{Value: uint64(id & FanMask), cause: err})
	}
	return hi, lo
}
