package pagetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPage is the page type shared across the table tests. value tracks the
// payload, version is the conflict token tests bump explicitly.
type testPage struct {
	value   uint64
	version uint64
}

func (p testPage) Clone() testPage { return p }
func (p testPage) Version() uint64 { return p.version }

func newTestTable(t *testing.T, optFns ...func(*Options[testPage])) *Table[testPage] {
	t.Helper()

	tbl, err := New[testPage](optFns...)
	require.NoError(t, err)

	t.Cleanup(func() { _ = tbl.Close() })

	return tbl
}

// recoverAs runs fn, requires that it panics, and returns the panic value as E.
func recoverAs[E error](t *testing.T, fn func()) E {
	t.Helper()

	var caught E
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r, "expected a panic")
			e, ok := r.(E)
			require.True(t, ok, "unexpected panic value of type %T: %v", r, r)
			caught = e
		}()
		fn()
	}()

	return caught
}

func TestTable(t *testing.T) {
	g := NoopGuard{}

	t.Run("GetAbsent", func(t *testing.T) {
		tbl := newTestTable(t)

		_, ok := tbl.Get(g, 0)
		assert.False(t, ok)

		_, ok = tbl.Get(g, 123)
		assert.False(t, ok)

		// Lookups materialize nothing.
		assert.Zero(t, tbl.Stats().NodesAllocated)
	})

	t.Run("InsertAndGet", func(t *testing.T) {
		tbl := newTestTable(t)

		tbl.Insert(g, 5, testPage{value: 42})

		v, ok := tbl.Get(g, 5)
		require.True(t, ok)
		assert.Equal(t, uint64(42), v.Page().value)
		assert.Equal(t, PageID(5), v.ID())
		assert.Zero(t, v.Version())

		stats := tbl.Stats()
		assert.Equal(t, uint64(1), stats.PagesInserted)
		assert.Equal(t, uint64(1), stats.NodesInstalled)
	})

	t.Run("Lifecycle", func(t *testing.T) {
		tbl := newTestTable(t)

		_, ok := tbl.Get(g, 0)
		require.False(t, ok)

		tbl.Insert(g, 0, testPage{value: 1})

		v, ok := tbl.Get(g, 0)
		require.True(t, ok)
		require.Equal(t, uint64(1), v.Page().value)

		caught := recoverAs[*ErrDuplicateInsert](t, func() {
			tbl.Insert(g, 0, testPage{value: 2})
		})
		assert.Equal(t, PageID(0), caught.ID)
	})

	t.Run("FirstInsertWins", func(t *testing.T) {
		tbl := newTestTable(t)

		tbl.Insert(g, 9, testPage{value: 1})

		recoverAs[*ErrDuplicateInsert](t, func() {
			tbl.Insert(g, 9, testPage{value: 2})
		})

		// The first page survives even when the duplicate panic is
		// recovered: the losing page is never installed, not even briefly.
		v, ok := tbl.Get(g, 9)
		require.True(t, ok)
		assert.Equal(t, uint64(1), v.Page().value)
		assert.Equal(t, uint64(1), tbl.Stats().PagesInserted)
	})

	t.Run("BranchIsolation", func(t *testing.T) {
		tbl := newTestTable(t)

		tbl.Insert(g, FanOut+3, testPage{value: 7})

		// Same second-level index under a different first-level branch.
		_, ok := tbl.Get(g, 3)
		assert.False(t, ok)

		v, ok := tbl.Get(g, FanOut+3)
		require.True(t, ok)
		assert.Equal(t, uint64(7), v.Page().value)

		assert.Equal(t, uint64(1), tbl.Stats().NodesInstalled)
	})

	t.Run("MaxBoundary", func(t *testing.T) {
		tbl := newTestTable(t)

		tbl.Insert(g, MaxPageID, testPage{value: 11})

		v, ok := tbl.Get(g, MaxPageID)
		require.True(t, ok)
		assert.Equal(t, uint64(11), v.Page().value)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		tbl := newTestTable(t)

		caught := recoverAs[*ErrOutOfRange](t, func() {
			tbl.Insert(g, MaxPageID+1, testPage{})
		})
		assert.Equal(t, MaxPageID+1, caught.ID)
		assert.Equal(t, MaxPageID, caught.Max)

		recoverAs[*ErrOutOfRange](t, func() {
			tbl.Get(g, MaxPageID+1)
		})

		// Validation precedes materialization; the rejected identifier
		// must not have grown the tree.
		assert.Zero(t, tbl.Stats().NodesAllocated)
	})

	t.Run("SharedChild", func(t *testing.T) {
		tbl := newTestTable(t)

		for id := PageID(0); id < 10; id++ {
			tbl.Insert(g, id, testPage{value: uint64(id)})
		}

		stats := tbl.Stats()
		assert.Equal(t, uint64(10), stats.PagesInserted)
		assert.Equal(t, uint64(1), stats.NodesInstalled)

		for id := PageID(0); id < 10; id++ {
			v, ok := tbl.Get(g, id)
			require.True(t, ok)
			assert.Equal(t, uint64(id), v.Page().value)
		}
	})
}

func TestTable_SplitID(t *testing.T) {
	tests := []struct {
		name string
		id   PageID
		hi   int
		lo   int
	}{
		{name: "zero", id: 0, hi: 0, lo: 0},
		{name: "within first child", id: 3, hi: 0, lo: 3},
		{name: "first of second child", id: FanOut, hi: 1, lo: 0},
		{name: "offset in second child", id: FanOut + 3, hi: 1, lo: 3},
		{name: "last of first child", id: FanMask, hi: 0, lo: FanMask},
		{name: "maximum", id: MaxPageID, hi: FanMask, lo: FanMask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hi, lo := splitID(tt.id)
			assert.Equal(t, tt.hi, hi)
			assert.Equal(t, tt.lo, lo)
		})
	}
}

func TestTable_MemoryLimit(t *testing.T) {
	node1Size, err := node1Bytes[testPage]()
	require.NoError(t, err)
	node2Size, err := node2Bytes[testPage]()
	require.NoError(t, err)

	t.Run("NewRejectsTinyLimit", func(t *testing.T) {
		_, err := New[testPage](func(o *Options[testPage]) {
			o.MemoryLimitBytes = 1
		})
		require.Error(t, err)

		var eml *ErrMemoryLimit
		require.ErrorAs(t, err, &eml)
		assert.Equal(t, node1Size, eml.Requested)
		assert.Equal(t, int64(1), eml.Limit)
	})

	t.Run("InsertHitsLimit", func(t *testing.T) {
		// Room for the root and exactly one second-level node.
		tbl := newTestTable(t, func(o *Options[testPage]) {
			o.MemoryLimitBytes = node1Size + node2Size
		})
		g := NoopGuard{}

		tbl.Insert(g, 1, testPage{})

		caught := recoverAs[*ErrMemoryLimit](t, func() {
			tbl.Insert(g, FanOut, testPage{})
		})
		assert.Equal(t, node2Size, caught.Requested)

		// The first branch is untouched by the failed growth.
		_, ok := tbl.Get(g, 1)
		assert.True(t, ok)
		assert.Equal(t, node1Size+node2Size, tbl.Stats().MemoryBytes)
	})

	t.Run("LostBudgetRaceAdoptsInstalledChild", func(t *testing.T) {
		tbl := newTestTable(t, func(o *Options[testPage]) {
			o.MemoryLimitBytes = node1Size + node2Size
		})
		g := NoopGuard{}

		// Exhausts the budget and installs the first child.
		tbl.Insert(g, 1, testPage{})

		// A contender that lost the budget's last bytes to that install
		// needs no allocation of its own: it must adopt the installed node,
		// not fail.
		child := tbl.growChild(0)
		require.Same(t, tbl.root.children[0].Load(), child)
		assert.Equal(t, uint64(1), tbl.Stats().NodesAllocated)

		// A child that is genuinely missing still reports exhaustion.
		recoverAs[*ErrMemoryLimit](t, func() { tbl.growChild(1) })
	})

	t.Run("CloseReturnsMemory", func(t *testing.T) {
		tbl := newTestTable(t)
		g := NoopGuard{}

		tbl.Insert(g, 0, testPage{})
		tbl.Insert(g, FanOut, testPage{})
		assert.Equal(t, node1Size+2*node2Size, tbl.Stats().MemoryBytes)

		require.NoError(t, tbl.Close())
		assert.Zero(t, tbl.Stats().MemoryBytes)
	})
}

func TestTable_GetDoesNotAllocate(t *testing.T) {
	tbl := newTestTable(t)
	var g Guard = NoopGuard{}

	tbl.Insert(g, 4096, testPage{value: 1})

	allocs := testing.AllocsPerRun(1000, func() {
		if _, ok := tbl.Get(g, 4096); !ok {
			t.Fatal("page missing")
		}
		if _, ok := tbl.Get(g, 4097); ok {
			t.Fatal("phantom page")
		}
	})
	assert.Zero(t, allocs)
}

func TestTable_NilClose(t *testing.T) {
	var tbl *Table[testPage]
	assert.NoError(t, tbl.Close())
}
