package pagetable

import (
	"sync/atomic"
	"time"
)

// View is a stable read of one page slot: the page observed, the version it
// carried, and the slot it came from. Views are produced by Get and stay
// valid only while the guard they were obtained under is held.
//
// The zero View is not usable.
type View[P Page[P]] struct {
	table   *Table[P]
	id      PageID
	slot    *atomic.Pointer[P]
	read    *P
	version uint64
}

// ID returns the page identifier the view reads.
func (v *View[P]) ID() PageID { return v.id }

// Page returns the page the view last observed. After a successful Update
// this is the page that update installed.
func (v *View[P]) Page() *P { return v.read }

// Version returns the version the view observed.
func (v *View[P]) Version() uint64 { return v.version }

// Update clones the current page, applies fn to the clone, and attempts to
// install the clone in the page's slot.
//
// The update is valid only against the version the view observed. When the
// installed page's version changed, Update returns *ErrConflict carrying the
// page seen at failure time, and the view is left unchanged. When the slot's
// pointer changed while the version did not - the page moved under the
// writer - Update retries against the freshly observed pointer instead of
// spinning on the stale one, so movement delays it but cannot wedge it.
//
// On success Update returns the installed page and the view advances to it,
// so consecutive updates through one view read their own writes. The
// displaced page is retired through g and released once its retirement
// epoch passes.
func (v *View[P]) Update(g Guard, fn func(page *P)) (*P, error) {
	start := time.Now()
	t := v.table

	var retries int
	for {
		cur := v.slot.Load()
		if (*cur).Version() != v.version {
			t.stats.conflicts.Add(1)
			err := &ErrConflict[P]{ID: v.id, Current: cur}
			t.metrics.RecordUpdate(time.Since(start), retries, err)
			t.logger.LogUpdate(v.id, retries, err)
			return nil, err
		}
		if retries > 0 {
			// Reaching here on a retry means the slot moved to a page of
			// the expected version; a version change would have conflicted.
			t.stats.relocations.Add(1)
		}

		next := (*cur).Clone()
		if fn != nil {
			fn(&next)
		}

		if v.slot.CompareAndSwap(cur, &next) {
			v.read = &next
			v.version = next.Version()

			old := cur
			t.stats.pagesRetired.Add(1)
			g.Retire(func() { t.release(old) })

			t.metrics.RecordUpdate(time.Since(start), retries, nil)
			t.logger.LogUpdate(v.id, retries, nil)
			return &next, nil
		}

		// Lost the slot; re-observe and go again.
		retries++
	}
}
