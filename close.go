package pagetable

import "time"

// Close releases every page still installed and returns the table's node
// storage to the memory accounting. The release callback (see Options) runs
// once for each remaining page.
//
// Teardown is occupancy-guided: each node is scanned only until the pages it
// counts are found, so a densely packed table stops at its population and a
// sparse one skips nothing it holds. Close must not run concurrently with
// other table operations or while guards still reference pages. It is
// idempotent and nil-safe. The returned error is always nil today; it is
// reserved for release callbacks that acquire failure modes of their own.
func (t *Table[P]) Close() error {
	if t == nil {
		return nil
	}
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	start := time.Now()

	var released uint64
	children := t.root.occupied.Load()
	for i := 0; i < FanOut && children > 0; i++ {
		child := t.root.children[i].Load()
		if child == nil {
			continue
		}
		children--

		pages := child.occupied.Load()
		for j := 0; j < FanOut && pages > 0; j++ {
			page := child.slots[j].Load()
			if page == nil {
				continue
			}
			pages--

			t.release(page)
			released++
		}

		t.resources.ReleaseMemory(t.node2Size)
	}
	t.resources.ReleaseMemory(t.node1Size)

	t.metrics.RecordClose(released, time.Since(start))
	t.logger.LogClose(released)

	return nil
}
