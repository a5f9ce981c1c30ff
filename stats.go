package pagetable

import "sync/atomic"

// Stats is a point-in-time snapshot of table counters.
type Stats struct {
	// NodesAllocated counts second-level nodes ever allocated, including
	// speculative ones discarded after losing an install race.
	NodesAllocated uint64
	// NodesInstalled counts second-level nodes that won their install race.
	NodesInstalled uint64
	// NodesDiscarded counts speculative second-level nodes that lost.
	NodesDiscarded uint64

	// PagesInserted counts pages installed into empty slots.
	PagesInserted uint64
	// PagesRetired counts pages displaced by updates and handed to a guard.
	PagesRetired uint64
	// PagesReleased counts pages whose release callback ran, whether from a
	// passed retirement epoch or from Close.
	PagesReleased uint64

	// Relocations counts update retries against a same-version page that
	// moved under the writer.
	Relocations uint64
	// Conflicts counts updates that failed on a changed version.
	Conflicts uint64

	// MemoryBytes is the node storage currently accounted against the
	// memory limit.
	MemoryBytes int64
}

type tableStats struct {
	nodesAllocated atomic.Uint64
	nodesInstalled atomic.Uint64
	nodesDiscarded atomic.Uint64
	pagesInserted  atomic.Uint64
	pagesRetired   atomic.Uint64
	pagesReleased  atomic.Uint64
	relocations    atomic.Uint64
	conflicts      atomic.Uint64
}

// Stats returns a snapshot of the table counters.
func (t *Table[P]) Stats() Stats {
	return Stats{
		NodesAllocated: t.stats.nodesAllocated.Load(),
		NodesInstalled: t.stats.nodesInstalled.Load(),
		NodesDiscarded: t.stats.nodesDiscarded.Load(),
		PagesInserted:  t.stats.pagesInserted.Load(),
		PagesRetired:   t.stats.pagesRetired.Load(),
		PagesReleased:  t.stats.pagesReleased.Load(),
		Relocations:    t.stats.relocations.Load(),
		Conflicts:      t.stats.conflicts.Load(),
		MemoryBytes:    t.resources.MemoryUsage(),
	}
}
