// Package pagetable provides a lock-free, two-level page table for
// concurrent page management in storage engines.
//
// A Table maps dense uint64 page identifiers to pages through two radix
// levels, addressing identifiers up to MaxPageID. Lookups are pointer chases
// that allocate nothing. Inserts materialize the covering second-level node
// on first touch. Updates follow a clone-transform-install discipline with
// version-based conflict detection. The only write coordination anywhere is
// the compare-and-swap on the slot or child being changed.
//
// # Quick Start
//
// Pages implement Clone and Version:
//
//	type counter struct {
//		hits    uint64
//		version uint64
//	}
//
//	func (c counter) Clone() counter  { return c }
//	func (c counter) Version() uint64 { return c.version }
//
// Operations run under a guard:
//
//	tbl, err := pagetable.New[counter]()
//	if err != nil {
//		return err
//	}
//	defer tbl.Close()
//
//	collector := epoch.NewCollector()
//
//	g := collector.Acquire()
//	defer g.Release()
//
//	tbl.Insert(g, 7, counter{})
//
//	if v, ok := tbl.Get(g, 7); ok {
//		if _, err := v.Update(g, func(c *counter) { c.hits++ }); err != nil {
//			// another writer changed the page's version; re-read and retry
//		}
//	}
//
// # Guards and Reclamation
//
// A page displaced by an update may still be referenced by concurrent
// readers, so the table never destroys it inline. Instead it retires the
// page through the operation's Guard, and the guard's collector runs the
// release callback once every reader that could have seen the page is gone.
// The epoch package provides that collector. Single-goroutine embedders can
// pass NoopGuard, which releases displaced pages immediately.
//
// Engines that shut a table down drain their collector first, so displaced
// pages are released before Close releases what remains installed.
//
// # Ownership
//
// A page enters the table on Insert and leaves it only by being displaced
// through View.Update or by Close tearing the table down. ReleaseFunc (see
// Options) observes every page the table lets go of, which is what engines
// that pool page buffers or count pages hook into. The table accounts the
// memory of its own node storage, optionally against a limit; pages belong
// to the caller and are never accounted.
//
// # Fatal Misuse
//
// Contract violations do not surface as errors. An identifier above
// MaxPageID, an insert into an occupied slot, or a radix index that fails
// platform conversion each panic with a typed value (*ErrOutOfRange,
// *ErrDuplicateInsert, *ErrIndexConversion), because the calling engine is
// defective and continuing would corrupt pages. The one expected runtime
// failure, losing an update race to a version change, is returned as
// *ErrConflict.
package pagetable
