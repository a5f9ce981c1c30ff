package pagetable

// Guard witnesses one goroutine's access to table pages. Every operation
// takes one; views obtained under a guard must not be used after the guard
// is released.
//
// Retire defers a destructor until no guard that could still observe the
// retired page remains active. The epoch package provides a production
// implementation; any type with the same Retire method satisfies the
// interface.
type Guard interface {
	Retire(drop func())
}

// NoopGuard is a Guard for single-goroutine use. Retirements run
// immediately, so displaced pages are destroyed while a concurrent reader
// could still hold them - safe only when there are no concurrent readers.
type NoopGuard struct{}

// Retire implements Guard.
func (NoopGuard) Retire(drop func()) {
	if drop == nil {
		return
	}
	drop()
}
