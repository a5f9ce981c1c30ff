package pagetable

import (
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/pagetable/internal/conv"
)

// node2 is a second-level radix node: a contiguous fan-out array of page
// slots. The zero value is ready to use; empty slots are nil.
type node2[P Page[P]] struct {
	slots [FanOut]atomic.Pointer[P]

	// occupied counts installed pages, so teardown can stop scanning once
	// every page in the node has been released.
	occupied atomic.Int64
}

// node1 is the first-level radix node. Its children are created lazily on
// the first insert into their identifier range and never removed.
type node1[P Page[P]] struct {
	children [FanOut]atomic.Pointer[node2[P]]
	occupied atomic.Int64
}

func node1Bytes[P Page[P]]() (int64, error) {
	var child atomic.Pointer[node2[P]]
	return nodeBytes(unsafe.Sizeof(child))
}

func node2Bytes[P Page[P]]() (int64, error) {
	var slot atomic.Pointer[P]
	return nodeBytes(unsafe.Sizeof(slot))
}

func nodeBytes(slotSize uintptr) (int64, error) {
	var count atomic.Int64

	slotBytes, err := conv.UintptrToInt64(slotSize)
	if err != nil {
		return 0, err
	}
	countBytes, err := conv.UintptrToInt64(unsafe.Sizeof(count))
	if err != nil {
		return 0, err
	}

	return slotBytes*FanOut + countBytes, nil
}
