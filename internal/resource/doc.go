// Package resource implements memory accounting for table node storage.
//
// A radix node is a fixed block of fan-out many pointer-sized slots -
// megabytes per node at the table's fan-out - so embedders size node storage
// deliberately. The Controller makes that footprint observable and,
// optionally, enforceable.
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and an atomic
// counter for usage tracking. AcquireMemory is non-blocking and returns
// immediately with ErrMemoryLimitExceeded if the budget would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB budget
//	})
//
//	if err := rc.AcquireMemory(nodeBytes); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides what exhaustion means
//	}
//	defer rc.ReleaseMemory(nodeBytes)
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops. This
// allows optional accounting without nil checks everywhere.
package resource
