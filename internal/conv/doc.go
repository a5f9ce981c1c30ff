// Package conv provides safe integer type conversion utilities.
//
// These functions perform bounds checking to prevent integer overflow when
// converting between unsigned and platform-dependent integer types.
//
// Use cases:
//   - Turning page identifiers into radix array indexes on 32-bit platforms
//   - Converting type sizes (uintptr) into signed memory accounting amounts
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
