package pagetable

import (
	"fmt"
)

// ErrOutOfRange indicates a page identifier above MaxPageID.
//
// It is raised as a panic value: an out-of-range identifier is a defect in
// the calling engine, not a runtime condition it can react to.
type ErrOutOfRange struct {
	ID  PageID
	Max PageID
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("page id out of range: %d exceeds maximum %d", e.ID, e.Max)
}

// ErrDuplicateInsert indicates an insert for an identifier that already
// holds a page.
//
// It is raised as a panic value. The first page stays installed; a duplicate
// insert never replaces it, not even transiently.
type ErrDuplicateInsert struct {
	ID PageID
}

func (e *ErrDuplicateInsert) Error() string {
	return fmt.Sprintf("duplicate insert: page id %d already holds a page", e.ID)
}

// ErrIndexConversion indicates that a radix index derived from a page
// identifier did not fit the platform int.
//
// It is raised as a panic value: identifiers are range-checked first, so a
// failing conversion means corrupted state. The original underlying error
// (if any) can be accessed via errors.Unwrap.
type ErrIndexConversion struct {
	Value uint64
	cause error
}

func (e *ErrIndexConversion) Error() string {
	return fmt.Sprintf("index conversion failed for value %d", e.Value)
}

func (e *ErrIndexConversion) Unwrap() error { return e.cause }

// ErrMemoryLimit indicates that allocating node storage would exceed the
// configured memory limit.
//
// New returns it as an error. On the insert path it is raised as a panic
// value, since inserts report no non-fatal failures. The original underlying
// error (if any) can be accessed via errors.Unwrap.
type ErrMemoryLimit struct {
	Requested int64
	Limit     int64
	cause     error
}

func (e *ErrMemoryLimit) Error() string {
	return fmt.Sprintf("memory limit exceeded: requested %d bytes with limit %d", e.Requested, e.Limit)
}

func (e *ErrMemoryLimit) Unwrap() error { return e.cause }

// ErrConflict indicates that a page changed version between the read that
// produced a View and the attempt to update through it.
//
// Current is the page observed at failure time, so callers can re-read and
// retry at their own level.
type ErrConflict[P Page[P]] struct {
	ID      PageID
	Current *P
}

func (e *ErrConflict[P]) Error() string {
	return fmt.Sprintf("conflicting update: page id %d changed version", e.ID)
}
