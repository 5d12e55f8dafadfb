package store

import "errors"

var (
	// ErrOutOfBounds indicates a read or write past the allocated capacity.
	// Recoverable: grow the provider first.
	ErrOutOfBounds = errors.New("store: access out of bounds")

	// ErrGrowFailed indicates the provider refused to expand (quota, OOM).
	ErrGrowFailed = errors.New("store: failed to grow storage")

	// ErrPageOverflow indicates a write that would cross the end of its page.
	ErrPageOverflow = errors.New("store: write crosses page boundary")

	// ErrDataTooLarge indicates a record that cannot fit in a single page.
	ErrDataTooLarge = errors.New("store: record larger than a page")

	// ErrDecode indicates malformed or truncated bytes. Never ignored.
	ErrDecode = errors.New("store: decode failed")

	// ErrNotFound indicates a lookup for an entity that does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrCorrupted indicates an internal-consistency violation, such as
	// committing a record to a page the ledger has no entry for.
	ErrCorrupted = errors.New("store: bookkeeping state corrupted")
)
