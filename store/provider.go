package store

// PageSize is the size of one page in bytes, agreed with the host.
const PageSize = 65536

// Page identifies a fixed-size block of the byte space. Page numbers are
// monotonically increasing and never reused.
type Page uint32

// PageOffset is a byte offset within a page, 0 <= offset < PageSize.
type PageOffset uint16

// Size is a byte count for encoded records and free segments. Its u16 width
// caps every declared encoding, the ledger and registry blobs included,
// below one page; writers bound the actual byte count with len(Encode()).
type Size uint16

// Provider abstracts a growable, page-granular byte space with
// bounds-checked access. There is no implicit growth on write: callers must
// Grow before touching bytes past the current capacity.
type Provider interface {
	// Size returns the current capacity in bytes.
	Size() uint64
	// Pages returns the current page count.
	Pages() uint64
	// Grow reserves n more pages and returns the previous capacity in
	// bytes. Fails with ErrGrowFailed when the space cannot expand.
	Grow(n uint64) (uint64, error)
	// Read fills buf from the bytes at off. Fails with ErrOutOfBounds
	// when off+len(buf) exceeds the current capacity.
	Read(off uint64, buf []byte) error
	// Write stores data at off, with the same bounds check as Read.
	Write(off uint64, data []byte) error
}
