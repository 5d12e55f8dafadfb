// Package store implements the page-oriented storage core for record
// databases: a growable, page-granular byte space with bounds-checked
// access, plus the typed read/write layer every ledger and registry in this
// module is built on.
//
// # Layout
//
// The byte space is divided into fixed-size pages of PageSize bytes:
//
//	[page 0 - schema registry] [page 1 - ACL] [page 2] ... [page N]
//
// Pages 0 and 1 are reserved at initialization. Every further page is handed
// out by Manager.AllocatePage, one page per call, and stays bound to its
// owner forever: page numbers are monotonically increasing and never reused,
// only the bytes inside a page are reclaimed and rewritten across records.
//
// # Providers
//
// Provider abstracts the underlying byte space. MemProvider keeps everything
// in a resizable buffer and backs the tests; FileProvider persists to a
// single file, memory-mapped where the platform supports it. Both enforce
// identical bounds semantics, so behavior verified against MemProvider holds
// for FileProvider.
//
// # Concurrency
//
// The store is single-owner state. Manager performs no internal locking: the
// host is expected to run one logical request to completion before starting
// the next. A multi-threaded host must wrap each mutating sequence
// (allocate, write, persist) in its own mutual-exclusion boundary.
package store
