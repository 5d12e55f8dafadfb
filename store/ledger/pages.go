// Package ledger implements the per-table bookkeeping structures: the page
// ledger, tracking each owned page's remaining free space, and the free
// segment ledger, tracking byte ranges reclaimed from deleted records. Each
// ledger persists as one blob at its root page and rewrites the whole blob
// on every mutation, so a mutation is either fully applied or not at all.
package ledger

import (
	"fmt"

	"github.com/pagekit-db/pagekit/internal/buf"
	"github.com/pagekit-db/pagekit/store"
)

// PageEntry tracks the remaining bytes available for new record writes in
// one page owned by a table.
type PageEntry struct {
	Page store.Page
	Free uint64
}

// PageLedger tracks the pages owned by one table, in allocation order, and
// decides where a new record lands. Allocation is first-fit by page order:
// simple and O(pages) per allocation, on the expectation that a table's page
// count stays small relative to record throughput.
type PageLedger struct {
	mgr     *store.Manager
	page    store.Page
	entries []PageEntry
}

// LoadPageLedger reads the ledger blob stored at page.
func LoadPageLedger(mgr *store.Manager, page store.Page) (*PageLedger, error) {
	var tbl pageTable
	if err := mgr.ReadAt(page, 0, &tbl); err != nil {
		return nil, fmt.Errorf("ledger: load page ledger: %w", err)
	}
	return &PageLedger{mgr: mgr, page: page, entries: tbl.entries}, nil
}

// Entries returns a copy of the ledger entries in allocation order.
func (l *PageLedger) Entries() []PageEntry {
	out := make([]PageEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// FreeSpace returns the free bytes currently recorded for page.
func (l *PageLedger) FreeSpace(page store.Page) (uint64, bool) {
	for _, e := range l.entries {
		if e.Page == page {
			return e.Free, true
		}
	}
	return 0, false
}

// PageForRecord returns the first page with enough free space for rec. When
// no owned page fits, it allocates a fresh page and appends an entry with
// the full page free; the new entry lives only in memory until Commit
// persists it.
func (l *PageLedger) PageForRecord(rec store.Record) (store.Page, error) {
	need := uint64(rec.Size())
	if need > store.PageSize {
		return 0, fmt.Errorf("ledger: record of %d bytes: %w", need, store.ErrDataTooLarge)
	}
	for _, e := range l.entries {
		if e.Free >= need {
			return e.Page, nil
		}
	}
	page, err := l.mgr.AllocatePage()
	if err != nil {
		return 0, err
	}
	l.entries = append(l.entries, PageEntry{Page: page, Free: store.PageSize})
	return page, nil
}

// Commit records that rec's bytes now occupy part of page: it subtracts the
// record size from the page's free space and persists the ledger.
// Committing more bytes than the page has free, or committing to a page the
// ledger has no entry for, is an internal-consistency violation.
func (l *PageLedger) Commit(page store.Page, rec store.Record) error {
	for i := range l.entries {
		if l.entries[i].Page != page {
			continue
		}
		need := uint64(rec.Size())
		if l.entries[i].Free < need {
			return fmt.Errorf("ledger: page %d has %d bytes free, committing %d: %w",
				page, l.entries[i].Free, need, store.ErrCorrupted)
		}
		prev := l.entries[i].Free
		l.entries[i].Free -= need
		if err := l.write(); err != nil {
			l.entries[i].Free = prev
			return err
		}
		return nil
	}
	return fmt.Errorf("ledger: commit to page %d with no ledger entry: %w", page, store.ErrCorrupted)
}

func (l *PageLedger) write() error {
	if err := l.mgr.WriteAt(l.page, 0, &pageTable{entries: l.entries}); err != nil {
		return fmt.Errorf("ledger: persist page ledger: %w", err)
	}
	return nil
}

const pageEntrySize = 12 // page u32 + free u64

// pageTable is the persisted form of the page ledger: a u32 entry count
// followed by fixed-size entries, little-endian.
type pageTable struct {
	entries []PageEntry
}

var _ store.Record = (*pageTable)(nil)

func (pageTable) DataSize() store.DataSize { return store.Variable }

func (t pageTable) Size() store.Size {
	return store.Size(4 + len(t.entries)*pageEntrySize)
}

func (t pageTable) Encode() []byte {
	out := make([]byte, 0, t.Size())
	out = buf.AppendU32LE(out, uint32(len(t.entries)))
	for _, e := range t.entries {
		out = buf.AppendU32LE(out, uint32(e.Page))
		out = buf.AppendU64LE(out, e.Free)
	}
	return out
}

func (t *pageTable) Decode(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("ledger: truncated page table header: %w", store.ErrDecode)
	}
	count := int(buf.U32LE(data))
	entries := make([]PageEntry, 0, min(count, len(data)/pageEntrySize))
	off := 4
	for i := 0; i < count; i++ {
		raw, ok := buf.Slice(data, off, pageEntrySize)
		if !ok {
			return fmt.Errorf("ledger: truncated page table entry %d: %w", i, store.ErrDecode)
		}
		entries = append(entries, PageEntry{
			Page: store.Page(buf.U32LE(raw)),
			Free: buf.U64LE(raw[4:]),
		})
		off += pageEntrySize
	}
	t.entries = entries
	return nil
}
