package table

import (
	"bytes"
	"fmt"

	"github.com/pagekit-db/pagekit/internal/buf"
	"github.com/pagekit-db/pagekit/store"
	"github.com/pagekit-db/pagekit/store/ledger"
)

// NextRecord is one live record yielded by a Reader, together with where it
// is stored.
type NextRecord struct {
	Record   store.Record
	Location Location
}

// Reader iterates a table's live records in page order. It scans each
// page's used region for the record frame magic; deleted ranges are zeroed,
// so gaps are skipped without bookkeeping. The ledger snapshot is taken
// when the reader is created — callers that mutate the table mid-scan must
// create a new reader afterwards.
type Reader struct {
	mgr       *store.Manager
	entries   []ledger.PageEntry
	newRecord func() store.Record

	idx    int    // next entry to load
	cur    ledger.PageEntry
	page   []byte // used region of the current page
	off    int    // scan position within page
	loaded bool
}

// NewReader returns a reader over the registry's records. newRecord
// allocates the destination value each decoded record is read into.
func (r *Registry) NewReader(newRecord func() store.Record) *Reader {
	return &Reader{
		mgr:       r.mgr,
		entries:   r.pages.Entries(),
		newRecord: newRecord,
	}
}

// Next returns the next live record, or nil when the table is exhausted.
func (rd *Reader) Next() (*NextRecord, error) {
	for {
		if !rd.loaded {
			if rd.idx >= len(rd.entries) {
				return nil, nil
			}
			if err := rd.loadPage(rd.entries[rd.idx]); err != nil {
				return nil, err
			}
			rd.idx++
		}

		rel := bytes.IndexByte(rd.page[rd.off:], frameMagic)
		if rel < 0 {
			rd.loaded = false
			continue
		}
		start := rd.off + rel
		if !buf.Has(rd.page, start, frameHeaderSize) {
			return nil, fmt.Errorf("table: page %d: record header at %d runs past the used region: %w",
				rd.cur.Page, start, store.ErrDecode)
		}
		n := int(buf.U16LE(rd.page[start+1:]))
		if !buf.Has(rd.page, start+frameHeaderSize, n) {
			return nil, fmt.Errorf("table: page %d: record at %d declares %d bytes past the used region: %w",
				rd.cur.Page, start, n, store.ErrDecode)
		}

		rec := rd.newRecord()
		if err := (frame{body: rec}).Decode(rd.page[start:]); err != nil {
			return nil, err
		}
		rd.off = start + frameHeaderSize + n
		return &NextRecord{
			Record: rec,
			Location: Location{
				Page:   rd.cur.Page,
				Offset: store.PageOffset(start),
				Size:   store.Size(frameHeaderSize + n),
			},
		}, nil
	}
}

func (rd *Reader) loadPage(e ledger.PageEntry) error {
	used := store.PageSize - int(e.Free)
	region := make([]byte, used)
	if used > 0 {
		if _, err := rd.mgr.ReadRaw(e.Page, 0, region); err != nil {
			return err
		}
	}
	rd.cur = e
	rd.page = region
	rd.off = 0
	rd.loaded = true
	return nil
}
