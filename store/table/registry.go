package table

import (
	"fmt"

	"github.com/pagekit-db/pagekit/store"
	"github.com/pagekit-db/pagekit/store/ledger"
	"github.com/pagekit-db/pagekit/store/schema"
)

// Location identifies where a stored record lives: its page, the offset of
// its frame within that page, and the framed size in bytes.
type Location struct {
	Page   store.Page
	Offset store.PageOffset
	Size   store.Size
}

// Registry is the per-table composition of the page ledger and the free
// segment ledger. It is not itself persisted: it is recomputed from the two
// root pointers recorded in the schema registry.
type Registry struct {
	mgr   *store.Manager
	pages *ledger.PageLedger
	free  *ledger.FreeSegmentsLedger
}

// Load builds the table registry from its two root pages.
func Load(mgr *store.Manager, roots schema.TableRegistryPage) (*Registry, error) {
	pages, err := ledger.LoadPageLedger(mgr, roots.PageLedgerPage)
	if err != nil {
		return nil, err
	}
	free, err := ledger.LoadFreeSegments(mgr, roots.FreeSegmentsPage)
	if err != nil {
		return nil, err
	}
	return &Registry{mgr: mgr, pages: pages, free: free}, nil
}

// PageLedger exposes the underlying page ledger, read-only use.
func (r *Registry) PageLedger() *ledger.PageLedger { return r.pages }

// FreeSegments exposes the underlying free segment ledger, read-only use.
func (r *Registry) FreeSegments() *ledger.FreeSegmentsLedger { return r.free }

// Insert stores rec and returns its location. A free segment large enough
// for the framed record is reused first; otherwise the record lands at the
// tail of the first page with room, allocating a fresh page when none has.
func (r *Registry) Insert(rec store.Record) (Location, error) {
	if int(rec.Size()) > MaxRecordSize {
		return Location{}, fmt.Errorf("table: record of %d bytes: %w", rec.Size(), store.ErrDataTooLarge)
	}
	fr := frame{body: rec}
	need := fr.Size()

	if seg, ok := r.free.FindFit(need); ok {
		if err := r.mgr.WriteAt(seg.Page, seg.Offset, fr); err != nil {
			return Location{}, err
		}
		if err := r.free.Remove(seg.Page, seg.Offset, seg.Size, need); err != nil {
			return Location{}, err
		}
		return Location{Page: seg.Page, Offset: seg.Offset, Size: need}, nil
	}

	page, err := r.pages.PageForRecord(fr)
	if err != nil {
		return Location{}, err
	}
	free, ok := r.pages.FreeSpace(page)
	if !ok {
		return Location{}, fmt.Errorf("table: page %d missing from ledger: %w", page, store.ErrCorrupted)
	}
	offset := store.PageOffset(store.PageSize - free)
	if err := r.mgr.WriteAt(page, offset, fr); err != nil {
		return Location{}, err
	}
	if err := r.pages.Commit(page, fr); err != nil {
		return Location{}, err
	}
	return Location{Page: page, Offset: offset, Size: need}, nil
}

// Get reads the record stored at loc into rec.
func (r *Registry) Get(loc Location, rec store.Record) error {
	return r.mgr.ReadAt(loc.Page, loc.Offset, frame{body: rec})
}

// Delete erases the record at loc and records its byte range as a free
// segment. The bytes are zeroed so sequential scans cannot resurrect the
// record.
func (r *Registry) Delete(loc Location) error {
	if err := r.mgr.Zero(loc.Page, loc.Offset, loc.Size); err != nil {
		return err
	}
	return r.free.Insert(loc.Page, loc.Offset, loc.Size)
}

// Update rewrites the record at loc with rec and returns the new location.
// A record that shrinks or keeps its size stays in place, with the trailing
// unused bytes freed as a new segment; a record that grows is relocated via
// delete-then-insert.
func (r *Registry) Update(loc Location, rec store.Record) (Location, error) {
	if int(rec.Size()) > MaxRecordSize {
		return Location{}, fmt.Errorf("table: record of %d bytes: %w", rec.Size(), store.ErrDataTooLarge)
	}
	fr := frame{body: rec}
	need := fr.Size()

	switch {
	case need == loc.Size:
		if err := r.mgr.WriteAt(loc.Page, loc.Offset, fr); err != nil {
			return Location{}, err
		}
		return loc, nil
	case need < loc.Size:
		if err := r.mgr.WriteAt(loc.Page, loc.Offset, fr); err != nil {
			return Location{}, err
		}
		tail := loc.Offset + store.PageOffset(need)
		if err := r.mgr.Zero(loc.Page, tail, loc.Size-need); err != nil {
			return Location{}, err
		}
		if err := r.free.Insert(loc.Page, tail, loc.Size-need); err != nil {
			return Location{}, err
		}
		return Location{Page: loc.Page, Offset: loc.Offset, Size: need}, nil
	default:
		if err := r.Delete(loc); err != nil {
			return Location{}, err
		}
		return r.Insert(rec)
	}
}
