package ledger

import (
	"fmt"
	"slices"

	"github.com/pagekit-db/pagekit/internal/buf"
	"github.com/pagekit-db/pagekit/store"
)

// FreeSegment is a reclaimable byte range within one of a table's pages,
// left behind by a deleted or relocated record. Segments never overlap live
// records or each other.
type FreeSegment struct {
	Page   store.Page
	Offset store.PageOffset
	Size   store.Size
}

// FreeSegmentsLedger tracks a table's reclaimed space and offers it for
// reuse before the page ledger is consulted. Adjacent segments are not
// merged.
type FreeSegmentsLedger struct {
	mgr      *store.Manager
	page     store.Page
	segments []FreeSegment
}

// LoadFreeSegments reads the ledger blob stored at page.
func LoadFreeSegments(mgr *store.Manager, page store.Page) (*FreeSegmentsLedger, error) {
	var tbl segmentTable
	if err := mgr.ReadAt(page, 0, &tbl); err != nil {
		return nil, fmt.Errorf("ledger: load free segments: %w", err)
	}
	return &FreeSegmentsLedger{mgr: mgr, page: page, segments: tbl.segments}, nil
}

// Segments returns a copy of the tracked segments.
func (l *FreeSegmentsLedger) Segments() []FreeSegment {
	return slices.Clone(l.segments)
}

// Insert records a reclaimed byte range and persists the ledger.
func (l *FreeSegmentsLedger) Insert(page store.Page, offset store.PageOffset, size store.Size) error {
	l.segments = append(l.segments, FreeSegment{Page: page, Offset: offset, Size: size})
	if err := l.write(); err != nil {
		l.segments = l.segments[:len(l.segments)-1]
		return err
	}
	return nil
}

// Find returns the first segment satisfying the predicate, in insertion
// order.
func (l *FreeSegmentsLedger) Find(pred func(FreeSegment) bool) (FreeSegment, bool) {
	for _, s := range l.segments {
		if pred(s) {
			return s, true
		}
	}
	return FreeSegment{}, false
}

// FindFit returns the first segment large enough to hold need bytes.
func (l *FreeSegmentsLedger) FindFit(need store.Size) (FreeSegment, bool) {
	return l.Find(func(s FreeSegment) bool { return s.Size >= need })
}

// Remove takes the segment matching the exact (page, offset, size) triple
// out of the ledger, marking used bytes of it as occupied. When used < size
// the unused remainder is re-inserted as a new segment at offset+used, so
// partial reuse never loses the leftover bytes. Removing a triple that is
// not present is a no-op: the exact-match key already guards against acting
// twice on the same segment, so stale double-free attempts are absorbed.
func (l *FreeSegmentsLedger) Remove(page store.Page, offset store.PageOffset, size, used store.Size) error {
	i := slices.IndexFunc(l.segments, func(s FreeSegment) bool {
		return s.Page == page && s.Offset == offset && s.Size == size
	})
	if i < 0 {
		return nil
	}
	prev := slices.Clone(l.segments)
	l.segments = slices.Delete(l.segments, i, i+1)
	if used < size {
		l.segments = append(l.segments, FreeSegment{
			Page:   page,
			Offset: offset + store.PageOffset(used),
			Size:   size - used,
		})
	}
	if err := l.write(); err != nil {
		l.segments = prev
		return err
	}
	return nil
}

func (l *FreeSegmentsLedger) write() error {
	if err := l.mgr.WriteAt(l.page, 0, &segmentTable{segments: l.segments}); err != nil {
		return fmt.Errorf("ledger: persist free segments: %w", err)
	}
	return nil
}

const segmentSize = 8 // page u32 + offset u16 + size u16

// segmentTable is the persisted form of the free segment ledger: a u32
// count followed by fixed-size segments, little-endian.
type segmentTable struct {
	segments []FreeSegment
}

var _ store.Record = (*segmentTable)(nil)

func (segmentTable) DataSize() store.DataSize { return store.Variable }

func (t segmentTable) Size() store.Size {
	return store.Size(4 + len(t.segments)*segmentSize)
}

func (t segmentTable) Encode() []byte {
	out := make([]byte, 0, t.Size())
	out = buf.AppendU32LE(out, uint32(len(t.segments)))
	for _, s := range t.segments {
		out = buf.AppendU32LE(out, uint32(s.Page))
		out = buf.AppendU16LE(out, uint16(s.Offset))
		out = buf.AppendU16LE(out, uint16(s.Size))
	}
	return out
}

func (t *segmentTable) Decode(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("ledger: truncated segment table header: %w", store.ErrDecode)
	}
	count := int(buf.U32LE(data))
	segments := make([]FreeSegment, 0, min(count, len(data)/segmentSize))
	off := 4
	for i := 0; i < count; i++ {
		raw, ok := buf.Slice(data, off, segmentSize)
		if !ok {
			return fmt.Errorf("ledger: truncated segment %d: %w", i, store.ErrDecode)
		}
		segments = append(segments, FreeSegment{
			Page:   store.Page(buf.U32LE(raw)),
			Offset: store.PageOffset(buf.U16LE(raw[4:])),
			Size:   store.Size(buf.U16LE(raw[6:])),
		})
		off += segmentSize
	}
	t.segments = segments
	return nil
}
