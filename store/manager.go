package store

import "fmt"

const (
	// SchemaPage is the reserved page holding the schema registry blob.
	SchemaPage Page = 0
	// ACLPage is the reserved page holding the access control list blob.
	ACLPage Page = 1

	reservedPages = 2
)

// Manager owns a Provider and the global page layout: the two reserved
// header pages and all further page allocation. It exposes typed read/write
// at (page, offset) locations for any Record implementation.
//
// Manager is not safe for concurrent use; see the package documentation.
type Manager struct {
	provider Provider
}

// NewManager wraps the provider and reserves the header pages. It is
// idempotent: re-initializing an already-initialized space recovers the
// existing layout instead of allocating again.
func NewManager(p Provider) (*Manager, error) {
	m := &Manager{provider: p}
	if p.Pages() >= reservedPages {
		return m, nil
	}
	if _, err := p.Grow(reservedPages - p.Pages()); err != nil {
		return nil, fmt.Errorf("store: reserving header pages: %w", err)
	}
	return m, nil
}

// Provider returns the underlying byte storage provider.
func (m *Manager) Provider() Provider { return m.provider }

// Pages returns the number of currently allocated pages.
func (m *Manager) Pages() uint64 { return m.provider.Pages() }

// AllocatePage grows the provider by exactly one page and returns the new
// page number. Page numbers increase monotonically and are never reused.
func (m *Manager) AllocatePage() (Page, error) {
	if _, err := m.provider.Grow(1); err != nil {
		return 0, fmt.Errorf("store: allocate page: %w", err)
	}
	page := Page(m.provider.Pages() - 1)
	// A fresh page must read back as zeroes: ledger blobs decode a zeroed
	// page as empty, and the record scanner treats zero bytes as gaps. The
	// built-in providers already hand out zeroed pages, an embedding
	// provider may not.
	if err := m.provider.Write(absOffset(page, 0), make([]byte, PageSize)); err != nil {
		return 0, err
	}
	return page, nil
}

// ReadAt reads a Record at the given location. A fixed-size type reads
// exactly its declared length; a variable-size type reads from offset to the
// end of the page and relies on its self-describing encoding, since the
// provider has no length-prefix convention at this layer.
func (m *Manager) ReadAt(page Page, offset PageOffset, rec Record) error {
	var n int
	if ds := rec.DataSize(); ds.IsFixed() {
		n = int(ds.FixedSize())
	} else {
		n = PageSize - int(offset)
	}
	buf := make([]byte, n)
	if _, err := m.ReadRaw(page, offset, buf); err != nil {
		return err
	}
	return rec.Decode(buf)
}

// ReadRaw fills buf from the bytes at (page, offset), clamped to the end of
// the page. Returns the number of bytes read.
func (m *Manager) ReadRaw(page Page, offset PageOffset, buf []byte) (int, error) {
	if err := m.checkPage(page); err != nil {
		return 0, err
	}
	n := len(buf)
	if max := PageSize - int(offset); n > max {
		n = max
	}
	if err := m.provider.Read(absOffset(page, offset), buf[:n]); err != nil {
		return 0, err
	}
	return n, nil
}

// WriteAt encodes rec and writes it at the given location. The page must be
// allocated and the encoded bytes must not cross the page end.
func (m *Manager) WriteAt(page Page, offset PageOffset, rec Record) error {
	if err := m.checkPage(page); err != nil {
		return err
	}
	encoded := rec.Encode()
	if int(offset)+len(encoded) > PageSize {
		return fmt.Errorf("store: write of %d bytes at page %d offset %d: %w",
			len(encoded), page, offset, ErrPageOverflow)
	}
	return m.provider.Write(absOffset(page, offset), encoded)
}

// Zero overwrites n bytes at the given location with zeroes, with the same
// bounds rules as WriteAt.
func (m *Manager) Zero(page Page, offset PageOffset, n Size) error {
	if err := m.checkPage(page); err != nil {
		return err
	}
	if int(offset)+int(n) > PageSize {
		return fmt.Errorf("store: zero of %d bytes at page %d offset %d: %w",
			n, page, offset, ErrPageOverflow)
	}
	return m.provider.Write(absOffset(page, offset), make([]byte, n))
}

func (m *Manager) checkPage(page Page) error {
	if uint64(page) >= m.provider.Pages() {
		return fmt.Errorf("store: page %d not allocated: %w", page, ErrOutOfBounds)
	}
	return nil
}

func absOffset(page Page, offset PageOffset) uint64 {
	return uint64(page)*PageSize + uint64(offset)
}
