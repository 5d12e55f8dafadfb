// Package schema persists the registry mapping each table's fingerprint to
// the two root pages its ledgers live at. The registry is the only global
// directory in the store: every other table structure is reached through the
// pointers recorded here.
package schema

import (
	"fmt"
	"slices"

	"github.com/pagekit-db/pagekit/internal/buf"
	"github.com/pagekit-db/pagekit/store"
)

// TableRegistryPage holds the two root pointers a table needs to locate its
// page ledger and free segment ledger.
type TableRegistryPage struct {
	PageLedgerPage   store.Page
	FreeSegmentsPage store.Page
}

// Registry is the schema-to-storage-location registry, loaded once at
// startup from the reserved schema page and rewritten in full on each
// registration.
type Registry struct {
	mgr    *store.Manager
	tables map[Fingerprint]TableRegistryPage
}

// Load reads the registry blob from the reserved schema page. A page that
// has never been written yields an empty registry.
func Load(mgr *store.Manager) (*Registry, error) {
	var blob registryBlob
	if err := mgr.ReadAt(store.SchemaPage, 0, &blob); err != nil {
		return nil, fmt.Errorf("schema: load registry: %w", err)
	}
	tables := blob.tables
	if tables == nil {
		tables = make(map[Fingerprint]TableRegistryPage)
	}
	return &Registry{mgr: mgr, tables: tables}, nil
}

// Register returns the root pages for the table identified by fp,
// allocating them on first registration. Registration is idempotent: the
// table-declaration mechanism invokes it on every startup and an already
// registered fingerprint returns its existing entry unchanged, without
// allocating further pages.
func (r *Registry) Register(fp Fingerprint) (TableRegistryPage, error) {
	if pages, ok := r.tables[fp]; ok {
		return pages, nil
	}
	ledgerPage, err := r.mgr.AllocatePage()
	if err != nil {
		return TableRegistryPage{}, fmt.Errorf("schema: allocate page ledger: %w", err)
	}
	segmentsPage, err := r.mgr.AllocatePage()
	if err != nil {
		return TableRegistryPage{}, fmt.Errorf("schema: allocate free segments ledger: %w", err)
	}
	entry := TableRegistryPage{
		PageLedgerPage:   ledgerPage,
		FreeSegmentsPage: segmentsPage,
	}
	r.tables[fp] = entry
	if err := r.write(); err != nil {
		// The registration must fail atomically. The two pages stay
		// allocated but unreferenced; pages are never handed out twice,
		// so a retry allocates fresh ones.
		delete(r.tables, fp)
		return TableRegistryPage{}, err
	}
	return entry, nil
}

// Lookup returns the root pages for fp, if registered.
func (r *Registry) Lookup(fp Fingerprint) (TableRegistryPage, bool) {
	pages, ok := r.tables[fp]
	return pages, ok
}

// Tables returns a copy of the registered fingerprints and their root pages.
func (r *Registry) Tables() map[Fingerprint]TableRegistryPage {
	out := make(map[Fingerprint]TableRegistryPage, len(r.tables))
	for fp, pages := range r.tables {
		out[fp] = pages
	}
	return out
}

func (r *Registry) write() error {
	blob := registryBlob{tables: r.tables}
	if err := r.mgr.WriteAt(store.SchemaPage, 0, &blob); err != nil {
		return fmt.Errorf("schema: persist registry: %w", err)
	}
	return nil
}

const registryEntrySize = 16 // fingerprint u64 + two u32 pages

// registryBlob is the persisted form of the registry: a u64 entry count
// followed by fixed-size entries, little-endian. Entries are encoded in
// fingerprint order so the blob is deterministic.
type registryBlob struct {
	tables map[Fingerprint]TableRegistryPage
}

var _ store.Record = (*registryBlob)(nil)

func (registryBlob) DataSize() store.DataSize { return store.Variable }

func (b registryBlob) Size() store.Size {
	return store.Size(8 + len(b.tables)*registryEntrySize)
}

func (b registryBlob) Encode() []byte {
	fps := make([]Fingerprint, 0, len(b.tables))
	for fp := range b.tables {
		fps = append(fps, fp)
	}
	slices.Sort(fps)

	out := make([]byte, 0, b.Size())
	out = buf.AppendU64LE(out, uint64(len(fps)))
	for _, fp := range fps {
		pages := b.tables[fp]
		out = buf.AppendU64LE(out, uint64(fp))
		out = buf.AppendU32LE(out, uint32(pages.PageLedgerPage))
		out = buf.AppendU32LE(out, uint32(pages.FreeSegmentsPage))
	}
	return out
}

func (b *registryBlob) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("schema: truncated registry header: %w", store.ErrDecode)
	}
	count := buf.U64LE(data)
	tables := make(map[Fingerprint]TableRegistryPage, count)
	off := 8
	for i := uint64(0); i < count; i++ {
		entry, ok := buf.Slice(data, off, registryEntrySize)
		if !ok {
			return fmt.Errorf("schema: truncated registry entry %d: %w", i, store.ErrDecode)
		}
		fp := Fingerprint(buf.U64LE(entry))
		tables[fp] = TableRegistryPage{
			PageLedgerPage:   store.Page(buf.U32LE(entry[8:])),
			FreeSegmentsPage: store.Page(buf.U32LE(entry[12:])),
		}
		off += registryEntrySize
	}
	b.tables = tables
	return nil
}
