// Package verify provides validation checks for store invariants. The
// helpers are used in tests and by the pagectl verify command to confirm
// that the on-page structures of a store are mutually consistent.
package verify

import (
	"fmt"

	"github.com/pagekit-db/pagekit/store"
	"github.com/pagekit-db/pagekit/store/ledger"
	"github.com/pagekit-db/pagekit/store/schema"
)

// ValidationError describes one failed invariant check.
type ValidationError struct {
	Type    string
	Message string
	Page    int // page number the failure refers to, -1 if N/A
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("%s at page %d: %s", e.Type, e.Page, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates the whole store in one call. Returns the first
// error encountered, or nil if all checks pass.
func AllInvariants(mgr *store.Manager) error {
	if err := Layout(mgr); err != nil {
		return err
	}
	if err := Registry(mgr); err != nil {
		return err
	}
	return TableLedgers(mgr)
}

// Layout checks the byte space itself: the capacity must be page-aligned and
// the two reserved header pages must exist.
func Layout(mgr *store.Manager) error {
	size := mgr.Provider().Size()
	if size%store.PageSize != 0 {
		return &ValidationError{
			Type:    "Layout",
			Message: fmt.Sprintf("capacity %d is not a multiple of the page size", size),
			Page:    -1,
		}
	}
	if mgr.Pages() < 2 {
		return &ValidationError{
			Type:    "Layout",
			Message: fmt.Sprintf("%d pages allocated, header pages missing", mgr.Pages()),
			Page:    -1,
		}
	}
	return nil
}

// Registry checks that the schema registry decodes and that every root
// pointer refers to a distinct allocated page outside the reserved range.
func Registry(mgr *store.Manager) error {
	reg, err := schema.Load(mgr)
	if err != nil {
		return &ValidationError{Type: "Registry", Message: err.Error(), Page: int(store.SchemaPage)}
	}
	owners := map[store.Page]string{}
	for fp, roots := range reg.Tables() {
		table := fmt.Sprintf("%016x", uint64(fp))
		for _, root := range []store.Page{roots.PageLedgerPage, roots.FreeSegmentsPage} {
			if err := checkPageRef(mgr, "Registry", root); err != nil {
				return err
			}
			if owner, taken := owners[root]; taken {
				return &ValidationError{
					Type:    "Registry",
					Message: "root page referenced twice",
					Page:    int(root),
					Details: map[string]interface{}{"first": owner, "second": table},
				}
			}
			owners[root] = table
		}
	}
	return nil
}

// TableLedgers checks every registered table's two ledgers: pages are owned
// by exactly one table, free space fits a page, and free segments lie inside
// the used region of a page their table owns, without overlapping.
func TableLedgers(mgr *store.Manager) error {
	reg, err := schema.Load(mgr)
	if err != nil {
		return &ValidationError{Type: "Registry", Message: err.Error(), Page: int(store.SchemaPage)}
	}
	owners := map[store.Page]string{}
	for fp, roots := range reg.Tables() {
		table := fmt.Sprintf("%016x", uint64(fp))

		pages, err := ledger.LoadPageLedger(mgr, roots.PageLedgerPage)
		if err != nil {
			return &ValidationError{Type: "PageLedger", Message: err.Error(), Page: int(roots.PageLedgerPage)}
		}
		for _, e := range pages.Entries() {
			if err := checkPageRef(mgr, "PageLedger", e.Page); err != nil {
				return err
			}
			if e.Free > store.PageSize {
				return &ValidationError{
					Type:    "PageLedger",
					Message: fmt.Sprintf("%d bytes free exceeds the page size", e.Free),
					Page:    int(e.Page),
				}
			}
			if owner, taken := owners[e.Page]; taken {
				return &ValidationError{
					Type:    "PageLedger",
					Message: "page owned twice",
					Page:    int(e.Page),
					Details: map[string]interface{}{"first": owner, "second": table},
				}
			}
			owners[e.Page] = table
		}

		free, err := ledger.LoadFreeSegments(mgr, roots.FreeSegmentsPage)
		if err != nil {
			return &ValidationError{Type: "FreeSegments", Message: err.Error(), Page: int(roots.FreeSegmentsPage)}
		}
		if err := checkSegments(pages, free.Segments()); err != nil {
			return err
		}
	}
	return nil
}

func checkSegments(pages *ledger.PageLedger, segments []ledger.FreeSegment) error {
	for i, s := range segments {
		free, owned := pages.FreeSpace(s.Page)
		if !owned {
			return &ValidationError{
				Type:    "FreeSegments",
				Message: "segment on a page the table does not own",
				Page:    int(s.Page),
			}
		}
		end := uint64(s.Offset) + uint64(s.Size)
		if used := store.PageSize - free; end > used {
			return &ValidationError{
				Type:    "FreeSegments",
				Message: fmt.Sprintf("segment [%d, %d) runs past the used region", s.Offset, end),
				Page:    int(s.Page),
				Details: map[string]interface{}{"used": used},
			}
		}
		for _, other := range segments[:i] {
			if s.Page != other.Page {
				continue
			}
			otherEnd := uint64(other.Offset) + uint64(other.Size)
			if uint64(s.Offset) < otherEnd && uint64(other.Offset) < end {
				return &ValidationError{
					Type:    "FreeSegments",
					Message: fmt.Sprintf("segments [%d, %d) and [%d, %d) overlap", other.Offset, otherEnd, s.Offset, end),
					Page:    int(s.Page),
				}
			}
		}
	}
	return nil
}

// checkPageRef validates that a ledger-referenced page is allocated and not
// one of the reserved header pages.
func checkPageRef(mgr *store.Manager, typ string, page store.Page) error {
	if page == store.SchemaPage || page == store.ACLPage {
		return &ValidationError{Type: typ, Message: "reserved header page referenced", Page: int(page)}
	}
	if uint64(page) >= mgr.Pages() {
		return &ValidationError{
			Type:    typ,
			Message: fmt.Sprintf("page past the allocated range (%d pages)", mgr.Pages()),
			Page:    int(page),
		}
	}
	return nil
}
