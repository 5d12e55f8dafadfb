// Package acl persists the set of identities authorized to use the
// database. The whole list lives as one blob on the reserved ACL page and is
// rewritten in full on every mutation, so a crash between mutation and reply
// never leaves a half-applied change visible to a later load.
package acl

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pagekit-db/pagekit/internal/buf"
	"github.com/pagekit-db/pagekit/store"
)

// Principal is an opaque caller identity. The bytes are never interpreted,
// only compared.
type Principal string

// MaxPrincipalLen bounds a principal's byte length so it fits the on-page
// length prefix.
const MaxPrincipalLen = 255

// ErrPrincipalSize indicates a principal outside the 1..MaxPrincipalLen
// byte range.
var ErrPrincipalSize = errors.New("acl: principal must be between 1 and 255 bytes")

// List is the access control list, loaded once at startup and written
// through on every mutation.
type List struct {
	mgr     *store.Manager
	allowed []Principal
}

// Load reads the ACL blob from the reserved ACL page. A page that has never
// been written yields the empty list.
func Load(mgr *store.Manager) (*List, error) {
	var blob listBlob
	if err := mgr.ReadAt(store.ACLPage, 0, &blob); err != nil {
		return nil, fmt.Errorf("acl: load: %w", err)
	}
	return &List{mgr: mgr, allowed: blob.allowed}, nil
}

// IsAllowed reports whether the principal is in the list.
func (l *List) IsAllowed(p Principal) bool {
	return slices.Contains(l.allowed, p)
}

// Principals returns a copy of the allowed principals.
func (l *List) Principals() []Principal {
	return slices.Clone(l.allowed)
}

// Add appends the principal and persists the updated list. Adding a
// principal that is already present is a no-op.
func (l *List) Add(p Principal) error {
	if len(p) == 0 || len(p) > MaxPrincipalLen {
		return ErrPrincipalSize
	}
	if l.IsAllowed(p) {
		return nil
	}
	l.allowed = append(l.allowed, p)
	if err := l.write(); err != nil {
		l.allowed = l.allowed[:len(l.allowed)-1]
		return err
	}
	return nil
}

// Remove deletes the principal and persists the updated list. Removing an
// absent principal is a no-op.
func (l *List) Remove(p Principal) error {
	i := slices.Index(l.allowed, p)
	if i < 0 {
		return nil
	}
	prev := slices.Clone(l.allowed)
	l.allowed = slices.Delete(l.allowed, i, i+1)
	if err := l.write(); err != nil {
		l.allowed = prev
		return err
	}
	return nil
}

func (l *List) write() error {
	blob := listBlob{allowed: l.allowed}
	if err := l.mgr.WriteAt(store.ACLPage, 0, &blob); err != nil {
		return fmt.Errorf("acl: persist: %w", err)
	}
	return nil
}

// listBlob is the persisted form of the list: a u32 count followed by one
// u8-length-prefixed byte string per principal, little-endian.
type listBlob struct {
	allowed []Principal
}

var _ store.Record = (*listBlob)(nil)

func (listBlob) DataSize() store.DataSize { return store.Variable }

func (b listBlob) Size() store.Size {
	n := 4
	for _, p := range b.allowed {
		n += 1 + len(p)
	}
	return store.Size(n)
}

func (b listBlob) Encode() []byte {
	out := make([]byte, 0, b.Size())
	out = buf.AppendU32LE(out, uint32(len(b.allowed)))
	for _, p := range b.allowed {
		out = append(out, byte(len(p)))
		out = append(out, p...)
	}
	return out
}

func (b *listBlob) Decode(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("acl: truncated list header: %w", store.ErrDecode)
	}
	count := int(buf.U32LE(data))
	off := 4
	allowed := make([]Principal, 0, min(count, len(data)))
	for i := 0; i < count; i++ {
		if !buf.Has(data, off, 1) {
			return fmt.Errorf("acl: truncated principal %d length: %w", i, store.ErrDecode)
		}
		n := int(data[off])
		off++
		raw, ok := buf.Slice(data, off, n)
		if !ok {
			return fmt.Errorf("acl: truncated principal %d: %w", i, store.ErrDecode)
		}
		off += n
		allowed = append(allowed, Principal(raw))
	}
	b.allowed = allowed
	return nil
}
