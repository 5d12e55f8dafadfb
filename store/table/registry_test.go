package table

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pagekit-db/pagekit/internal/buf"
	"github.com/pagekit-db/pagekit/store"
	"github.com/pagekit-db/pagekit/store/ledger"
	"github.com/pagekit-db/pagekit/store/schema"
)

// userRecord is the variable-size record the table tests store: a u32 id
// followed by a u16 length-prefixed name.
type userRecord struct {
	id   uint32
	name string
}

func (userRecord) DataSize() store.DataSize { return store.Variable }

func (u userRecord) Size() store.Size {
	return store.Size(4 + 2 + len(u.name))
}

func (u userRecord) Encode() []byte {
	out := make([]byte, 0, u.Size())
	out = buf.AppendU32LE(out, u.id)
	out = buf.AppendU16LE(out, uint16(len(u.name)))
	return append(out, u.name...)
}

func (u *userRecord) Decode(data []byte) error {
	if len(data) < 6 {
		return fmt.Errorf("truncated user record: %w", store.ErrDecode)
	}
	u.id = buf.U32LE(data)
	n := int(buf.U16LE(data[4:]))
	name, ok := buf.Slice(data, 6, n)
	if !ok {
		return fmt.Errorf("truncated user name (%d bytes declared): %w", n, store.ErrDecode)
	}
	u.name = string(name)
	return nil
}

// userOfSize returns a userRecord whose framed size is exactly framed bytes.
func userOfSize(id uint32, framed store.Size) *userRecord {
	return &userRecord{id: id, name: strings.Repeat("x", int(framed)-frameHeaderSize-6)}
}

func newTestRegistry(t *testing.T) (*store.Manager, *Registry) {
	t.Helper()
	mgr, err := store.NewManager(store.NewMemProvider())
	require.NoError(t, err)

	reg, err := schema.Load(mgr)
	require.NoError(t, err)
	roots, err := reg.Register(schema.TableFingerprint("users", []string{"id", "name"}))
	require.NoError(t, err)

	tbl, err := Load(mgr, roots)
	require.NoError(t, err)
	return mgr, tbl
}

func TestInsertAppendsToPageTail(t *testing.T) {
	mgr, tbl := newTestRegistry(t)
	before := mgr.Pages()

	first, err := tbl.Insert(&userRecord{id: 1, name: "alice"})
	require.NoError(t, err)
	require.Equal(t, store.Page(before), first.Page)
	require.Equal(t, store.PageOffset(0), first.Offset)

	second, err := tbl.Insert(&userRecord{id: 2, name: "bob"})
	require.NoError(t, err)
	require.Equal(t, first.Page, second.Page)
	require.Equal(t, store.PageOffset(first.Size), second.Offset)
}

func TestGetReadsBack(t *testing.T) {
	_, tbl := newTestRegistry(t)

	in := userRecord{id: 42, name: "carol"}
	loc, err := tbl.Insert(&in)
	require.NoError(t, err)
	require.Equal(t, store.Size(frameHeaderSize)+in.Size(), loc.Size)

	var out userRecord
	require.NoError(t, tbl.Get(loc, &out))
	require.Equal(t, in, out)
}

func TestInsertRejectsOversizedRecord(t *testing.T) {
	_, tbl := newTestRegistry(t)

	big := userRecord{name: strings.Repeat("x", MaxRecordSize-6+1)}
	_, err := tbl.Insert(&big)
	require.ErrorIs(t, err, store.ErrDataTooLarge)
}

func TestDeleteZeroesAndFreesSegment(t *testing.T) {
	mgr, tbl := newTestRegistry(t)

	loc, err := tbl.Insert(&userRecord{id: 1, name: "alice"})
	require.NoError(t, err)
	require.NoError(t, tbl.Delete(loc))

	require.Equal(t, []ledger.FreeSegment{
		{Page: loc.Page, Offset: loc.Offset, Size: loc.Size},
	}, tbl.FreeSegments().Segments())

	region := make([]byte, loc.Size)
	_, err = mgr.ReadRaw(loc.Page, loc.Offset, region)
	require.NoError(t, err)
	require.Equal(t, make([]byte, loc.Size), region)

	var out userRecord
	require.ErrorIs(t, tbl.Get(loc, &out), store.ErrDecode)
}

// Reusing part of a freed segment keeps the remainder free: a 40-byte record
// dropped into a 64-byte segment at offset 128 leaves a 24-byte segment at
// offset 168.
func TestInsertReusesFreedSegmentWithRemainder(t *testing.T) {
	_, tbl := newTestRegistry(t)

	// pad to offset 128, then place the record to be deleted
	_, err := tbl.Insert(userOfSize(1, 128))
	require.NoError(t, err)
	victim, err := tbl.Insert(userOfSize(2, 64))
	require.NoError(t, err)
	require.Equal(t, store.PageOffset(128), victim.Offset)

	require.NoError(t, tbl.Delete(victim))

	loc, err := tbl.Insert(userOfSize(3, 40))
	require.NoError(t, err)
	require.Equal(t, victim.Page, loc.Page)
	require.Equal(t, store.PageOffset(128), loc.Offset)
	require.Equal(t, store.Size(40), loc.Size)

	require.Equal(t, []ledger.FreeSegment{
		{Page: victim.Page, Offset: 168, Size: 24},
	}, tbl.FreeSegments().Segments())
}

func TestUpdateSameSizeStaysInPlace(t *testing.T) {
	_, tbl := newTestRegistry(t)

	loc, err := tbl.Insert(&userRecord{id: 1, name: "alice"})
	require.NoError(t, err)

	updated, err := tbl.Update(loc, &userRecord{id: 1, name: "alicf"})
	require.NoError(t, err)
	require.Equal(t, loc, updated)

	var out userRecord
	require.NoError(t, tbl.Get(updated, &out))
	require.Equal(t, "alicf", out.name)
	require.Empty(t, tbl.FreeSegments().Segments())
}

func TestUpdateShrinkFreesTail(t *testing.T) {
	mgr, tbl := newTestRegistry(t)

	loc, err := tbl.Insert(userOfSize(1, 64))
	require.NoError(t, err)

	small := userOfSize(1, 40)
	updated, err := tbl.Update(loc, small)
	require.NoError(t, err)
	require.Equal(t, loc.Page, updated.Page)
	require.Equal(t, loc.Offset, updated.Offset)
	require.Equal(t, store.Size(40), updated.Size)

	require.Equal(t, []ledger.FreeSegment{
		{Page: loc.Page, Offset: loc.Offset + 40, Size: 24},
	}, tbl.FreeSegments().Segments())

	tail := make([]byte, 24)
	_, err = mgr.ReadRaw(loc.Page, loc.Offset+40, tail)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 24), tail)

	var out userRecord
	require.NoError(t, tbl.Get(updated, &out))
	require.Equal(t, small, &out)
}

func TestUpdateGrowRelocates(t *testing.T) {
	_, tbl := newTestRegistry(t)

	loc, err := tbl.Insert(userOfSize(1, 40))
	require.NoError(t, err)
	filler, err := tbl.Insert(userOfSize(2, 40))
	require.NoError(t, err)

	grown := userOfSize(1, 80)
	updated, err := tbl.Update(loc, grown)
	require.NoError(t, err)
	require.Equal(t, store.Size(80), updated.Size)
	require.Equal(t, filler.Offset+store.PageOffset(filler.Size), updated.Offset,
		"grown record relocates past the filler")

	// the old slot is free again
	require.Equal(t, []ledger.FreeSegment{
		{Page: loc.Page, Offset: loc.Offset, Size: loc.Size},
	}, tbl.FreeSegments().Segments())

	var out userRecord
	require.NoError(t, tbl.Get(updated, &out))
	require.Equal(t, grown, &out)
}
