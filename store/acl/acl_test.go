package acl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pagekit-db/pagekit/store"
)

func newTestManager(t *testing.T) *store.Manager {
	t.Helper()
	m, err := store.NewManager(store.NewMemProvider())
	require.NoError(t, err)
	return m
}

func TestLoadFreshStoreYieldsEmptyList(t *testing.T) {
	l, err := Load(newTestManager(t))
	require.NoError(t, err)
	require.Empty(t, l.Principals())
}

func TestAddAndRemovePrincipal(t *testing.T) {
	l, err := Load(newTestManager(t))
	require.NoError(t, err)

	p := Principal("alice")
	require.False(t, l.IsAllowed(p))

	require.NoError(t, l.Add(p))
	require.True(t, l.IsAllowed(p))
	require.Len(t, l.Principals(), 1)

	require.NoError(t, l.Remove(p))
	require.False(t, l.IsAllowed(p))
	require.Empty(t, l.Principals())
}

func TestAddIsIdempotent(t *testing.T) {
	l, err := Load(newTestManager(t))
	require.NoError(t, err)

	p := Principal("alice")
	require.NoError(t, l.Add(p))
	require.NoError(t, l.Add(p))
	require.Len(t, l.Principals(), 1)
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	l, err := Load(newTestManager(t))
	require.NoError(t, err)

	require.NoError(t, l.Add(Principal("alice")))
	require.NoError(t, l.Remove(Principal("bob")))
	require.Len(t, l.Principals(), 1)
}

func TestMutationsAreWrittenThrough(t *testing.T) {
	mgr := newTestManager(t)

	l, err := Load(mgr)
	require.NoError(t, err)
	require.NoError(t, l.Add(Principal("alice")))
	require.NoError(t, l.Add(Principal("bob")))
	require.NoError(t, l.Remove(Principal("alice")))

	reloaded, err := Load(mgr)
	require.NoError(t, err)
	require.False(t, reloaded.IsAllowed(Principal("alice")))
	require.True(t, reloaded.IsAllowed(Principal("bob")))
}

func TestPrincipalSizeBounds(t *testing.T) {
	l, err := Load(newTestManager(t))
	require.NoError(t, err)

	require.ErrorIs(t, l.Add(Principal("")), ErrPrincipalSize)
	require.ErrorIs(t, l.Add(Principal(strings.Repeat("x", 256))), ErrPrincipalSize)
	require.NoError(t, l.Add(Principal(strings.Repeat("x", 255))))
}

func TestBlobRoundTrip(t *testing.T) {
	in := listBlob{allowed: []Principal{"alice", "bob", Principal([]byte{0x00, 0xFF, 0x10})}}

	encoded := in.Encode()
	require.Len(t, encoded, int(in.Size()))

	var out listBlob
	require.NoError(t, out.Decode(encoded))
	require.Equal(t, in.allowed, out.allowed)
}

func TestBlobDecodeTruncatedFails(t *testing.T) {
	in := listBlob{allowed: []Principal{"alice"}}
	encoded := in.Encode()

	var out listBlob
	require.ErrorIs(t, out.Decode(encoded[:len(encoded)-2]), store.ErrDecode)
	require.ErrorIs(t, out.Decode([]byte{1, 0}), store.ErrDecode)
}
