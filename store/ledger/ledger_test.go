package ledger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pagekit-db/pagekit/store"
)

// sizedRecord stands in for any encodable record; the ledgers only consult
// its size.
type sizedRecord struct {
	n store.Size
}

func (sizedRecord) DataSize() store.DataSize { return store.Variable }
func (r sizedRecord) Size() store.Size       { return r.n }
func (r sizedRecord) Encode() []byte         { return bytes.Repeat([]byte{0xAB}, int(r.n)) }
func (sizedRecord) Decode([]byte) error      { return nil }

func newTestManager(t *testing.T) *store.Manager {
	t.Helper()
	m, err := store.NewManager(store.NewMemProvider())
	require.NoError(t, err)
	return m
}

func newTestLedgers(t *testing.T) (*store.Manager, *PageLedger, *FreeSegmentsLedger) {
	t.Helper()
	mgr := newTestManager(t)
	pagesRoot, err := mgr.AllocatePage()
	require.NoError(t, err)
	segmentsRoot, err := mgr.AllocatePage()
	require.NoError(t, err)

	pl, err := LoadPageLedger(mgr, pagesRoot)
	require.NoError(t, err)
	fl, err := LoadFreeSegments(mgr, segmentsRoot)
	require.NoError(t, err)
	return mgr, pl, fl
}
