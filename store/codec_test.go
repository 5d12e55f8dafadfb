package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataSizeFixed(t *testing.T) {
	ds := Fixed(64)
	require.True(t, ds.IsFixed())
	require.Equal(t, Size(64), ds.FixedSize())
}

func TestDataSizeVariable(t *testing.T) {
	require.False(t, Variable.IsFixed())
	require.Zero(t, Variable.FixedSize())
}

func TestRecordRoundTrip(t *testing.T) {
	for _, in := range []pairRecord{
		{},
		{a: 1, b: 2},
		{a: 65535, b: 4294967295},
	} {
		encoded := in.Encode()
		require.Len(t, encoded, int(in.Size()))

		var out pairRecord
		require.NoError(t, out.Decode(encoded))
		require.Equal(t, in, out)
	}
}

func TestVariableRecordRoundTripWithTrailingBytes(t *testing.T) {
	in := textRecord{s: "self-describing"}
	encoded := append(in.Encode(), make([]byte, 32)...)

	var out textRecord
	require.NoError(t, out.Decode(encoded))
	require.Equal(t, in, out)
}

func TestDecodeTruncatedFails(t *testing.T) {
	var p pairRecord
	require.ErrorIs(t, p.Decode([]byte{1, 2, 3}), ErrDecode)

	var s textRecord
	require.ErrorIs(t, s.Decode([]byte{10, 0, 'a'}), ErrDecode)
}
