// Package table composes a table's page ledger and free segment ledger into
// the allocation decision used by record writers, frames records for
// on-page storage, and provides sequential scans over a table's live
// records.
package table

import (
	"fmt"

	"github.com/pagekit-db/pagekit/internal/buf"
	"github.com/pagekit-db/pagekit/store"
)

const (
	// frameMagic starts every stored record. Deleted record ranges are
	// zeroed, so the scanner can distinguish live records from gaps.
	frameMagic = 0xFF
	// frameHeaderSize is the magic byte plus the u16 payload length.
	frameHeaderSize = 3
)

// MaxRecordSize is the largest record payload a table can store. The framed
// size must fit the u16 size fields used by locations and free segments, so
// the bound is one short of a full page minus the frame header.
const MaxRecordSize = store.PageSize - frameHeaderSize - 1

// frame wraps a record with its on-page header: the magic byte followed by
// the little-endian payload length. The header makes every stored record
// self-describing regardless of the body's DataSize.
type frame struct {
	body store.Record
}

var _ store.Record = frame{}

func (frame) DataSize() store.DataSize { return store.Variable }

func (f frame) Size() store.Size {
	return frameHeaderSize + f.body.Size()
}

func (f frame) Encode() []byte {
	body := f.body.Encode()
	out := make([]byte, 0, frameHeaderSize+len(body))
	out = append(out, frameMagic)
	out = buf.AppendU16LE(out, uint16(len(body)))
	return append(out, body...)
}

func (f frame) Decode(data []byte) error {
	if len(data) < frameHeaderSize {
		return fmt.Errorf("table: truncated record header: %w", store.ErrDecode)
	}
	if data[0] != frameMagic {
		return fmt.Errorf("table: bad record header byte 0x%02X: %w", data[0], store.ErrDecode)
	}
	n := int(buf.U16LE(data[1:]))
	body, ok := buf.Slice(data, frameHeaderSize, n)
	if !ok {
		return fmt.Errorf("table: truncated record body (%d bytes declared): %w", n, store.ErrDecode)
	}
	return f.body.Decode(body)
}
