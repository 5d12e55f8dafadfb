package store

// DataSize declares the encoded width of a Record type. A non-negative value
// means every instance of the type encodes to exactly that many bytes;
// Variable means instances are self-describing and may differ in length.
type DataSize int32

// Variable marks a Record type whose encoded length differs per instance.
const Variable DataSize = -1

// Fixed returns the DataSize of a type that always encodes to n bytes.
func Fixed(n Size) DataSize { return DataSize(n) }

// IsFixed reports whether the type has a fixed encoded width.
func (d DataSize) IsFixed() bool { return d >= 0 }

// FixedSize returns the declared width of a fixed-size type. It is zero for
// Variable.
func (d DataSize) FixedSize() Size {
	if d < 0 {
		return 0
	}
	return Size(d)
}

// Record is implemented by every type persisted at a page location: table
// records, ledger blobs, the schema registry, and the ACL. The core never
// inspects field contents, only total byte length.
//
// Laws: Encode is deterministic, len(Encode()) == Size(), and decoding the
// bytes produced by Encode yields an equal value. For Variable types the
// encoding is self-describing: Decode recovers the exact consumed length
// from the bytes themselves and tolerates trailing garbage. Size's u16
// width means the length law only holds for values encoding to fewer than
// 1<<16 bytes; values at or past that bound cannot be represented and must
// be rejected before encoding.
type Record interface {
	// DataSize reports whether the type is fixed- or variable-width.
	DataSize() DataSize
	// Size returns the exact encoded length of this value.
	Size() Size
	// Encode returns the byte representation of the value.
	Encode() []byte
	// Decode populates the receiver from data. Malformed or truncated
	// input fails with an error wrapping ErrDecode.
	Decode(data []byte) error
}
