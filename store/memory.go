package store

import "fmt"

// MemProvider is a Provider backed by a resizable in-memory buffer. It backs
// the test suite and embeddings that do not need persistence; its bounds
// semantics are identical to FileProvider's.
type MemProvider struct {
	data []byte
}

// NewMemProvider returns an empty in-memory provider.
func NewMemProvider() *MemProvider {
	return &MemProvider{}
}

// Size returns the current capacity in bytes.
func (p *MemProvider) Size() uint64 { return uint64(len(p.data)) }

// Pages returns the current page count.
func (p *MemProvider) Pages() uint64 { return uint64(len(p.data)) / PageSize }

// Grow reserves n more pages of zeroed bytes and returns the previous
// capacity.
func (p *MemProvider) Grow(n uint64) (uint64, error) {
	prev := uint64(len(p.data))
	p.data = append(p.data, make([]byte, n*PageSize)...)
	return prev, nil
}

// Read fills buf from the bytes at off.
func (p *MemProvider) Read(off uint64, buf []byte) error {
	if off+uint64(len(buf)) > uint64(len(p.data)) {
		return fmt.Errorf("read of %d bytes at %d: %w", len(buf), off, ErrOutOfBounds)
	}
	copy(buf, p.data[off:])
	return nil
}

// Write stores data at off.
func (p *MemProvider) Write(off uint64, data []byte) error {
	if off+uint64(len(data)) > uint64(len(p.data)) {
		return fmt.Errorf("write of %d bytes at %d: %w", len(data), off, ErrOutOfBounds)
	}
	copy(p.data[off:], data)
	return nil
}
