//go:build !unix

package store

import (
	"fmt"
	"os"
)

// FileProvider is a Provider backed by a single file. On platforms without
// mmap support it falls back to positional reads and writes.
type FileProvider struct {
	f    *os.File
	size uint64
}

// OpenFile opens or creates the store file at path. An existing file must be
// page-aligned.
func OpenFile(path string) (*FileProvider, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("store: stat %s: %w", path, err)
	}
	size := info.Size()
	if size%PageSize != 0 {
		_ = f.Close()
		return nil, fmt.Errorf("store: %s: size %d is not a multiple of the page size", path, size)
	}
	return &FileProvider{f: f, size: uint64(size)}, nil
}

// Size returns the current capacity in bytes.
func (p *FileProvider) Size() uint64 { return p.size }

// Pages returns the current page count.
func (p *FileProvider) Pages() uint64 { return p.size / PageSize }

// Grow extends the file by n pages. Returns the previous capacity.
func (p *FileProvider) Grow(n uint64) (uint64, error) {
	prev := p.size
	newSize := prev + n*PageSize
	if err := p.f.Truncate(int64(newSize)); err != nil {
		return 0, fmt.Errorf("store: truncate to %d: %v: %w", newSize, err, ErrGrowFailed)
	}
	p.size = newSize
	return prev, nil
}

// Read fills buf from the bytes at off.
func (p *FileProvider) Read(off uint64, buf []byte) error {
	if off+uint64(len(buf)) > p.size {
		return fmt.Errorf("read of %d bytes at %d: %w", len(buf), off, ErrOutOfBounds)
	}
	_, err := p.f.ReadAt(buf, int64(off))
	return err
}

// Write stores data at off.
func (p *FileProvider) Write(off uint64, data []byte) error {
	if off+uint64(len(data)) > p.size {
		return fmt.Errorf("write of %d bytes at %d: %w", len(data), off, ErrOutOfBounds)
	}
	_, err := p.f.WriteAt(data, int64(off))
	return err
}

// Sync flushes written bytes to disk.
func (p *FileProvider) Sync() error { return p.f.Sync() }

// Close closes the underlying file.
func (p *FileProvider) Close() error { return p.f.Close() }
