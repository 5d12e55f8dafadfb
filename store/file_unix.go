//go:build unix

package store

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileProvider is a Provider backed by a single file. On unix platforms the
// file is memory-mapped; growth extends the file with ftruncate and remaps.
// The mapping is shared, so written bytes reach the page cache immediately
// and Sync forces them to disk.
type FileProvider struct {
	f    *os.File
	data []byte
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
	p := &FileProvider{f: f}
	if size > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, int(size),
			unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("store: mmap %s: %w", path, err)
		}
		p.data = data
	}
	return p, nil
}

// Size returns the current capacity in bytes.
func (p *FileProvider) Size() uint64 { return uint64(len(p.data)) }

// Pages returns the current page count.
func (p *FileProvider) Pages() uint64 { return uint64(len(p.data)) / PageSize }

// Grow extends the file by n pages and remaps it. Returns the previous
// capacity.
func (p *FileProvider) Grow(n uint64) (uint64, error) {
	prev := uint64(len(p.data))
	newSize := prev + n*PageSize
	if p.data != nil {
		if err := unix.Munmap(p.data); err != nil {
			return 0, fmt.Errorf("store: unmap before grow: %w", err)
		}
		p.data = nil
	}
	if err := p.f.Truncate(int64(newSize)); err != nil {
		p.remap(prev)
		return 0, fmt.Errorf("store: truncate to %d: %v: %w", newSize, err, ErrGrowFailed)
	}
	data, err := unix.Mmap(int(p.f.Fd()), 0, int(newSize),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		p.remap(prev)
		return 0, fmt.Errorf("store: remap to %d: %v: %w", newSize, err, ErrGrowFailed)
	}
	p.data = data
	return prev, nil
}

// remap restores the mapping at the previous size after a failed grow.
func (p *FileProvider) remap(size uint64) {
	if size == 0 {
		return
	}
	data, err := unix.Mmap(int(p.f.Fd()), 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err == nil {
		p.data = data
	}
}

// Read fills buf from the bytes at off.
func (p *FileProvider) Read(off uint64, buf []byte) error {
	if off+uint64(len(buf)) > uint64(len(p.data)) {
		return fmt.Errorf("read of %d bytes at %d: %w", len(buf), off, ErrOutOfBounds)
	}
	copy(buf, p.data[off:])
	return nil
}

// Write stores data at off.
func (p *FileProvider) Write(off uint64, data []byte) error {
	if off+uint64(len(data)) > uint64(len(p.data)) {
		return fmt.Errorf("write of %d bytes at %d: %w", len(data), off, ErrOutOfBounds)
	}
	copy(p.data[off:], data)
	return nil
}

// Sync flushes the mapped bytes to disk.
func (p *FileProvider) Sync() error {
	if p.data == nil {
		return nil
	}
	return unix.Msync(p.data, unix.MS_SYNC)
}

// Close unmaps and closes the underlying file.
func (p *FileProvider) Close() error {
	if p.data != nil {
		if err := unix.Munmap(p.data); err != nil {
			return err
		}
		p.data = nil
	}
	return p.f.Close()
}
