//go:build unix

package region

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/airbreather/reminiscence/internal/buf"
)

// File is a Region backed by a read-write memory-mapped file. Growing and
// shrinking go through ftruncate followed by a fresh mapping, so the file
// on disk always matches the logical length of the region.
type File struct {
	f    *os.File
	data []byte
	size int64
}

// OpenFile opens (creating if necessary) the file at path and maps it
// read-write. The region's initial length is the file's current size.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sz := st.Size()

	var data []byte
	if sz > 0 {
		data, err = syscall.Mmap(
			int(f.Fd()),
			0,
			int(sz),
			syscall.PROT_READ|syscall.PROT_WRITE,
			syscall.MAP_SHARED,
		)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("region: mmap failed: %w", err)
		}
	}
	return &File{f: f, data: data, size: sz}, nil
}

func (r *File) Len() int64 {
	return r.size
}

func (r *File) Bytes(off, n int64) ([]byte, error) {
	if r.f == nil {
		return nil, ErrClosed
	}
	view, ok := buf.Slice(r.data, off, n)
	if !ok {
		return nil, fmt.Errorf("region: range [%d, %d+%d) outside %d bytes", off, off, n, r.size)
	}
	return view, nil
}

// Resize changes the file length to exactly size and remaps it. New bytes
// are zero-initialized by the OS. On failure the previous mapping is
// restored on a best-effort basis before the error is returned.
func (r *File) Resize(size int64) error {
	if r.f == nil {
		return ErrClosed
	}
	if size < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}
	if size == r.size {
		return nil
	}

	if r.data != nil {
		if err := syscall.Munmap(r.data); err != nil {
			return fmt.Errorf("region: failed to unmap before resize: %w", err)
		}
		r.data = nil
	}

	if err := r.f.Truncate(size); err != nil {
		r.remapRecover()
		return fmt.Errorf("region: failed to truncate file: %w", err)
	}

	if size == 0 {
		r.size = 0
		return nil
	}

	data, err := syscall.Mmap(
		int(r.f.Fd()),
		0,
		int(size),
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_SHARED,
	)
	if err != nil {
		// The file was already truncated; try to undo that too so the
		// region stays consistent with its last good state.
		_ = r.f.Truncate(r.size)
		r.remapRecover()
		return fmt.Errorf("region: failed to remap after resize: %w", err)
	}
	r.data = data
	r.size = size
	return nil
}

// remapRecover re-establishes the mapping at the last known good size.
func (r *File) remapRecover() {
	if r.size == 0 {
		return
	}
	data, _ := syscall.Mmap(
		int(r.f.Fd()),
		0,
		int(r.size),
		syscall.PROT_READ|syscall.PROT_WRITE,
		syscall.MAP_SHARED,
	)
	r.data = data
}

func (r *File) EnsureSize(size int64) error {
	if r.f == nil {
		return ErrClosed
	}
	if size <= r.size {
		return nil
	}
	return r.Resize(size)
}

// Sync flushes the mapped pages and the file metadata to disk.
func (r *File) Sync() error {
	if r.f == nil {
		return ErrClosed
	}
	if len(r.data) > 0 {
		if err := unix.Msync(r.data, unix.MS_SYNC); err != nil {
			return fmt.Errorf("region: msync: %w", err)
		}
	}
	if err := r.f.Sync(); err != nil {
		return fmt.Errorf("region: fsync: %w", err)
	}
	return nil
}

// Close unmaps the file and closes it. Safe to call multiple times.
func (r *File) Close() error {
	var err error
	if r.data != nil {
		_ = syscall.Munmap(r.data)
		r.data = nil
	}
	if r.f != nil {
		err = r.f.Close()
		r.f = nil
	}
	return err
}
