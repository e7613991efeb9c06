//go:build !unix

package region

import (
	"fmt"
	"os"

	"github.com/airbreather/reminiscence/internal/buf"
)

// File is a Region backed by a file. On platforms without a usable mmap
// the contents are held in memory and written back on Sync and Close.
type File struct {
	f     *os.File
	data  []byte
	size  int64
	dirty bool
}

// OpenFile opens (creating if necessary) the file at path and reads its
// contents into memory. The region's initial length is the file's size.
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
	data := make([]byte, sz)
	if sz > 0 {
		if _, err := f.ReadAt(data, 0); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("region: read file: %w", err)
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
	r.dirty = r.dirty || n > 0
	return view, nil
}

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
	if err := r.f.Truncate(size); err != nil {
		return fmt.Errorf("region: failed to truncate file: %w", err)
	}
	grown := make([]byte, size)
	copy(grown, r.data)
	r.data = grown
	r.size = size
	r.dirty = true
	return nil
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

// Sync writes the in-memory contents back to the file and flushes it.
func (r *File) Sync() error {
	if r.f == nil {
		return ErrClosed
	}
	if r.dirty {
		if _, err := r.f.WriteAt(r.data, 0); err != nil {
			return fmt.Errorf("region: write back: %w", err)
		}
		r.dirty = false
	}
	if err := r.f.Sync(); err != nil {
		return fmt.Errorf("region: fsync: %w", err)
	}
	return nil
}

// Close writes back any modified contents and closes the file. Safe to
// call multiple times.
func (r *File) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.Sync()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	r.f = nil
	r.data = nil
	return err
}
