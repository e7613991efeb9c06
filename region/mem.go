package region

import (
	"fmt"

	"github.com/airbreather/reminiscence/internal/buf"
)

// Mem is a heap-backed Region. The zero value is not usable; call NewMem.
type Mem struct {
	data   []byte
	closed bool
}

// NewMem creates a heap-backed region of size zero-filled bytes.
func NewMem(size int64) (*Mem, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}
	return &Mem{data: make([]byte, size)}, nil
}

// MemOf wraps an existing byte slice as a region. The region takes
// ownership of b; the caller must not use b afterwards.
func MemOf(b []byte) *Mem {
	return &Mem{data: b}
}

func (m *Mem) Len() int64 {
	return int64(len(m.data))
}

func (m *Mem) Bytes(off, n int64) ([]byte, error) {
	if m.closed {
		return nil, ErrClosed
	}
	view, ok := buf.Slice(m.data, off, n)
	if !ok {
		return nil, fmt.Errorf("region: range [%d, %d+%d) outside %d bytes", off, off, n, len(m.data))
	}
	return view, nil
}

func (m *Mem) Resize(size int64) error {
	if m.closed {
		return ErrClosed
	}
	if size < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}
	cur := int64(len(m.data))
	switch {
	case size == cur:
		return nil
	case size < cur:
		m.data = m.data[:size]
	case size <= int64(cap(m.data)):
		// Reclaim capacity left by an earlier shrink; zero it first since
		// it may still hold stale bytes.
		grown := m.data[:size]
		clear(grown[cur:])
		m.data = grown
	default:
		grown := make([]byte, size)
		copy(grown, m.data)
		m.data = grown
	}
	return nil
}

func (m *Mem) EnsureSize(size int64) error {
	if m.closed {
		return ErrClosed
	}
	if size <= int64(len(m.data)) {
		return nil
	}
	return m.Resize(size)
}

// Close releases the backing slice. Safe to call multiple times.
func (m *Mem) Close() error {
	m.data = nil
	m.closed = true
	return nil
}
