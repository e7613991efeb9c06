package strarray

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/airbreather/reminiscence/internal/buf"
)

// Frozen is the read-oriented single-buffer layout: an 8-byte little-endian
// slot count, the pointer records, then the raw string data, all in one
// buffer. Offsets are relative to the start of the data area. It supports
// Get but not Set; Freeze is its append-style compaction.
type Frozen struct {
	table      []byte
	data       []byte
	count      int
	fragmented bool
}

// Freeze writes the single-buffer form of a, packed in index order with no
// gaps regardless of a's current fragmentation. It returns the total bytes
// written. The array itself is not modified.
func Freeze(a *Array, w io.Writer) (int64, error) {
	if a.closed {
		return 0, ErrClosed
	}
	n := a.Len()

	hdr := make([]byte, 8+n*PointerSize)
	buf.PutI64(hdr, 0, int64(n))
	ptrs := make([]Pointer, n)
	var cursor int64
	for i := 0; i < n; i++ {
		p, err := a.pointerAt(i)
		if err != nil {
			return 0, err
		}
		ptrs[i] = p
		encodePointer(hdr[8+i*PointerSize:], Pointer{Offset: cursor, Length: p.Length})
		cursor += int64(p.Length)
	}
	if _, err := w.Write(hdr); err != nil {
		return 0, fmt.Errorf("strarray: freeze header: %w", err)
	}
	written := int64(len(hdr))

	for i := 0; i < n; i++ {
		if ptrs[i].Length == 0 {
			continue
		}
		src, err := a.data.Bytes(ptrs[i].Offset, int64(ptrs[i].Length))
		if err != nil {
			return written, fmt.Errorf("%w: slot %d: %v", ErrCorrupt, i, err)
		}
		m, err := w.Write(src)
		written += int64(m)
		if err != nil {
			return written, fmt.Errorf("strarray: freeze slot %d: %w", i, err)
		}
	}
	return written, nil
}

// OpenFrozen validates and wraps a single-buffer layout. The buffer is
// typically a view of a memory-mapped file; the Frozen aliases it, so the
// buffer must outlive the Frozen. Validation applies the same rules as
// New: in-bounds pointers and valid UTF-8 everywhere, or the whole open
// fails.
func OpenFrozen(b []byte) (*Frozen, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("%w: %d-byte buffer lacks a count", ErrCorrupt, len(b))
	}
	count := buf.ReadI64(b, 0)
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrCorrupt, count)
	}
	tableEnd, err := buf.CheckRecordRange(int64(len(b)), 8, count, PointerSize)
	if err != nil {
		return nil, fmt.Errorf("%w: pointer table: %v", ErrCorrupt, err)
	}
	f := &Frozen{
		table: b[8:tableEnd],
		data:  b[tableEnd:],
		count: int(count),
	}

	prevEnd := int64(0)
	for i := 0; i < f.count; i++ {
		p := decodePointer(f.table[i*PointerSize:])
		if p.Offset < 0 || p.Length < 0 {
			return nil, fmt.Errorf("%w: slot %d has negative fields {offset %d, length %d}", ErrCorrupt, i, p.Offset, p.Length)
		}
		view, ok := buf.Slice(f.data, p.Offset, int64(p.Length))
		if !ok {
			return nil, fmt.Errorf("%w: slot %d range [%d, %d) outside %d data bytes", ErrCorrupt, i, p.Offset, p.end(), len(f.data))
		}
		if p.Length > 0 && !utf8.Valid(view) {
			return nil, fmt.Errorf("%w: slot %d", ErrInvalidUTF8, i)
		}
		if p.Offset != prevEnd {
			f.fragmented = true
		}
		prevEnd = p.end()
	}
	return f, nil
}

// Len returns the number of string slots.
func (f *Frozen) Len() int {
	return f.count
}

// Fragmented reports whether the data area contains gaps. Buffers written
// by Freeze are never fragmented; externally supplied ones may be.
func (f *Frozen) Fragmented() bool {
	return f.fragmented
}

// Get returns the string at slot i.
func (f *Frozen) Get(i int) (string, error) {
	if i < 0 || i >= f.count {
		return "", fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, i, f.count)
	}
	p := decodePointer(f.table[i*PointerSize:])
	if p.Length == 0 {
		return "", nil
	}
	view, ok := buf.Slice(f.data, p.Offset, int64(p.Length))
	if !ok {
		return "", fmt.Errorf("%w: slot %d", ErrCorrupt, i)
	}
	if !utf8.Valid(view) {
		return "", fmt.Errorf("%w: slot %d", ErrInvalidUTF8, i)
	}
	return string(view), nil
}
