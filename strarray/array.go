package strarray

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/airbreather/reminiscence/region"
)

// Array is a mutable, index-addressed collection of strings packed into a
// single data region. It owns its pointer table and data region exclusively
// and releases both on Close.
type Array struct {
	ptrs *region.RecordTable
	data region.Region

	// fragmented is true when the data region is known not to be tightly
	// packed in index order. It is a policy hint only: it avoids useless
	// compactions but is never required for correctness. Sticky until
	// Compact clears it.
	fragmented bool

	compactOnSave bool
	closed        bool
}

// Option configures an Array at construction time.
type Option func(*Array)

// WithCompactOnSave makes WriteTo run a compaction before serializing.
// Compaction never changes the logical contents, only shrinks the output.
func WithCompactOnSave() Option {
	return func(a *Array) { a.compactOnSave = true }
}

// New composes an array over an existing pointer-table region and data
// region. Ownership of both transfers to the array: after a successful
// return the caller must not touch either region again, and Close releases
// both. On error the caller still owns the regions.
//
// The index region's length must be a whole number of 12-byte pointer
// records, every record must address a range inside the data region, and
// every addressed range must be valid UTF-8; otherwise construction fails
// and no array is returned.
func New(index, data region.Region, opts ...Option) (*Array, error) {
	ptrs, err := region.NewRecordTable(index, PointerSize)
	if err != nil {
		return nil, fmt.Errorf("strarray: pointer table: %w", err)
	}
	a := &Array{ptrs: ptrs, data: data}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// NewInMemory creates a heap-backed array of n empty strings.
func NewInMemory(n int, opts ...Option) (*Array, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: length %d", ErrIndexOutOfRange, n)
	}
	index, err := region.NewMem(int64(n) * PointerSize)
	if err != nil {
		return nil, err
	}
	data, err := region.NewMem(0)
	if err != nil {
		return nil, err
	}
	return New(index, data, opts...)
}

// Len returns the number of string slots.
func (a *Array) Len() int {
	return int(a.ptrs.Count())
}

// Fragmented reports whether the data region is known to contain gaps that
// a Compact call would eliminate.
func (a *Array) Fragmented() bool {
	return a.fragmented
}

// DataLen returns the data region's current length in bytes, including any
// garbage not yet reclaimed by Compact.
func (a *Array) DataLen() int64 {
	return a.data.Len()
}

func (a *Array) pointerAt(i int) (Pointer, error) {
	rec, err := a.ptrs.Record(int64(i))
	if err != nil {
		return Pointer{}, err
	}
	return decodePointer(rec), nil
}

func (a *Array) setPointerAt(i int, p Pointer) error {
	rec, err := a.ptrs.Record(int64(i))
	if err != nil {
		return err
	}
	encodePointer(rec, p)
	return nil
}

func (a *Array) checkIndex(i int) error {
	if n := a.Len(); i < 0 || i >= n {
		return fmt.Errorf("%w: index %d of %d", ErrIndexOutOfRange, i, n)
	}
	return nil
}

// Get returns the string at slot i.
func (a *Array) Get(i int) (string, error) {
	if a.closed {
		return "", ErrClosed
	}
	if err := a.checkIndex(i); err != nil {
		return "", err
	}
	p, err := a.pointerAt(i)
	if err != nil {
		return "", err
	}
	if p.Length == 0 {
		// Empty slots never touch the data region or the decoder.
		return "", nil
	}
	view, err := a.data.Bytes(p.Offset, int64(p.Length))
	if err != nil {
		return "", fmt.Errorf("%w: slot %d: %v", ErrCorrupt, i, err)
	}
	if !utf8.Valid(view) {
		return "", fmt.Errorf("%w: slot %d", ErrInvalidUTF8, i)
	}
	return string(view), nil
}

// Set replaces the string at slot i with value.
//
// A replacement of the same encoded length overwrites in place. A shorter
// one shrinks the slot in place and leaves the vacated tail as a gap. A
// longer one appends at the data region's tail, compacting and growing
// first when out of room; when slot i itself owns the tail its old bytes
// are reclaimed instead of abandoned, so repeatedly extending the last
// string does not grow the region without bound.
func (a *Array) Set(i int, value string) error {
	if a.closed {
		return ErrClosed
	}
	if err := a.checkIndex(i); err != nil {
		return err
	}
	if !utf8.ValidString(value) {
		return fmt.Errorf("%w: value for slot %d", ErrInvalidUTF8, i)
	}
	if int64(len(value)) > math.MaxInt32 {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(value))
	}
	needed := int32(len(value))

	old, err := a.pointerAt(i)
	if err != nil {
		return err
	}

	switch {
	case needed == old.Length:
		if needed == 0 {
			return nil
		}
		view, err := a.data.Bytes(old.Offset, int64(needed))
		if err != nil {
			return fmt.Errorf("%w: slot %d: %v", ErrCorrupt, i, err)
		}
		copy(view, value)
		return nil

	case needed < old.Length:
		if needed > 0 {
			view, err := a.data.Bytes(old.Offset, int64(needed))
			if err != nil {
				return fmt.Errorf("%w: slot %d: %v", ErrCorrupt, i, err)
			}
			copy(view, value)
		}
		if err := a.setPointerAt(i, Pointer{Offset: old.Offset, Length: needed}); err != nil {
			return err
		}
		// The vacated tail of the old range is now a gap.
		a.fragmented = true
		return nil
	}

	return a.setLonger(i, value, old)
}

// setLonger handles the hard case of Set: the replacement does not fit in
// the slot's current range, so it is appended at the data region's tail.
func (a *Array) setLonger(i int, value string, old Pointer) error {
	needed := int64(len(value))

	tail, tailIdx, overlapped, err := a.scanTail()
	if err != nil {
		return err
	}
	if tailIdx == i && !overlapped {
		// The slot being rewritten already sits at the end and nobody
		// shares its bytes: reclaim its old space instead of abandoning it.
		tail -= int64(old.Length)
	}

	if tail+needed > a.data.Len() {
		if a.fragmented {
			packed, err := a.Compact()
			if err != nil {
				return err
			}
			tail = packed
		}
		if err := a.data.EnsureSize(tail + needed); err != nil {
			return fmt.Errorf("strarray: grow data region: %w", err)
		}
	}

	dst, err := a.data.Bytes(tail, needed)
	if err != nil {
		return fmt.Errorf("strarray: write slot %d: %w", i, err)
	}
	copy(dst, value)
	if err := a.setPointerAt(i, Pointer{Offset: tail, Length: int32(needed)}); err != nil {
		return err
	}

	if i > 0 {
		prev, err := a.pointerAt(i - 1)
		if err != nil {
			return err
		}
		if prev.end() != tail {
			a.fragmented = true
		}
	}
	return nil
}

// scanTail finds the highest used offset+length over all slots, the slot
// owning that maximum, and whether that slot's range overlaps any other
// slot's range. Overlaps can only come from externally loaded data that
// shares substrings; Set never creates them, but reclaiming shared bytes
// would corrupt the other slot, so they must be detected.
func (a *Array) scanTail() (tail int64, tailIdx int, overlapped bool, err error) {
	n := a.Len()
	tailIdx = -1
	for j := 0; j < n; j++ {
		p, err := a.pointerAt(j)
		if err != nil {
			return 0, 0, false, err
		}
		if end := p.end(); end > tail {
			tail = end
			tailIdx = j
		}
	}
	if tailIdx < 0 {
		return 0, -1, false, nil
	}
	owner, err := a.pointerAt(tailIdx)
	if err != nil {
		return 0, 0, false, err
	}
	for j := 0; j < n; j++ {
		if j == tailIdx {
			continue
		}
		p, err := a.pointerAt(j)
		if err != nil {
			return 0, 0, false, err
		}
		if owner.overlaps(p) {
			return tail, tailIdx, true, nil
		}
	}
	return tail, tailIdx, false, nil
}

// Resize changes the logical length to n slots. Growing appends empty
// strings; shrinking drops trailing slots without reclaiming their bytes,
// leaving that reclamation to a later Compact.
func (a *Array) Resize(n int) error {
	if a.closed {
		return ErrClosed
	}
	if n < 0 {
		return fmt.Errorf("%w: length %d", ErrIndexOutOfRange, n)
	}
	cur := a.Len()
	if n == cur {
		return nil
	}
	if n < cur {
		dropped := false
		for j := n; j < cur; j++ {
			p, err := a.pointerAt(j)
			if err != nil {
				return err
			}
			if p.Length > 0 {
				dropped = true
				break
			}
		}
		if err := a.ptrs.Resize(int64(n)); err != nil {
			return err
		}
		if dropped {
			a.fragmented = true
		}
		return nil
	}
	return a.ptrs.Resize(int64(n))
}

// Close releases the pointer table and data region exactly once; calling
// Close again is a no-op.
func (a *Array) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	err := a.ptrs.Close()
	if derr := a.data.Close(); err == nil {
		err = derr
	}
	return err
}
