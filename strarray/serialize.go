package strarray

import (
	"fmt"
	"io"

	"github.com/airbreather/reminiscence/region"
)

// WriteTo serializes the array: the pointer table's stream form
// (count-prefixed 12-byte records), then an 8-byte little-endian data
// length, then the raw data region bytes. With WithCompactOnSave the array
// is compacted first, which never changes contents, only output size.
// It returns the total number of bytes written.
func (a *Array) WriteTo(w io.Writer) (int64, error) {
	if a.closed {
		return 0, ErrClosed
	}
	if a.compactOnSave {
		if _, err := a.Compact(); err != nil {
			return 0, err
		}
	}
	n1, err := a.ptrs.WriteTo(w)
	if err != nil {
		return n1, err
	}
	n2, err := region.WriteTo(w, a.data)
	return n1 + n2, err
}

// ReadFrom replaces the array's contents with a stream produced by
// WriteTo, then re-validates every invariant and recomputes the
// fragmentation flag before the array becomes usable again.
//
// Any failure, including one detected during validation, leaves the array
// in an unspecified state; callers must treat it as unusable, not
// partially loaded.
func (a *Array) ReadFrom(r io.Reader) (int64, error) {
	if a.closed {
		return 0, ErrClosed
	}
	n1, err := a.ptrs.ReadFrom(r)
	if err != nil {
		return n1, err
	}
	n2, err := region.ReadFrom(r, a.data)
	if err != nil {
		return n1 + n2, err
	}
	if err := a.validate(); err != nil {
		return n1 + n2, fmt.Errorf("strarray: load rejected: %w", err)
	}
	return n1 + n2, nil
}
