package strarray

import (
	"fmt"
	"unicode/utf8"

	"github.com/airbreather/reminiscence/internal/buf"
)

// validate checks every pointer against the data region and recomputes the
// fragmentation flag. It runs at construction and after every load: a
// single out-of-bounds pointer or invalid UTF-8 range rejects the whole
// array, even for slots that are never subsequently read.
func (a *Array) validate() error {
	dataLen := a.data.Len()
	n := a.ptrs.Count()

	// Each pointer is compared against the end of its predecessor to
	// recompute fragmentation; slot 0 compares against an implicit
	// zero-valued pointer, so a non-zero first offset is already a gap.
	prevEnd := int64(0)
	fragmented := false

	for i := int64(0); i < n; i++ {
		p, err := a.pointerAt(int(i))
		if err != nil {
			return err
		}
		if p.Offset < 0 || p.Length < 0 {
			return fmt.Errorf("%w: slot %d has negative fields {offset %d, length %d}", ErrCorrupt, i, p.Offset, p.Length)
		}
		if _, err := buf.CheckRange(dataLen, p.Offset, int64(p.Length)); err != nil {
			return fmt.Errorf("%w: slot %d: %v", ErrCorrupt, i, err)
		}
		if p.Length > 0 {
			view, err := a.data.Bytes(p.Offset, int64(p.Length))
			if err != nil {
				return fmt.Errorf("%w: slot %d: %v", ErrCorrupt, i, err)
			}
			if !utf8.Valid(view) {
				return fmt.Errorf("%w: slot %d", ErrInvalidUTF8, i)
			}
		}
		if p.Offset != prevEnd {
			fragmented = true
		}
		prevEnd = p.end()
	}

	a.fragmented = fragmented
	return nil
}
