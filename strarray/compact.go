package strarray

import (
	"fmt"

	"github.com/airbreather/reminiscence/region"
)

// Compact rewrites the data region so that every slot's bytes sit
// immediately after the previous slot's bytes, in index order, eliminating
// all gaps. It returns the packed length, trims the data region to it, and
// clears the fragmentation flag.
//
// Loaded data may contain pointers that share bytes; compaction
// materializes a separate copy per slot, so the packed length can
// legitimately exceed the previous region length.
//
// The rewrite is staged through a snapshot of the whole region because a
// later slot's source bytes can live where an earlier slot's copy lands.
// Compact is atomic: pointers are committed only after every byte copy has
// succeeded, and any failure restores the region from the snapshot and
// rolls back any pointers already rewritten.
func (a *Array) Compact() (int64, error) {
	if a.closed {
		return 0, ErrClosed
	}
	n := a.Len()

	old := make([]Pointer, n)
	offsets := make([]int64, n)
	var needed int64
	for i := 0; i < n; i++ {
		p, err := a.pointerAt(i)
		if err != nil {
			return 0, err
		}
		old[i] = p
		offsets[i] = needed
		needed += int64(p.Length)
	}

	scratch, err := region.NewMem(0)
	if err != nil {
		return 0, err
	}
	defer scratch.Close()
	if err := region.Copy(scratch, a.data); err != nil {
		return 0, fmt.Errorf("strarray: snapshot before compact: %w", err)
	}

	restore := func() {
		// Best effort: put the bytes (and length) back the way they were.
		_ = region.Copy(a.data, scratch)
	}

	if err := a.data.EnsureSize(needed); err != nil {
		return 0, fmt.Errorf("strarray: grow for compact: %w", err)
	}

	for i := 0; i < n; i++ {
		if old[i].Length == 0 {
			continue
		}
		src, err := scratch.Bytes(old[i].Offset, int64(old[i].Length))
		if err != nil {
			restore()
			return 0, fmt.Errorf("%w: slot %d: %v", ErrCorrupt, i, err)
		}
		dst, err := a.data.Bytes(offsets[i], int64(old[i].Length))
		if err != nil {
			restore()
			return 0, fmt.Errorf("strarray: compact slot %d: %w", i, err)
		}
		copy(dst, src)
	}

	for i := 0; i < n; i++ {
		if err := a.setPointerAt(i, Pointer{Offset: offsets[i], Length: old[i].Length}); err != nil {
			for j := 0; j < i; j++ {
				_ = a.setPointerAt(j, old[j])
			}
			restore()
			return 0, fmt.Errorf("strarray: commit compacted pointer %d: %w", i, err)
		}
	}

	if err := a.data.Resize(needed); err != nil {
		// The region is packed but untrimmed; contents stay consistent.
		return 0, fmt.Errorf("strarray: trim after compact: %w", err)
	}
	a.fragmented = false
	return needed, nil
}
