// Package region provides growable, byte-addressable storage regions.
//
// A Region is the raw backing store for the string array: a flat sequence
// of bytes that can be resized, read and written through bounds-checked
// views, and streamed to or from an io.Writer/io.Reader. Two
// implementations are provided: Mem, which lives on the Go heap, and File,
// which memory-maps a file so the region can grow past what the process
// heap should hold.
//
// Regions are not safe for concurrent use. Views returned by Bytes alias
// the underlying storage and are invalidated by any subsequent Resize or
// EnsureSize call.
package region

import (
	"errors"
	"fmt"
	"io"

	"github.com/airbreather/reminiscence/internal/buf"
)

var (
	// ErrClosed indicates an operation on a region that was already closed.
	ErrClosed = errors.New("region: closed")
	// ErrNegativeSize indicates a resize below zero was requested.
	ErrNegativeSize = errors.New("region: negative size")
)

// Region is a growable, byte-addressable array of bytes.
type Region interface {
	// Len returns the current logical length in bytes.
	Len() int64

	// Bytes returns a mutable view of the range [off, off+n). The view
	// aliases the region's storage and is invalidated by Resize or
	// EnsureSize.
	Bytes(off, n int64) ([]byte, error)

	// Resize sets the logical length to exactly size. Growing zero-fills
	// the new tail; shrinking drops trailing bytes.
	Resize(size int64) error

	// EnsureSize grows the region to at least size. It never shrinks and
	// is a no-op when the region is already large enough.
	EnsureSize(size int64) error

	// Close releases the region's resources. Closing twice is a no-op.
	Close() error
}

// Copy resizes dst to match src and copies src's full contents into it.
func Copy(dst, src Region) error {
	n := src.Len()
	if err := dst.Resize(n); err != nil {
		return fmt.Errorf("region: resize for copy: %w", err)
	}
	if n == 0 {
		return nil
	}
	from, err := src.Bytes(0, n)
	if err != nil {
		return fmt.Errorf("region: copy source: %w", err)
	}
	to, err := dst.Bytes(0, n)
	if err != nil {
		return fmt.Errorf("region: copy destination: %w", err)
	}
	copy(to, from)
	return nil
}

// WriteTo streams src to w as an 8-byte little-endian length followed by
// the raw region bytes. It returns the total number of bytes written.
func WriteTo(w io.Writer, src Region) (int64, error) {
	n := src.Len()
	var hdr [8]byte
	buf.PutI64(hdr[:], 0, n)
	if _, err := w.Write(hdr[:]); err != nil {
		return 0, fmt.Errorf("region: write length: %w", err)
	}
	written := int64(len(hdr))
	if n == 0 {
		return written, nil
	}
	data, err := src.Bytes(0, n)
	if err != nil {
		return written, err
	}
	m, err := w.Write(data)
	written += int64(m)
	if err != nil {
		return written, fmt.Errorf("region: write bytes: %w", err)
	}
	return written, nil
}

// ReadFrom reads the stream form produced by WriteTo, resizing dst to the
// stored length. It returns the total number of bytes consumed.
func ReadFrom(r io.Reader, dst Region) (int64, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("region: read length: %w", err)
	}
	read := int64(len(hdr))
	n := buf.ReadI64(hdr[:], 0)
	if n < 0 {
		return read, fmt.Errorf("region: negative stored length %d", n)
	}
	m, err := fill(r, dst, n)
	read += m
	if err != nil {
		return read, fmt.Errorf("region: read bytes: %w", err)
	}
	return read, nil
}

// fillChunk is the initial step when growing a region to an untrusted
// declared size.
const fillChunk = 1 << 20

// fill resizes dst to n bytes while reading its contents from r, growing
// in steps that never run ahead of the bytes actually received. The length
// prefix of a stream is untrusted input: a stream declaring a huge body
// and then ending short must fail with io.ErrUnexpectedEOF after the real
// bytes are consumed, not allocate the declared size up front.
func fill(r io.Reader, dst Region, n int64) (int64, error) {
	var filled int64
	for filled < n {
		step := filled
		if step < fillChunk {
			step = fillChunk
		}
		if step > n-filled {
			step = n - filled
		}
		if err := dst.Resize(filled + step); err != nil {
			return filled, err
		}
		view, err := dst.Bytes(filled, step)
		if err != nil {
			return filled, err
		}
		m, err := io.ReadFull(r, view)
		filled += int64(m)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return filled, err
		}
	}
	if filled == 0 {
		return 0, dst.Resize(0)
	}
	return filled, nil
}
