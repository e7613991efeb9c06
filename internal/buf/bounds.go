package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int64.
func AddOverflowSafe(a, b int64) (int64, bool) {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return 0, false
	case b < 0 && a < math.MinInt64-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies a and b, returning ok = false when the result would overflow int64.
// This is essential for count * recordSize calculations in record-table access.
func MulOverflowSafe(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > 0 && b > 0 {
		if a > math.MaxInt64/b {
			return 0, false
		}
	}
	if a < 0 && b < 0 {
		if a < math.MaxInt64/b {
			return 0, false
		}
	}
	if a > 0 && b < 0 {
		if b < math.MinInt64/a {
			return 0, false
		}
	}
	if a < 0 && b > 0 {
		if a < math.MinInt64/b {
			return 0, false
		}
	}
	return a * b, true
}

// CheckRange validates that the half-open range [off, off+n) lies within a
// buffer of limit bytes. Returns the end offset if valid, or an error
// describing the specific failure (negative field, overflow or out of bounds).
func CheckRange(limit, off, n int64) (int64, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset: %d", off)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative length: %d", n)
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + length=%d", off, n)
	}
	if end > limit {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, limit)
	}
	return end, nil
}

// CheckRecordRange validates that count records of recordSize bytes fit in a
// buffer of limit bytes starting at offset. Returns the end offset if valid.
//
// This is the recommended way to validate a record table before iterating:
//
//	endOff, err := buf.CheckRecordRange(r.Len(), off, count, recordSize)
//	if err != nil {
//	    return fmt.Errorf("table: %w", err)
//	}
func CheckRecordRange(limit, off, count, recordSize int64) (int64, error) {
	if count < 0 {
		return 0, fmt.Errorf("negative count: %d", count)
	}
	if recordSize <= 0 {
		return 0, fmt.Errorf("invalid record size: %d", recordSize)
	}
	total, ok := MulOverflowSafe(count, recordSize)
	if !ok {
		return 0, fmt.Errorf("overflow: count=%d * recordSize=%d", count, recordSize)
	}
	return CheckRange(limit, off, total)
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int64) ([]byte, bool) {
	if _, err := CheckRange(int64(len(b)), off, n); err != nil {
		return nil, false
	}
	return b[off : off+n], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int64) bool {
	_, ok := Slice(b, off, n)
	return ok
}
