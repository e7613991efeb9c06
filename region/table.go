package region

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/airbreather/reminiscence/internal/buf"
)

// RecordTable presents a Region as a resizable array of fixed-size records.
// It owns the region it wraps and closes it when the table is closed.
type RecordTable struct {
	r       Region
	recSize int64
}

// NewRecordTable wraps r as a table of recordSize-byte records. The
// region's current length must be a whole number of records.
func NewRecordTable(r Region, recordSize int) (*RecordTable, error) {
	if recordSize <= 0 {
		return nil, fmt.Errorf("region: invalid record size %d", recordSize)
	}
	if r.Len()%int64(recordSize) != 0 {
		return nil, fmt.Errorf("region: length %d is not a multiple of record size %d", r.Len(), recordSize)
	}
	return &RecordTable{r: r, recSize: int64(recordSize)}, nil
}

// Count returns the number of records in the table.
func (t *RecordTable) Count() int64 {
	return t.r.Len() / t.recSize
}

// RecordSize returns the fixed size of each record in bytes.
func (t *RecordTable) RecordSize() int {
	return int(t.recSize)
}

// Record returns a mutable view of record i. The view aliases the region's
// storage and is invalidated by Resize.
func (t *RecordTable) Record(i int64) ([]byte, error) {
	if i < 0 || i >= t.Count() {
		return nil, fmt.Errorf("region: record %d outside table of %d", i, t.Count())
	}
	return t.r.Bytes(i*t.recSize, t.recSize)
}

// Resize sets the table to exactly count records. Growing appends
// zero-valued records; shrinking drops trailing records.
func (t *RecordTable) Resize(count int64) error {
	size, err := buf.CheckRecordRange(math.MaxInt64, 0, count, t.recSize)
	if err != nil {
		return fmt.Errorf("region: resize table: %w", err)
	}
	return t.r.Resize(size)
}

// WriteTo streams the table as an 8-byte little-endian record count
// followed by the raw records. It returns the total bytes written.
func (t *RecordTable) WriteTo(w io.Writer) (int64, error) {
	var hdr [8]byte
	buf.PutI64(hdr[:], 0, t.Count())
	if _, err := w.Write(hdr[:]); err != nil {
		return 0, fmt.Errorf("region: write record count: %w", err)
	}
	written := int64(len(hdr))
	n := t.r.Len()
	if n == 0 {
		return written, nil
	}
	data, err := t.r.Bytes(0, n)
	if err != nil {
		return written, err
	}
	m, err := w.Write(data)
	written += int64(m)
	if err != nil {
		return written, fmt.Errorf("region: write records: %w", err)
	}
	return written, nil
}

// ReadFrom reads the stream form produced by WriteTo, resizing the table
// to the stored record count. It returns the total bytes consumed.
func (t *RecordTable) ReadFrom(rd io.Reader) (int64, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(rd, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("region: read record count: %w", err)
	}
	read := int64(len(hdr))
	count := buf.ReadI64(hdr[:], 0)
	if count < 0 {
		return read, fmt.Errorf("region: negative record count %d", count)
	}
	size, err := buf.CheckRecordRange(math.MaxInt64, 0, count, t.recSize)
	if err != nil {
		return read, fmt.Errorf("region: read record count: %w", err)
	}
	m, err := fill(rd, t.r, size)
	read += m
	if err != nil {
		return read, fmt.Errorf("region: read records: %w", err)
	}
	return read, nil
}

// Close closes the underlying region. Safe to call multiple times.
func (t *RecordTable) Close() error {
	return t.r.Close()
}
