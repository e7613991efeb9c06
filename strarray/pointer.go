package strarray

import "github.com/airbreather/reminiscence/internal/buf"

// PointerSize is the persisted size of one pointer record: an int64 byte
// offset followed by an int32 byte length, little-endian, no padding.
const PointerSize = 12

// Pointer locates one string's encoded bytes inside the data region. It is
// never persisted on its own; it always lives in one pointer-table slot.
type Pointer struct {
	Offset int64
	Length int32
}

// end returns the first byte past the pointed-to range.
func (p Pointer) end() int64 {
	return p.Offset + int64(p.Length)
}

// overlaps reports whether two non-empty ranges share any byte.
func (p Pointer) overlaps(q Pointer) bool {
	if p.Length == 0 || q.Length == 0 {
		return false
	}
	return p.Offset < q.end() && q.Offset < p.end()
}

func decodePointer(rec []byte) Pointer {
	return Pointer{
		Offset: buf.ReadI64(rec, 0),
		Length: buf.ReadI32(rec, 8),
	}
}

func encodePointer(rec []byte, p Pointer) {
	buf.PutI64(rec, 0, p.Offset)
	buf.PutI32(rec, 8, p.Length)
}
