package strarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airbreather/reminiscence/region"
)

// buildArray constructs an array over heap regions with an explicit pointer
// layout, the way loaded data would look.
func buildArray(t *testing.T, ptrs []Pointer, data string) *Array {
	t.Helper()
	idx := make([]byte, len(ptrs)*PointerSize)
	for i, p := range ptrs {
		encodePointer(idx[i*PointerSize:], p)
	}
	a, err := New(region.MemOf(idx), region.MemOf([]byte(data)))
	require.NoError(t, err)
	return a
}

func mustPointer(t *testing.T, a *Array, i int) Pointer {
	t.Helper()
	p, err := a.pointerAt(i)
	require.NoError(t, err)
	return p
}

func TestNewInMemory(t *testing.T) {
	a, err := NewInMemory(3)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 3, a.Len())
	assert.False(t, a.Fragmented())
	for i := 0; i < 3; i++ {
		got, err := a.Get(i)
		require.NoError(t, err)
		assert.Equal(t, "", got)
	}

	_, err = NewInMemory(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestGetSetBasic(t *testing.T) {
	a, err := NewInMemory(2)
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Set(0, "hello"))
	require.NoError(t, a.Set(1, "wörld"))

	got, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	got, err = a.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "wörld", got)
}

func TestIndexErrors(t *testing.T) {
	a, err := NewInMemory(2)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Get(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = a.Get(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, a.Set(-1, "x"), ErrIndexOutOfRange)
	assert.ErrorIs(t, a.Set(2, "x"), ErrIndexOutOfRange)
}

func TestSetRejectsInvalidUTF8(t *testing.T) {
	a, err := NewInMemory(1)
	require.NoError(t, err)
	defer a.Close()

	assert.ErrorIs(t, a.Set(0, string([]byte{0xff, 0xfe})), ErrInvalidUTF8)
	got, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "", got, "failed Set must not mutate")
}

func TestSetEqualLengthInPlace(t *testing.T) {
	a := buildArray(t, []Pointer{{0, 2}, {2, 2}}, "abcd")
	defer a.Close()

	require.NoError(t, a.Set(0, "xy"))
	assert.Equal(t, Pointer{0, 2}, mustPointer(t, a, 0), "pointer unchanged on equal-length set")
	assert.False(t, a.Fragmented())

	got, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "xy", got)
	got, err = a.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "cd", got)
}

func TestSetShorterShrinksInPlace(t *testing.T) {
	a := buildArray(t, []Pointer{{0, 2}, {2, 2}}, "abcd")
	defer a.Close()
	require.False(t, a.Fragmented())

	require.NoError(t, a.Set(1, "z"))
	assert.Equal(t, Pointer{2, 1}, mustPointer(t, a, 1))
	assert.True(t, a.Fragmented(), "vacated tail becomes a gap")

	got, err := a.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "z", got)
}

func TestSetLongerReclaimsLastWriter(t *testing.T) {
	a := buildArray(t, []Pointer{{0, 2}, {2, 2}}, "abcd")
	defer a.Close()

	// Index 1 owns the tail and is not overlapped, so its old space is
	// reclaimed before the longer value is appended.
	require.NoError(t, a.Set(1, "xyz"))
	assert.Equal(t, Pointer{2, 3}, mustPointer(t, a, 1))
	assert.False(t, a.Fragmented())
	assert.EqualValues(t, 5, a.data.Len())

	got, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "ab", got)
	got, err = a.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "xyz", got)
}

func TestSetLongerNoReclaimForInnerSlot(t *testing.T) {
	a := buildArray(t, []Pointer{{0, 2}, {2, 2}}, "abcd")
	defer a.Close()

	// Index 0 does not own the tail; its bytes are abandoned and the new
	// value lands past index 1's range.
	require.NoError(t, a.Set(0, "long"))
	assert.Equal(t, Pointer{4, 4}, mustPointer(t, a, 0))
	// Slot 0 has no previous slot, so the adjacency check never fires for
	// it; the flag is a hint and may miss this gap.
	assert.False(t, a.Fragmented())

	got, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "long", got)
	got, err = a.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "cd", got)
}

func TestSetLongerRepeatedTailExtension(t *testing.T) {
	a, err := NewInMemory(1)
	require.NoError(t, err)
	defer a.Close()

	// Repeatedly extending the only (hence last) string must reuse its
	// space instead of growing the region without bound.
	value := ""
	for i := 0; i < 64; i++ {
		value += "a"
		require.NoError(t, a.Set(0, value))
	}
	assert.Equal(t, Pointer{0, 64}, mustPointer(t, a, 0))
	assert.EqualValues(t, 64, a.data.Len())
	assert.False(t, a.Fragmented())
}

func TestSetLongerOverlappedTailNotReclaimed(t *testing.T) {
	// Loaded data where slot 1 aliases the tail half of slot 0. The tail
	// owner is slot 0; rewriting it must not reclaim the shared bytes.
	a := buildArray(t, []Pointer{{0, 4}, {2, 2}}, "abcd")
	defer a.Close()
	require.True(t, a.Fragmented(), "overlapping load is not tightly packed")

	require.NoError(t, a.Set(0, "abcde"))
	got, err := a.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "cd", got, "shared bytes survive via compaction copies")
	got, err = a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "abcde", got)
}

func TestSetEmptyValue(t *testing.T) {
	a := buildArray(t, []Pointer{{0, 2}, {2, 2}}, "abcd")
	defer a.Close()

	require.NoError(t, a.Set(0, ""))
	assert.Equal(t, Pointer{0, 0}, mustPointer(t, a, 0))
	got, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	// Setting an already-empty slot to empty is a no-op.
	before := a.Fragmented()
	require.NoError(t, a.Set(0, ""))
	assert.Equal(t, before, a.Fragmented())
}

func TestResize(t *testing.T) {
	a, err := NewInMemory(1)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Set(0, "keep"))

	require.NoError(t, a.Resize(3))
	assert.Equal(t, 3, a.Len())
	got, err := a.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "keep", got)
	got, err = a.Get(2)
	require.NoError(t, err)
	assert.Equal(t, "", got, "grown slots read as empty strings")

	require.NoError(t, a.Set(2, "tail"))
	require.NoError(t, a.Resize(1))
	assert.Equal(t, 1, a.Len())
	assert.True(t, a.Fragmented(), "dropped bytes are unreclaimed garbage")
	_, err = a.Get(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	assert.ErrorIs(t, a.Resize(-1), ErrIndexOutOfRange)
}

func TestResizeShrinkEmptySlotsKeepsFlag(t *testing.T) {
	a, err := NewInMemory(3)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Set(0, "x"))

	require.NoError(t, a.Resize(1))
	assert.False(t, a.Fragmented(), "dropping empty slots leaves no garbage")
}

func TestCloseIdempotent(t *testing.T) {
	a, err := NewInMemory(1)
	require.NoError(t, err)
	require.NoError(t, a.Close())
	require.NoError(t, a.Close())

	_, err = a.Get(0)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, a.Set(0, "x"), ErrClosed)
	assert.ErrorIs(t, a.Resize(2), ErrClosed)
	_, err = a.Compact()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestNewRejectsMalformedInput(t *testing.T) {
	// Misaligned pointer region.
	_, err := New(region.MemOf(make([]byte, 13)), region.MemOf(nil))
	assert.Error(t, err)

	// Out-of-bounds pointer.
	idx := make([]byte, PointerSize)
	encodePointer(idx, Pointer{Offset: 0, Length: 4})
	_, err = New(region.MemOf(idx), region.MemOf([]byte("ab")))
	assert.ErrorIs(t, err, ErrCorrupt)

	// Negative offset.
	encodePointer(idx, Pointer{Offset: -1, Length: 1})
	_, err = New(region.MemOf(idx), region.MemOf([]byte("ab")))
	assert.ErrorIs(t, err, ErrCorrupt)

	// Invalid UTF-8, even though the slot is never read.
	encodePointer(idx, Pointer{Offset: 0, Length: 2})
	_, err = New(region.MemOf(idx), region.MemOf([]byte{0xff, 0xfe}))
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestNewRecomputesFragmentation(t *testing.T) {
	// Non-zero first offset counts as a gap against the implicit
	// zero-valued predecessor.
	a := buildArray(t, []Pointer{{1, 2}}, "Xab")
	defer a.Close()
	assert.True(t, a.Fragmented())

	b := buildArray(t, []Pointer{{0, 2}, {2, 1}}, "abc")
	defer b.Close()
	assert.False(t, b.Fragmented())
}
