// Package snapshot persists string arrays to self-describing files: a
// small header with magic, version, flags and a CRC32 of the payload,
// followed by the array's stream form, optionally zstd-compressed.
//
// CRC32 (IEEE) detects accidental corruption only; it is not a
// cryptographic integrity check.
package snapshot

import "errors"

const (
	// Magic identifies a reminiscence snapshot file: the little-endian
	// header write lays it down as the literal bytes "RMSA".
	Magic = uint32(0x41534D52)
	// Version is the current snapshot format version.
	Version = uint32(1)

	// FlagZstd marks a zstd-compressed payload.
	FlagZstd = uint32(1 << 0)

	// headerSize is magic + version + flags + checksum + payload length.
	headerSize = 4 + 4 + 4 + 4 + 8
)

var (
	// ErrBadMagic indicates the file does not start with the snapshot magic.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrBadVersion indicates an unsupported format version.
	ErrBadVersion = errors.New("snapshot: unsupported version")
	// ErrChecksum indicates the payload does not match its stored CRC32.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
	// ErrTruncated indicates the file is shorter than its header declares.
	ErrTruncated = errors.New("snapshot: truncated file")
)
