package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/airbreather/reminiscence/strarray"
)

// SaveOptions controls how a snapshot is written.
type SaveOptions struct {
	// Compress stores the payload zstd-compressed.
	Compress bool
	// CompactFirst compacts the array before serializing. This mutates
	// the array (it packs the live data region) but never changes its
	// logical contents.
	CompactFirst bool
}

type header struct {
	Magic      uint32
	Version    uint32
	Flags      uint32
	Checksum   uint32
	PayloadLen int64
}

// Save writes a snapshot of a to path. The file is written to a temporary
// sibling first and renamed into place, so a crash mid-save never leaves a
// half-written snapshot at path.
func Save(path string, a *strarray.Array, opts SaveOptions) error {
	if opts.CompactFirst {
		if _, err := a.Compact(); err != nil {
			return fmt.Errorf("snapshot: compact before save: %w", err)
		}
	}

	var payload bytes.Buffer
	if _, err := a.WriteTo(&payload); err != nil {
		return fmt.Errorf("snapshot: serialize: %w", err)
	}
	body := payload.Bytes()

	var flags uint32
	if opts.Compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("snapshot: compressor: %w", err)
		}
		body = enc.EncodeAll(body, nil)
		_ = enc.Close()
		flags |= FlagZstd
	}

	hdr := header{
		Magic:      Magic,
		Version:    Version,
		Flags:      flags,
		Checksum:   crc32.ChecksumIEEE(body),
		PayloadLen: int64(len(body)),
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("snapshot: create temp: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := binary.Write(tmp, binary.LittleEndian, hdr); err != nil {
		cleanup()
		return fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := tmp.Write(body); err != nil {
		cleanup()
		return fmt.Errorf("snapshot: write payload: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("snapshot: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("snapshot: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("snapshot: publish: %w", err)
	}
	return nil
}

// Load reads a snapshot written by Save into a fresh heap-backed array.
// The header, checksum and every array invariant are verified before the
// array is returned; any failure aborts the whole load.
func Load(path string, opts ...strarray.Option) (*strarray.Array, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrTruncated, len(raw))
	}

	var hdr header
	if err := binary.Read(bytes.NewReader(raw[:headerSize]), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}
	if hdr.Magic != Magic {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrBadMagic, hdr.Magic)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("%w: got %d", ErrBadVersion, hdr.Version)
	}
	body := raw[headerSize:]
	if hdr.PayloadLen < 0 || int64(len(body)) != hdr.PayloadLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, header declares %d", ErrTruncated, len(body), hdr.PayloadLen)
	}
	if sum := crc32.ChecksumIEEE(body); sum != hdr.Checksum {
		return nil, fmt.Errorf("%w: computed 0x%08x, stored 0x%08x", ErrChecksum, sum, hdr.Checksum)
	}

	if hdr.Flags&FlagZstd != 0 {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("snapshot: decompressor: %w", err)
		}
		body, err = dec.DecodeAll(body, nil)
		dec.Close()
		if err != nil {
			return nil, fmt.Errorf("snapshot: decompress: %w", err)
		}
	}

	a, err := strarray.NewInMemory(0, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := a.ReadFrom(bytes.NewReader(body)); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}
