package strarray

import "errors"

var (
	// ErrIndexOutOfRange indicates a slot index below zero or at or past Len.
	ErrIndexOutOfRange = errors.New("strarray: index out of range")
	// ErrInvalidUTF8 indicates a byte range that does not decode as UTF-8.
	ErrInvalidUTF8 = errors.New("strarray: invalid utf-8 data")
	// ErrCorrupt indicates a pointer whose range falls outside the data region.
	ErrCorrupt = errors.New("strarray: corrupt pointer table")
	// ErrTooLarge indicates a string longer than a pointer record can address.
	ErrTooLarge = errors.New("strarray: string exceeds maximum length")
	// ErrClosed indicates an operation on an array that was already closed.
	ErrClosed = errors.New("strarray: closed")
)
