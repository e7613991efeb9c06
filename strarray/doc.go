// Package strarray implements a mutable array of strings packed into a
// growable byte region, so that very large string collections can live in
// disk-backed (memory-mapped) storage instead of the Go heap.
//
// An Array is composed of two regions it owns exclusively: a pointer table
// of fixed 12-byte (offset, length) records, one per logical slot, and a
// data region holding the UTF-8 bytes those records address. Get and Set
// behave like indexed access on a normal []string; replacing a string with
// a longer one appends the new bytes at the current tail of the data region
// and leaves the old bytes as garbage until Compact rewrites the region in
// index order.
//
// Frozen is a read-only variant laid out in a single buffer, produced by
// Freeze and opened with OpenFrozen.
//
// Neither type is safe for concurrent use; callers must serialize access
// to an instance.
package strarray
