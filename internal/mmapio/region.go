// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package mmapio maps a transcript file into memory so the batch engine can
// address it as a byte range instead of holding decoded points in memory for
// the whole accumulator. It plays the role the `memmap` crate plays in the
// original Rust ceremony (powersoftau/src/cli_common/contribute.rs): the
// challenge is mapped read-only, the response is mapped read-write and
// flushed before the writer hands it off.
package mmapio

import (
	"fmt"
	"os"
)

// Region is a memory-mapped view of a file. ReadOnly regions may be shared
// across goroutines doing disjoint reads; a ReadWrite region is owned by
// exactly one writer for its lifetime, matching the single-writer model of
// spec §5.
type Region struct {
	data     []byte
	writable bool
	closer   func() error
}

// Bytes returns the mapped region. Callers must not retain slices of it
// past Close.
func (r *Region) Bytes() []byte { return r.data }

// Len reports the mapped length in bytes.
func (r *Region) Len() int { return len(r.data) }

// Slice returns a sub-slice of the mapped bytes, panicking on an
// out-of-range request the same way a plain slice expression would.
func (r *Region) Slice(off, n int) []byte {
	return r.data[off : off+n]
}

// Flush pushes writable pages back to the backing file; it is the core's
// fsync-equivalent boundary (spec §5: "the writer must fsync before
// publishing").
func (r *Region) Flush() error {
	if !r.writable {
		return nil
	}
	return flush(r.data)
}

// Close unmaps the region. Flush should be called first for writable
// regions.
func (r *Region) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// OpenReadOnly maps path read-only for the full file size.
func OpenReadOnly(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmapio: open %s: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("mmapio: stat %s: %w", path, err)
	}
	return mapFile(f, int(info.Size()), false)
}

// Wrap adapts an in-memory buffer to the Region interface, for callers that
// need the batch engine's section API (spec.md §4.2) over a value that was
// never written to disk — Phase-2's chunked MPCParameters, or tests. It
// does not own a file descriptor; Close and Flush are no-ops.
func Wrap(data []byte) *Region {
	return &Region{data: data, writable: false, closer: func() error { return nil }}
}

// CreateReadWrite creates (or truncates) path to size bytes and maps it
// read-write. size is known ahead of time because the accumulator layout
// (spec §6) is a pure function of (power, mode).
func CreateReadWrite(path string, size int) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("mmapio: create %s: %w", path, err)
	}
	defer f.Close()
	if err := f.Truncate(int64(size)); err != nil {
		return nil, fmt.Errorf("mmapio: truncate %s: %w", path, err)
	}
	return mapFile(f, size, true)
}
