// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

//go:build !linux

package mmapio

import (
	"fmt"
	"os"
)

// mapFile on non-Linux platforms falls back to a plain in-memory buffer
// read from (and, on Close, written back to) the file. It is correct but
// does not give the bounded-peak-memory property of spec §5/§9 — see
// SPEC_FULL.md §5.
func mapFile(f *os.File, size int, writable bool) (*Region, error) {
	data := make([]byte, size)
	if size > 0 {
		if _, err := f.ReadAt(data, 0); err != nil {
			return nil, fmt.Errorf("mmapio: read %s: %w", f.Name(), err)
		}
	}
	path := f.Name()
	return &Region{
		data:     data,
		writable: writable,
		closer: func() error {
			if !writable {
				return nil
			}
			return writeBack(path, data)
		},
	}, nil
}

func flush(data []byte) error {
	return nil
}

func writeBack(path string, data []byte) error {
	out, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("mmapio: reopen %s: %w", path, err)
	}
	defer out.Close()
	if _, err := out.WriteAt(data, 0); err != nil {
		return fmt.Errorf("mmapio: write %s: %w", path, err)
	}
	return out.Sync()
}
