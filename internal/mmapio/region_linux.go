// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

//go:build linux

package mmapio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int, writable bool) (*Region, error) {
	if size == 0 {
		// unix.Mmap rejects zero-length mappings; a zero-length file
		// still needs a usable Region.
		return &Region{data: []byte{}, writable: writable, closer: func() error { return nil }}, nil
	}
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmapio: mmap: %w", err)
	}
	return &Region{
		data:     data,
		writable: writable,
		closer:   func() error { return unix.Munmap(data) },
	}, nil
}

func flush(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := unix.Msync(data, unix.MS_SYNC); err != nil {
		return fmt.Errorf("mmapio: msync: %w", err)
	}
	return nil
}
