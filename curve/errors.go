// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package curve

import "github.com/logical-mechanism/tau-mpc/errkind"

// classifyDecodeErr maps gnark-crypto's own SetBytes failures to the
// kind a caller would want to branch on. gnark-crypto does not export a
// typed error for "wrong length" vs "not on curve", so the distinction is
// made here on the one signal available before calling SetBytes: the
// buffer length.
func classifyDecodeErr(buf []byte, wantSizes [2]int, err error) *errkind.Error {
	if len(buf) != wantSizes[0] && len(buf) != wantSizes[1] {
		return errkind.Wrap(errkind.LengthMismatch, err)
	}
	return errkind.Wrap(errkind.NotOnCurve, err)
}

func subgroupErr() *errkind.Error {
	return errkind.New(errkind.NotInSubgroup)
}
