// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package testcircuit hand-builds the sparse QAP for a tiny fixed circuit —
// out = x³ + x + 5 — used by phase2's tests in place of a real circuit
// compiler (out of scope per spec.md §1). Three R1CS constraints:
//
//	sym1 = x * x
//	y    = sym1 * x
//	out  = y + x + 5
//
// Variable layout: 0="one" (the constant wire), 1=out (public), 2=x,
// 3=sym1, 4=y (witness). NumPublic=2, NumWitness=3.
package testcircuit

import (
	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/phase2"
)

// Build returns the cubic circuit's QAP over e's scalar field.
func Build(e curve.Engine) phase2.QAP {
	one := e.ScalarFromUint64(1)
	five := e.ScalarFromUint64(5)

	a := []map[int]curve.Scalar{
		{2: one},             // x
		{3: one},             // sym1
		{4: one, 2: one, 0: five}, // y + x + 5
	}
	b := []map[int]curve.Scalar{
		{2: one}, // x
		{2: one}, // x
		{0: one}, // one
	}
	c := []map[int]curve.Scalar{
		{3: one}, // sym1
		{4: one}, // y
		{1: one}, // out
	}

	return phase2.QAP{A: a, B: b, C: c, NumPublic: 2, NumWitness: 3}
}
