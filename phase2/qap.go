// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package phase2 implements the Groth16 parameter specialization (spec.md
// §4.6): turning a circuit's QAP plus the bridged Phase-1 output into
// MPCParameters, the δ-contribution transform, its verifier, and the
// chunked split/combine step. Grounded on original_source/phase2/src/
// parameters.rs (MPCParameters, Contribute, verify) and
// original_source/phase2/src/circuit_io.rs (KeypairAssembly's sparse
// at/bt/ct matrices).
package phase2

import (
	"github.com/logical-mechanism/tau-mpc/curve"
)

// QAP is the circuit-to-QAP interface boundary spec.md §1 calls out as
// explicitly out of core scope: a sparse R1CS-as-QAP representation, one
// map per constraint from variable index to its coefficient in that
// constraint's row of A, B, or C. Variable indexing follows the Groth16
// convention: index 0 is the constant "one" wire, 1..NumPublic-1 are the
// remaining public inputs, NumPublic..NumPublic+NumWitness-1 are witness
// (auxiliary) variables.
type QAP struct {
	A, B, C    []map[int]curve.Scalar
	NumPublic  int
	NumWitness int
}

// NumVars is the total variable count (public + witness).
func (q QAP) NumVars() int { return q.NumPublic + q.NumWitness }

// NumConstraints is the row count of the QAP; it must not exceed the
// bridge's domain size M.
func (q QAP) NumConstraints() int { return len(q.A) }

func evalG1(e curve.Engine, coeffs []curve.G1Point, matrix []map[int]curve.Scalar, varIndex int) curve.G1Point {
	acc := e.G1Identity()
	for k, row := range matrix {
		if s, ok := row[varIndex]; ok {
			acc = e.G1Add(acc, e.G1ScalarMult(coeffs[k], s))
		}
	}
	return acc
}

func evalG2(e curve.Engine, coeffs []curve.G2Point, matrix []map[int]curve.Scalar, varIndex int) curve.G2Point {
	acc := e.G2Identity()
	for k, row := range matrix {
		if s, ok := row[varIndex]; ok {
			acc = e.G2Add(acc, e.G2ScalarMult(coeffs[k], s))
		}
	}
	return acc
}

// evalMixed computes K_j = β·A_j(τ) + α·B_j(τ) + C_j(τ) for variable j,
// evaluated in the exponent. It reuses the bridge's already-scaled
// Lagrange-basis vectors (AlphaG1Coeffs = α·L_k(τ)·g1, BetaG1Coeffs =
// β·L_k(τ)·g1) instead of computing α and β into the formula itself:
//
//	Σ_k at[k,j]·β·L_k(τ)·g1  =  Σ_k at[k,j] · BetaG1Coeffs[k]
//	Σ_k bt[k,j]·α·L_k(τ)·g1  =  Σ_k bt[k,j] · AlphaG1Coeffs[k]
//	Σ_k ct[k,j]·L_k(τ)·g1    =  Σ_k ct[k,j] · TauG1Coeffs[k]
//
// This is both γ_abc_g1's (public j) and l_query's (witness j) formula.
func evalMixed(e curve.Engine, qap QAP, tauCoeffs, alphaCoeffs, betaCoeffs []curve.G1Point, varIndex int) curve.G1Point {
	acc := e.G1Identity()
	for k, row := range qap.A {
		if s, ok := row[varIndex]; ok {
			acc = e.G1Add(acc, e.G1ScalarMult(betaCoeffs[k], s))
		}
	}
	for k, row := range qap.B {
		if s, ok := row[varIndex]; ok {
			acc = e.G1Add(acc, e.G1ScalarMult(alphaCoeffs[k], s))
		}
	}
	for k, row := range qap.C {
		if s, ok := row[varIndex]; ok {
			acc = e.G1Add(acc, e.G1ScalarMult(tauCoeffs[k], s))
		}
	}
	return acc
}
