// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package phase2

import (
	"golang.org/x/crypto/blake2b"

	"github.com/logical-mechanism/tau-mpc/bridge"
	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/errkind"
	"github.com/logical-mechanism/tau-mpc/keypair"
)

// MPCParameters is the Groth16 parameter set under construction (spec.md
// §3/§4.6). Unlike phase1.Accumulator, these vectors are sized by
// constraint/variable count rather than domain size and are kept as plain
// Go slices: a real circuit's query vectors are orders of magnitude smaller
// than the Powers-of-Tau vectors they were evaluated from, so there is no
// analogous "never materialize in element form" invariant here.
type MPCParameters struct {
	Engine curve.Engine

	AlphaG1 curve.G1Point
	BetaG1  curve.G1Point
	BetaG2  curve.G2Point
	GammaG2 curve.G2Point
	DeltaG1 curve.G1Point
	DeltaG2 curve.G2Point

	AQuery    []curve.G1Point // length NumVars
	BG1Query  []curve.G1Point // length NumVars
	BG2Query  []curve.G2Point // length NumVars
	GammaAbcG1 []curve.G1Point // length NumPublic
	HQuery    []curve.G1Point // length DomainSize-1
	LQuery    []curve.G1Point // length NumWitness

	// CsHash is a canonical Blake2b-512 digest of the fixed fields above
	// (everything but Contributions) — see DESIGN.md's resolution of
	// spec.md §9's cs_hash Open Question: a canonical hash of the
	// constraint system's evaluated form, not a placeholder zero digest,
	// so two independent Initialize() calls over the same circuit and
	// bridge output agree on cs_hash without needing a separate circuit
	// serialization format.
	CsHash [64]byte

	Contributions []keypair.Phase2PublicKey
}

// Initialize runs spec.md §4.6's "Initialize": evaluate the QAP's sparse
// matrices against the bridge's Lagrange-basis vectors to build every Groth16
// query vector, with δ=γ=1 (so δ_g1=g1, δ_g2=g2, γ_g2=g2) before any
// participant has contributed. Grounded on original_source/phase2/src/
// parameters.rs's `MPCParameters::new`.
func Initialize(e curve.Engine, qap QAP, params *bridge.Groth16Params) (*MPCParameters, error) {
	if qap.NumConstraints() > params.DomainSize {
		return nil, errkind.New(errkind.DomainTooSmall)
	}
	numVars := qap.NumVars()

	aQuery := make([]curve.G1Point, numVars)
	bG1Query := make([]curve.G1Point, numVars)
	bG2Query := make([]curve.G2Point, numVars)
	for j := 0; j < numVars; j++ {
		aQuery[j] = evalG1(e, params.TauG1Coeffs, qap.A, j)
		bG1Query[j] = evalG1(e, params.TauG1Coeffs, qap.B, j)
		bG2Query[j] = evalG2(e, params.TauG2Coeffs, qap.B, j)
	}

	gammaAbc := make([]curve.G1Point, qap.NumPublic)
	for i := 0; i < qap.NumPublic; i++ {
		gammaAbc[i] = evalMixed(e, qap, params.TauG1Coeffs, params.AlphaG1Coeffs, params.BetaG1Coeffs, i)
	}

	lQuery := make([]curve.G1Point, qap.NumWitness)
	for j := 0; j < qap.NumWitness; j++ {
		v := evalMixed(e, qap, params.TauG1Coeffs, params.AlphaG1Coeffs, params.BetaG1Coeffs, qap.NumPublic+j)
		if v.IsIdentity() {
			return nil, errkind.New(errkind.UnconstrainedVariable)
		}
		lQuery[j] = v
	}

	hQuery := append([]curve.G1Point(nil), params.HQuery...)

	mp := &MPCParameters{
		Engine:     e,
		AlphaG1:    params.AlphaG1,
		BetaG1:     params.BetaG1,
		BetaG2:     params.BetaG2,
		GammaG2:    e.G2Generator(),
		DeltaG1:    e.G1Generator(),
		DeltaG2:    e.G2Generator(),
		AQuery:     aQuery,
		BG1Query:   bG1Query,
		BG2Query:   bG2Query,
		GammaAbcG1: gammaAbc,
		HQuery:     hQuery,
		LQuery:     lQuery,
	}
	hash, err := canonicalHash(mp)
	if err != nil {
		return nil, err
	}
	mp.CsHash = hash
	return mp, nil
}

// canonicalHash hashes every fixed field of mp (everything but Contributions
// and CsHash itself) in a stable order, so it is reproducible across
// processes from the same evaluated parameter set. Only Initialize may call
// this: it freezes cs_hash once, at δ=γ=1 before any contribution. DeltaG1,
// DeltaG2, HQuery and LQuery all change on every subsequent Contribute, so
// recomputing this hash later would not reproduce the frozen value — callers
// that need cs_hash after construction must read MPCParameters.CsHash, never
// call canonicalHash again.
func canonicalHash(mp *MPCParameters) ([64]byte, error) {
	h, err := blake2b.New512(nil)
	if err != nil {
		return [64]byte{}, err
	}
	wc := &writeCounter{}
	if err := writeFixedParams(wc, mp); err != nil {
		return [64]byte{}, err
	}
	h.Write(wc.bytes)
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}
