// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package phase2

import (
	"io"
	"math/rand/v2"

	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/errkind"
	"github.com/logical-mechanism/tau-mpc/keypair"
)

// bindHash is Blake2b-512(cs_hash ∥ encode(prior contributions)), the value
// every Phase-2 PoK binds to (spec.md §4.6). It depends on cs_hash and the
// contribution list only, so it is identical whether it is computed before
// building a new contribution or while replaying one during verification.
func bindHash(mp *MPCParameters) ([]byte, error) {
	wc := &writeCounter{}
	wc.bytes = append(wc.bytes, mp.CsHash[:]...)
	for _, pk := range mp.Contributions {
		if err := writePhase2PublicKey(wc, mp.Engine, phase2PublicKeyWire{pk.SG, pk.SXG, pk.DeltaAfter, pk.XR}); err != nil {
			return nil, err
		}
	}
	h := blake2b512(wc.bytes)
	return h[:], nil
}

// Contribute runs spec.md §4.6's δ-contribution transform: sample a fresh
// δ, rescale h_query and l_query by δ⁻¹ (so that the quotient term h(x)/δ
// and the witness-linear term l(x)/δ stay consistent with the new δ_g1/
// δ_g2), update δ_g1/δ_g2 by the new δ, and append the participant's PoK.
func Contribute(mp *MPCParameters, rng io.Reader) (*MPCParameters, [64]byte, error) {
	e := mp.Engine

	bh, err := bindHash(mp)
	if err != nil {
		return nil, [64]byte{}, err
	}
	delta, err := e.RandomScalar(rng)
	if err != nil {
		return nil, [64]byte{}, errkind.Wrap(errkind.WeakRandomness, err)
	}
	if delta.IsZero() {
		return nil, [64]byte{}, errkind.New(errkind.WeakRandomness)
	}
	deltaInv, ok := delta.Inverse()
	if !ok {
		return nil, [64]byte{}, errkind.New(errkind.WeakRandomness)
	}

	pk, err := keypair.GeneratePhase2PublicKey(e, bh, delta, mp.DeltaG1, rng)
	if err != nil {
		return nil, [64]byte{}, err
	}

	hQuery := make([]curve.G1Point, len(mp.HQuery))
	for i, p := range mp.HQuery {
		hQuery[i] = e.G1ScalarMult(p, deltaInv)
	}
	lQuery := make([]curve.G1Point, len(mp.LQuery))
	for i, p := range mp.LQuery {
		lQuery[i] = e.G1ScalarMult(p, deltaInv)
	}

	next := &MPCParameters{
		Engine:        e,
		AlphaG1:       mp.AlphaG1,
		BetaG1:        mp.BetaG1,
		BetaG2:        mp.BetaG2,
		GammaG2:       mp.GammaG2,
		DeltaG1:       pk.DeltaAfter,
		DeltaG2:       e.G2ScalarMult(mp.DeltaG2, delta),
		AQuery:        mp.AQuery,
		BG1Query:      mp.BG1Query,
		BG2Query:      mp.BG2Query,
		GammaAbcG1:    mp.GammaAbcG1,
		HQuery:        hQuery,
		LQuery:        lQuery,
		CsHash:        mp.CsHash,
		Contributions: append(append([]keypair.Phase2PublicKey(nil), mp.Contributions...), pk),
	}

	wc := &writeCounter{}
	if err := writePhase2PublicKey(wc, e, phase2PublicKeyWire{pk.SG, pk.SXG, pk.DeltaAfter, pk.XR}); err != nil {
		return nil, [64]byte{}, err
	}
	receipt := blake2b512(wc.bytes)
	return next, receipt, nil
}

// Verify checks that after is a single valid δ-contribution on top of
// before, per spec.md §4.6:
//
//  1. Fixed fields (α,β,β_g2,γ_g2,γ_abc,cs_hash) and query lengths unchanged.
//  2. Contribution list extends before's by exactly one PublicKey, and every
//     prior entry byte-matches (transcript re-derivation).
//  3. The new entry's PoK and δ_after cross-consistency check out against
//     before.δ_g1/after.δ_g2 and the bind hash computed over before's
//     contribution list.
//  4. h_query and l_query each satisfy the same merge_pairs ratio identity
//     phase1 uses for its geometric-progression check, generalized to a
//     single δ⁻¹ rescale instead of a per-index geometric ratio: since
//     after.q[i] = δ⁻¹·before.q[i] for every i, a random linear combination
//     Q = Σ ρⁱ·q[i] satisfies e(Q_after, after.δ_g2) = e(Q_before, before.δ_g2)
//     — both sides equal e(g1,g2)^(δ_before·Σρⁱ·q[i]) in the exponent.
func Verify(before, after *MPCParameters) (bool, error) {
	e := after.Engine

	if !sameFixed(before, after) {
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionGammaAbcG1)
	}
	if before.CsHash != after.CsHash {
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionCsHash)
	}
	if len(after.Contributions) != len(before.Contributions)+1 {
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionContributions)
	}
	for i := range before.Contributions {
		if !phase2PKEqual(before.Contributions[i], after.Contributions[i]) {
			return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionTranscript)
		}
	}
	pk := after.Contributions[len(after.Contributions)-1]

	bh, err := bindHash(before)
	if err != nil {
		return false, err
	}
	ok, err := keypair.VerifyPhase2PublicKey(e, pk, bh, before.DeltaG1, after.DeltaG2)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, errkind.New(errkind.InvalidPoK)
	}
	if !pk.DeltaAfter.Equal(after.DeltaG1) {
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionDeltaG1)
	}

	rng := keypair.NewTranscriptRNG(bh, []byte("h_query"))
	if ok, err := checkDeltaRescale(e, before.HQuery, after.HQuery, before.DeltaG2, after.DeltaG2, rng); err != nil || !ok {
		if err != nil {
			return false, err
		}
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionH)
	}
	rng = keypair.NewTranscriptRNG(bh, []byte("l_query"))
	if ok, err := checkDeltaRescale(e, before.LQuery, after.LQuery, before.DeltaG2, after.DeltaG2, rng); err != nil || !ok {
		if err != nil {
			return false, err
		}
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionL)
	}

	return true, nil
}

func sameFixed(before, after *MPCParameters) bool {
	if !before.AlphaG1.Equal(after.AlphaG1) || !before.BetaG1.Equal(after.BetaG1) {
		return false
	}
	if !before.BetaG2.Equal(after.BetaG2) || !before.GammaG2.Equal(after.GammaG2) {
		return false
	}
	if len(before.AQuery) != len(after.AQuery) || len(before.GammaAbcG1) != len(after.GammaAbcG1) {
		return false
	}
	if len(before.HQuery) != len(after.HQuery) || len(before.LQuery) != len(after.LQuery) {
		return false
	}
	for i := range before.AQuery {
		if !before.AQuery[i].Equal(after.AQuery[i]) || !before.BG1Query[i].Equal(after.BG1Query[i]) || !before.BG2Query[i].Equal(after.BG2Query[i]) {
			return false
		}
	}
	for i := range before.GammaAbcG1 {
		if !before.GammaAbcG1[i].Equal(after.GammaAbcG1[i]) {
			return false
		}
	}
	return true
}

func phase2PKEqual(a, b keypair.Phase2PublicKey) bool {
	return a.SG.Equal(b.SG) && a.SXG.Equal(b.SXG) && a.XR.Equal(b.XR) && a.DeltaAfter.Equal(b.DeltaAfter)
}

func checkDeltaRescale(e curve.Engine, before, after []curve.G1Point, beforeDeltaG2, afterDeltaG2 curve.G2Point, rng *rand.ChaCha8) (bool, error) {
	if len(before) == 0 {
		return true, nil
	}
	accBefore, accAfter, err := keypair.MergePairs(e, before, after, rng)
	if err != nil {
		return false, err
	}
	return e.PairingsEqual(accAfter, afterDeltaG2, accBefore, beforeDeltaG2)
}
