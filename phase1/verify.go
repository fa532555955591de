// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package phase1

import (
	"github.com/logical-mechanism/tau-mpc/batch"
	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/errkind"
	"github.com/logical-mechanism/tau-mpc/keypair"
)

// VerifyOptions configures the batch engine VerifyTransition uses when
// scanning after's vectors, and the subgroup-check mode for the individual
// elements it decodes (heads and PoK reference points). The full-vector
// scan always uses FullSubgroup with SubgroupAuto, whatever Subgroup says.
type VerifyOptions struct {
	BatchSize int
	Subgroup  curve.SubgroupCheckMode
}

// VerifyTransition checks that after is a single valid contribution on top
// of before, per spec.md §4.4. It performs, in order:
//
//  1. Contribution-list bookkeeping: after extends before by exactly one
//     PublicKey.
//  2. Heads match generators (after.τ_g1[0]=g1, after.τ_g2[0]=g2).
//  3. Full-subgroup validity of every element of after (configurable batch
//     size; the check itself is always FullSubgroup here since a transition
//     that introduces a bad point must never be accepted).
//  4. Proof-of-knowledge for τ, α, β, each binding to before's own
//     generator-point value for that secret (§4.3's prevGenG1/newGenG1).
//  5. A derived β_g2 cross-consistency pairing identity using only stored
//     fields: e(before.β_g1[0], after.β_g2) = e(after.β_g1[0], before.β_g2)
//     — both sides equal e(g1,g2)^(β_before²·β_step), so this holds iff
//     β_g2's update used the same β as β_g1's.
//  6. Geometric-progression consistency of after's τ_g1 vector against
//     after.τ_g2[0]/[1] via merge_pairs (§4.4): a randomized linear
//     combination of consecutive (τ_g1[i-1], τ_g1[i]) pairs must pair
//     consistently with (τ_g2[0], τ_g2[1]). α_g1 and β_g1 share the exact
//     same consecutive-index τ-ratio as τ_g1 (the extra uniform α/β factor
//     cancels in a ratio of consecutive elements), so the same check is
//     reused for those vectors instead of requiring a second,
//     secret-specific G2 reference — see DESIGN.md.
func VerifyTransition(before, after *Accumulator, opts VerifyOptions) (bool, error) {
	if before.Power != after.Power || before.Mode != after.Mode {
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionContributions)
	}
	if len(after.Contributions) != len(before.Contributions)+1 {
		if len(after.Contributions) == len(before.Contributions) {
			return false, errkind.New(errkind.NoContributions)
		}
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionContributions)
	}
	for i := range before.Contributions {
		if !publicKeysEqual(before.Contributions[i], after.Contributions[i]) {
			return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionContributions)
		}
	}
	pk := after.Contributions[len(after.Contributions)-1]

	e := after.Engine

	headG1, err := after.DecodeG1At(after.Sections.TauG1, 0, curve.CheckFullSubgroup, opts.Subgroup)
	if err != nil {
		return false, err
	}
	if !headG1.Equal(e.G1Generator()) {
		return false, errkind.New(errkind.InvalidGenerator)
	}
	headG2, err := after.DecodeG2At(after.Sections.TauG2, 0, curve.CheckFullSubgroup)
	if err != nil {
		return false, err
	}
	if !headG2.Equal(e.G2Generator()) {
		return false, errkind.New(errkind.InvalidGenerator)
	}

	eng := batch.New(e, opts.BatchSize)
	for _, sec := range []batch.Section{after.Sections.TauG1, after.Sections.AlphaG1, after.Sections.BetaG1} {
		if err := eng.ValidateG1(after.Region, sec); err != nil {
			return false, errkind.Wrap(errkind.NotInSubgroup, err)
		}
	}
	for _, sec := range []batch.Section{after.Sections.TauG2, after.Sections.BetaG2} {
		if err := eng.ValidateG2(after.Region, sec); err != nil {
			return false, errkind.Wrap(errkind.NotInSubgroup, err)
		}
	}

	prevTauG1, err := before.DecodeG1At(before.Sections.TauG1, 1, curve.CheckOnCurve, opts.Subgroup)
	if err != nil {
		return false, err
	}
	newTauG1, err := after.DecodeG1At(after.Sections.TauG1, 1, curve.CheckOnCurve, opts.Subgroup)
	if err != nil {
		return false, err
	}
	okTau, err := keypair.VerifyOne(e, pk.Tau, runningHashOf(before), keypair.SectionTau, prevTauG1, newTauG1)
	if err != nil {
		return false, err
	}
	if !okTau {
		return false, errkind.New(errkind.InvalidPoK)
	}

	prevAlphaG1, err := before.DecodeG1At(before.Sections.AlphaG1, 0, curve.CheckOnCurve, opts.Subgroup)
	if err != nil {
		return false, err
	}
	newAlphaG1, err := after.DecodeG1At(after.Sections.AlphaG1, 0, curve.CheckOnCurve, opts.Subgroup)
	if err != nil {
		return false, err
	}
	okAlpha, err := keypair.VerifyOne(e, pk.Alpha, runningHashOf(before), keypair.SectionAlpha, prevAlphaG1, newAlphaG1)
	if err != nil {
		return false, err
	}
	if !okAlpha {
		return false, errkind.New(errkind.InvalidPoK)
	}

	prevBetaG1, err := before.DecodeG1At(before.Sections.BetaG1, 0, curve.CheckOnCurve, opts.Subgroup)
	if err != nil {
		return false, err
	}
	newBetaG1, err := after.DecodeG1At(after.Sections.BetaG1, 0, curve.CheckOnCurve, opts.Subgroup)
	if err != nil {
		return false, err
	}
	okBeta, err := keypair.VerifyOne(e, pk.Beta, runningHashOf(before), keypair.SectionBeta, prevBetaG1, newBetaG1)
	if err != nil {
		return false, err
	}
	if !okBeta {
		return false, errkind.New(errkind.InvalidPoK)
	}

	prevBetaG2, err := before.DecodeG2At(before.Sections.BetaG2, 0, curve.CheckOnCurve)
	if err != nil {
		return false, err
	}
	newBetaG2, err := after.DecodeG2At(after.Sections.BetaG2, 0, curve.CheckOnCurve)
	if err != nil {
		return false, err
	}
	betaCrossOK, err := e.PairingsEqual(prevBetaG1, newBetaG2, newBetaG1, prevBetaG2)
	if err != nil {
		return false, err
	}
	if !betaCrossOK {
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionBetaG2)
	}

	if ok, err := checkGeometricProgression(eng, after, after.Sections.TauG1); err != nil || !ok {
		if err != nil {
			return false, err
		}
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionTau)
	}
	if ok, err := checkGeometricProgression(eng, after, after.Sections.AlphaG1); err != nil || !ok {
		if err != nil {
			return false, err
		}
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionAlphaG1)
	}
	if ok, err := checkGeometricProgression(eng, after, after.Sections.BetaG1); err != nil || !ok {
		if err != nil {
			return false, err
		}
		return false, errkind.NewSection(errkind.InvariantBroken, errkind.SectionBetaG1)
	}

	return true, nil
}

func runningHashOf(a *Accumulator) []byte {
	h, err := a.RunningHash()
	if err != nil {
		// RunningHash only fails on an io error, which WriteTo(h) to an
		// in-memory hash.Hash never returns.
		panic(err)
	}
	return h[:]
}

func publicKeysEqual(a, b keypair.Phase1PublicKey) bool {
	return pkEqual(a.Tau, b.Tau) && pkEqual(a.Alpha, b.Alpha) && pkEqual(a.Beta, b.Beta)
}

func pkEqual(a, b keypair.PublicKey) bool {
	return a.SG.Equal(b.SG) && a.SXG.Equal(b.SXG) && a.XR.Equal(b.XR)
}

// checkGeometricProgression verifies spec.md §4.4's "geometric progression
// within A′" test for vec (τ_g1, α_g1, or β_g1, all of which share τ_g1's
// consecutive-element ratio): a randomized linear combination of
// consecutive pairs must satisfy
//
//	e(Σ ρⁱ·vec[i], τ_g2[0]) = e(Σ ρⁱ·vec[i-1], τ_g2[1])
//
// i.e. the shifted-by-one vector pairs consistently against (g2, τ·g2).
func checkGeometricProgression(eng *batch.Engine, after *Accumulator, vec batch.Section) (bool, error) {
	e := after.Engine

	points, err := eng.DecodeAllG1(after.Region, vec)
	if err != nil {
		return false, err
	}
	if len(points) < 2 {
		return true, nil
	}
	shiftedHead := points[:len(points)-1]
	shiftedTail := points[1:]

	rng := keypair.NewTranscriptRNG(runningHashOf(after), []byte{byte(vec.Kind)})
	accTail, accHead, err := keypair.MergePairs(e, shiftedTail, shiftedHead, rng)
	if err != nil {
		return false, err
	}

	tauG2_0, err := after.DecodeG2At(after.Sections.TauG2, 0, curve.CheckOnCurve)
	if err != nil {
		return false, err
	}
	tauG2_1, err := after.DecodeG2At(after.Sections.TauG2, 1, curve.CheckOnCurve)
	if err != nil {
		return false, err
	}

	return e.PairingsEqual(accTail, tauG2_0, accHead, tauG2_1)
}
