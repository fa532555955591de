// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package phase1 implements the Powers-of-Tau accumulator: its on-disk byte
// layout, the contribution transform, and the single-transition verifier
// (spec.md §3/§4.4). Grounded on the teacher's mpcsetup.Phase1 accumulator
// shape and on original_source/powersoftau/src/accumulator.rs for the
// section layout and contribution algorithm.
package phase1

import (
	"github.com/logical-mechanism/tau-mpc/batch"
	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/errkind"
	"github.com/logical-mechanism/tau-mpc/internal/mmapio"
	"github.com/logical-mechanism/tau-mpc/keypair"
)

// sections bundles the five vector sections of spec.md §3's Accumulator,
// computed once from (Power, Mode) and shared by every Accumulator value at
// that power — the layout is a pure function of those two inputs.
type sections struct {
	TauG1   batch.Section
	TauG2   batch.Section
	AlphaG1 batch.Section
	BetaG1  batch.Section
	BetaG2  batch.Section
}

func layout(e curve.Engine, power int, mode curve.Mode) sections {
	n := 1 << uint(power)

	tauG1 := batch.Section{Kind: batch.KindG1, Offset: 0, Count: 2*n - 1, Mode: mode}
	tauG2 := batch.Section{Kind: batch.KindG2, Offset: tauG1.ByteLen(e), Count: n, Mode: mode}
	alphaG1 := batch.Section{Kind: batch.KindG1, Offset: tauG2.Offset + tauG2.ByteLen(e), Count: n, Mode: mode}
	betaG1 := batch.Section{Kind: batch.KindG1, Offset: alphaG1.Offset + alphaG1.ByteLen(e), Count: n, Mode: mode}
	betaG2 := batch.Section{Kind: batch.KindG2, Offset: betaG1.Offset + betaG1.ByteLen(e), Count: 1, Mode: mode}

	return sections{TauG1: tauG1, TauG2: tauG2, AlphaG1: alphaG1, BetaG1: betaG1, BetaG2: betaG2}
}

// bodyLen is the total byte length of the five vector sections, excluding
// the trailing contribution list.
func bodyLen(s sections, e curve.Engine) int {
	return s.TauG1.ByteLen(e) + s.TauG2.ByteLen(e) + s.AlphaG1.ByteLen(e) + s.BetaG1.ByteLen(e) + s.BetaG2.ByteLen(e)
}

// Accumulator is the Phase-1 transcript at power P (N = 2^P elements per
// "full" vector), per spec.md §3. The five point vectors live in a single
// mapped byte Region addressed by Sections rather than as decoded Go slices;
// the trailing Contributions list, which is small and structured, is kept
// as a native Go slice. Two readers decode a whole vector at once through
// batch.Engine.DecodeAllG1/DecodeAllG2: the geometric-progression check in
// VerifyTransition and bridge.ToGroth16Params.
type Accumulator struct {
	Engine        curve.Engine
	Power         int
	Mode          curve.Mode
	Region        *mmapio.Region
	Sections      sections
	Contributions []keypair.Phase1PublicKey
}

// N returns 2^Power, the domain size of this accumulator.
func (a *Accumulator) N() int { return 1 << uint(a.Power) }

// NewInitial builds generate_initial (spec.md §3's "Lifecycle"): every
// τ-vector element equals its group's generator and β_g2 = g2.
func NewInitial(e curve.Engine, power int, mode curve.Mode) (*Accumulator, error) {
	if power < 0 {
		return nil, errkind.New(errkind.DomainTooSmall)
	}
	sec := layout(e, power, mode)
	region := mmapio.Wrap(make([]byte, bodyLen(sec, e)))

	fillG1 := func(s batch.Section, p curve.G1Point) {
		buf := e.EncodeG1(p, mode)
		raw := region.Slice(s.Offset, s.Count*len(buf))
		for i := 0; i < s.Count; i++ {
			copy(raw[i*len(buf):(i+1)*len(buf)], buf)
		}
	}
	fillG2 := func(s batch.Section, p curve.G2Point) {
		buf := e.EncodeG2(p, mode)
		raw := region.Slice(s.Offset, s.Count*len(buf))
		for i := 0; i < s.Count; i++ {
			copy(raw[i*len(buf):(i+1)*len(buf)], buf)
		}
	}

	fillG1(sec.TauG1, e.G1Generator())
	fillG2(sec.TauG2, e.G2Generator())
	fillG1(sec.AlphaG1, e.G1Generator())
	fillG1(sec.BetaG1, e.G1Generator())
	fillG2(sec.BetaG2, e.G2Generator())

	return &Accumulator{
		Engine:   e,
		Power:    power,
		Mode:     mode,
		Region:   region,
		Sections: sec,
	}, nil
}

func (a *Accumulator) DecodeG1At(sec batch.Section, i int, check curve.CheckMode, sg curve.SubgroupCheckMode) (curve.G1Point, error) {
	size := sec.ElementSize(a.Engine)
	off := sec.At(a.Engine, i)
	return a.Engine.DecodeG1(a.Region.Slice(off, size), sec.Mode, check, sg)
}

func (a *Accumulator) DecodeG2At(sec batch.Section, i int, check curve.CheckMode) (curve.G2Point, error) {
	size := sec.ElementSize(a.Engine)
	off := sec.At(a.Engine, i)
	return a.Engine.DecodeG2(a.Region.Slice(off, size), sec.Mode, check)
}
