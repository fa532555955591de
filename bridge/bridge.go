// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"github.com/logical-mechanism/tau-mpc/batch"
	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/errkind"
	"github.com/logical-mechanism/tau-mpc/phase1"
)

// Groth16Params is the output of the bridge (spec.md §3): single α_g1,
// β_g1, β_g2 elements, the Lagrange-basis coefficient vectors of the three
// G1 monomial bases plus the τ_g2 basis, and the H-query vector.
type Groth16Params struct {
	AlphaG1 curve.G1Point
	BetaG1  curve.G1Point
	BetaG2  curve.G2Point

	TauG1Coeffs   []curve.G1Point // length M
	AlphaG1Coeffs []curve.G1Point // length M
	BetaG1Coeffs  []curve.G1Point // length M
	TauG2Coeffs   []curve.G2Point // length M

	HQuery []curve.G1Point // length M-1

	DomainSize int
}

// ToGroth16Params runs spec.md §4.5's bridge: an inverse FFT of size M over
// each of {τ_g1[0..M], τ_g2[0..M], α_g1[0..M], β_g1[0..M]}, plus the
// H-query h[i] = τ_g1[i+M] − τ_g1[i] for i=0..M-2, computed directly from
// the un-transformed τ_g1 vector (H-query is a monomial-basis quantity, not
// a Lagrange one — no IFFT involved).
func ToGroth16Params(acc *phase1.Accumulator, domainSize int, batchSize int) (*Groth16Params, error) {
	if domainSize <= 0 || domainSize&(domainSize-1) != 0 {
		return nil, errkind.New(errkind.DomainTooSmall)
	}
	if domainSize > acc.N() {
		return nil, errkind.New(errkind.DomainTooSmall)
	}
	e := acc.Engine
	eng := batch.New(e, batchSize)

	tauFullSec := batch.Section{Kind: batch.KindG1, Offset: acc.Sections.TauG1.Offset, Count: 2*domainSize - 1, Mode: acc.Mode}
	tauFull, err := eng.DecodeAllG1(acc.Region, tauFullSec)
	if err != nil {
		return nil, err
	}
	tauM := tauFull[:domainSize]

	tauG2Sec := batch.Section{Kind: batch.KindG2, Offset: acc.Sections.TauG2.Offset, Count: domainSize, Mode: acc.Mode}
	tauG2M, err := eng.DecodeAllG2(acc.Region, tauG2Sec)
	if err != nil {
		return nil, err
	}

	alphaSec := batch.Section{Kind: batch.KindG1, Offset: acc.Sections.AlphaG1.Offset, Count: domainSize, Mode: acc.Mode}
	alphaM, err := eng.DecodeAllG1(acc.Region, alphaSec)
	if err != nil {
		return nil, err
	}

	betaSec := batch.Section{Kind: batch.KindG1, Offset: acc.Sections.BetaG1.Offset, Count: domainSize, Mode: acc.Mode}
	betaM, err := eng.DecodeAllG1(acc.Region, betaSec)
	if err != nil {
		return nil, err
	}

	betaG2, err := acc.DecodeG2At(acc.Sections.BetaG2, 0, curve.CheckOnCurve)
	if err != nil {
		return nil, err
	}

	tauCoeffs, err := IFFTG1(e, tauM)
	if err != nil {
		return nil, err
	}
	tauG2Coeffs, err := IFFTG2(e, tauG2M)
	if err != nil {
		return nil, err
	}
	alphaCoeffs, err := IFFTG1(e, alphaM)
	if err != nil {
		return nil, err
	}
	betaCoeffs, err := IFFTG1(e, betaM)
	if err != nil {
		return nil, err
	}

	hQuery := make([]curve.G1Point, domainSize-1)
	for i := 0; i < domainSize-1; i++ {
		hQuery[i] = e.G1Add(tauFull[i+domainSize], e.G1Neg(tauFull[i]))
	}

	return &Groth16Params{
		AlphaG1:       alphaM[0],
		BetaG1:        betaM[0],
		BetaG2:        betaG2,
		TauG1Coeffs:   tauCoeffs,
		AlphaG1Coeffs: alphaCoeffs,
		BetaG1Coeffs:  betaCoeffs,
		TauG2Coeffs:   tauG2Coeffs,
		HQuery:        hQuery,
		DomainSize:    domainSize,
	}, nil
}
