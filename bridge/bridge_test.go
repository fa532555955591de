// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"crypto/rand"
	"testing"

	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/phase1"
)

func TestIFFTThenFFT_RecoversOriginal(t *testing.T) {
	e := curve.BLS12381{}
	const m = 8
	points := make([]curve.G1Point, m)
	acc := e.G1Generator()
	s := e.ScalarFromUint64(7)
	for i := range points {
		points[i] = acc
		acc = e.G1ScalarMult(acc, s)
	}

	coeffs, err := IFFTG1(e, points)
	if err != nil {
		t.Fatalf("IFFTG1: %v", err)
	}
	back, err := FFTG1(e, coeffs)
	if err != nil {
		t.Fatalf("FFTG1: %v", err)
	}
	for i := range points {
		if !back[i].Equal(points[i]) {
			t.Fatalf("element %d did not round-trip through IFFT/FFT", i)
		}
	}
}

func TestToGroth16Params_ProducesConsistentDomainSize(t *testing.T) {
	e := curve.BLS12381{}
	a0, err := phase1.NewInitial(e, 3, curve.Compressed)
	if err != nil {
		t.Fatalf("NewInitial: %v", err)
	}
	a1, err := a0.Contribute(rand.Reader, phase1.ContributeOptions{BatchSize: 4})
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}

	params, err := ToGroth16Params(a1, 8, 4)
	if err != nil {
		t.Fatalf("ToGroth16Params: %v", err)
	}
	if len(params.TauG1Coeffs) != 8 || len(params.TauG2Coeffs) != 8 {
		t.Fatalf("unexpected coeff vector lengths: tau_g1=%d tau_g2=%d", len(params.TauG1Coeffs), len(params.TauG2Coeffs))
	}
	if len(params.HQuery) != 7 {
		t.Fatalf("unexpected h_query length: %d", len(params.HQuery))
	}
}

func TestToGroth16Params_DomainSizeNotPowerOfTwo_Errors(t *testing.T) {
	e := curve.BLS12381{}
	a0, err := phase1.NewInitial(e, 3, curve.Compressed)
	if err != nil {
		t.Fatalf("NewInitial: %v", err)
	}
	if _, err := ToGroth16Params(a0, 6, 4); err == nil {
		t.Fatal("expected an error for a non-power-of-two domain size")
	}
}
