// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package bridge converts a finished Phase-1 accumulator into the
// Lagrange-basis Groth16Params Phase 2 consumes (spec.md §4.5): an
// inverse-FFT over the curve's additive group, plus the H-query
// precomputation. Grounded on original_source/phase2/src/lib.rs's
// to_coeffs ("IFFT then batch-normalize projective to affine") and on
// curve.Engine.DomainGenerator, which surfaces gnark-crypto's
// ecc/<curve>/fr/fft.Domain roots of unity (SPEC_FULL.md §4, C5).
package bridge

import "github.com/logical-mechanism/tau-mpc/curve"

// bitReverse returns i with its low bits (0..bits-1) reversed.
func bitReverse(i, bits uint) uint {
	var r uint
	for b := uint(0); b < bits; b++ {
		r = (r << 1) | (i & 1)
		i >>= 1
	}
	return r
}

func log2(n int) uint {
	var bits uint
	for (1 << bits) < n {
		bits++
	}
	return bits
}

func scalarPow(base curve.Scalar, one curve.Scalar, exp uint64) curve.Scalar {
	result := one
	b := base
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(b)
		}
		b = b.Mul(b)
		exp >>= 1
	}
	return result
}

// radix2G1 runs an in-place iterative Cooley-Tukey transform over a, whose
// length must be a power of two, using root as the n-th primitive root of
// unity (root = domain generator for the forward transform, its inverse
// for the inverse transform). It does not apply the 1/n scaling the
// inverse transform needs — callers do that afterward.
func radix2G1(e curve.Engine, a []curve.G1Point, root curve.Scalar) {
	n := len(a)
	bits := log2(n)
	for i := 0; i < n; i++ {
		j := bitReverse(uint(i), bits)
		if j > uint(i) {
			a[i], a[j] = a[j], a[i]
		}
	}

	one := e.ScalarFromUint64(1)
	for size := 2; size <= n; size *= 2 {
		halfSize := size / 2
		w := scalarPow(root, one, uint64(n/size))
		for start := 0; start < n; start += size {
			wPow := one
			for j := 0; j < halfSize; j++ {
				u := a[start+j]
				v := e.G1ScalarMult(a[start+j+halfSize], wPow)
				a[start+j] = e.G1Add(u, v)
				a[start+j+halfSize] = e.G1Add(u, e.G1Neg(v))
				wPow = wPow.Mul(w)
			}
		}
	}
}

func radix2G2(e curve.Engine, a []curve.G2Point, root curve.Scalar) {
	n := len(a)
	bits := log2(n)
	for i := 0; i < n; i++ {
		j := bitReverse(uint(i), bits)
		if j > uint(i) {
			a[i], a[j] = a[j], a[i]
		}
	}

	one := e.ScalarFromUint64(1)
	for size := 2; size <= n; size *= 2 {
		halfSize := size / 2
		w := scalarPow(root, one, uint64(n/size))
		for start := 0; start < n; start += size {
			wPow := one
			for j := 0; j < halfSize; j++ {
				u := a[start+j]
				v := e.G2ScalarMult(a[start+j+halfSize], wPow)
				a[start+j] = e.G2Add(u, v)
				a[start+j+halfSize] = e.G2Add(u, e.G2Neg(v))
				wPow = wPow.Mul(w)
			}
		}
	}
}

// IFFTG1 converts the monomial-basis vector a (evaluations of τⁱ·g1, say)
// into its Lagrange-basis coefficients over a's length, a power of two.
// Input is treated as borrowed immutable; a copy is transformed and
// returned.
func IFFTG1(e curve.Engine, a []curve.G1Point) ([]curve.G1Point, error) {
	_, genInv, sizeInv, err := e.DomainGenerator(uint64(len(a)))
	if err != nil {
		return nil, err
	}
	out := append([]curve.G1Point(nil), a...)
	radix2G1(e, out, genInv)
	for i := range out {
		out[i] = e.G1ScalarMult(out[i], sizeInv)
	}
	return out, nil
}

// FFTG1 is IFFTG1's inverse: Lagrange-basis coefficients back to monomial
// (evaluation) form. Used only by the bridge-idempotence test (spec.md §8
// invariant 7).
func FFTG1(e curve.Engine, a []curve.G1Point) ([]curve.G1Point, error) {
	gen, _, _, err := e.DomainGenerator(uint64(len(a)))
	if err != nil {
		return nil, err
	}
	out := append([]curve.G1Point(nil), a...)
	radix2G1(e, out, gen)
	return out, nil
}

// IFFTG2 mirrors IFFTG1 for a G2 vector (τ_g2).
func IFFTG2(e curve.Engine, a []curve.G2Point) ([]curve.G2Point, error) {
	_, genInv, sizeInv, err := e.DomainGenerator(uint64(len(a)))
	if err != nil {
		return nil, err
	}
	out := append([]curve.G2Point(nil), a...)
	radix2G2(e, out, genInv)
	for i := range out {
		out[i] = e.G2ScalarMult(out[i], sizeInv)
	}
	return out, nil
}

// FFTG2 mirrors FFTG1 for a G2 vector.
func FFTG2(e curve.Engine, a []curve.G2Point) ([]curve.G2Point, error) {
	gen, _, _, err := e.DomainGenerator(uint64(len(a)))
	if err != nil {
		return nil, err
	}
	out := append([]curve.G2Point(nil), a...)
	radix2G2(e, out, gen)
	return out, nil
}
