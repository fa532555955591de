// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package keypair

import (
	"math/rand/v2"

	"golang.org/x/crypto/blake2b"

	"github.com/logical-mechanism/tau-mpc/curve"
)

// NewTranscriptRNG derives a deterministic stream from the bytes being
// verified (spec.md §4.4: "a transcript-seeded PRNG") using stdlib
// math/rand/v2's ChaCha8, seeded by Blake2b-256 of the input. Two
// independent verifiers hashing the same bytes draw the same ρ sequence,
// which is what makes merge_pairs a sound randomized check rather than one
// vulnerable to a chosen-exponent attack.
func NewTranscriptRNG(transcript ...[]byte) *rand.ChaCha8 {
	h, _ := blake2b.New256(nil)
	for _, part := range transcript {
		h.Write(part)
	}
	var seed [32]byte
	copy(seed[:], h.Sum(nil))
	return rand.NewChaCha8(seed)
}

// NextScalar draws the next element of the ρ sequence from rng.
func NextScalar(e curve.Engine, rng *rand.ChaCha8) (curve.Scalar, error) {
	return drawScalar(e, rng)
}

// MergePairs computes the spec.md §4.4 randomized linear combination
// R = (Σ ρⁱ·beforeᵢ, Σ ρⁱ·afterᵢ) over two equal-length point vectors,
// using successive powers of a single ρ drawn from rng rather than one
// fresh ρ per index — this is the same trick the original CLI's
// `merge_pairs` function uses to collapse a vector comparison into one
// pairing check pair.
func MergePairs(e curve.Engine, before, after []curve.G1Point, rng *rand.ChaCha8) (curve.G1Point, curve.G1Point, error) {
	rho, err := NextScalar(e, rng)
	if err != nil {
		return nil, nil, err
	}
	accBefore := e.G1Identity()
	accAfter := e.G1Identity()
	power := e.ScalarFromUint64(1)
	for i := range before {
		accBefore = e.G1Add(accBefore, e.G1ScalarMult(before[i], power))
		accAfter = e.G1Add(accAfter, e.G1ScalarMult(after[i], power))
		power = power.Mul(rho)
	}
	return accBefore, accAfter, nil
}

// MergePairsG2 is MergePairs over G2 vectors, used for the τ_g2 section.
func MergePairsG2(e curve.Engine, before, after []curve.G2Point, rng *rand.ChaCha8) (curve.G2Point, curve.G2Point, error) {
	rho, err := NextScalar(e, rng)
	if err != nil {
		return nil, nil, err
	}
	accBefore := e.G2Identity()
	accAfter := e.G2Identity()
	power := e.ScalarFromUint64(1)
	for i := range before {
		accBefore = e.G2Add(accBefore, e.G2ScalarMult(before[i], power))
		accAfter = e.G2Add(accAfter, e.G2ScalarMult(after[i], power))
		power = power.Mul(rho)
	}
	return accBefore, accAfter, nil
}
