// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package curve is the pairing-engine capability boundary (spec §9): every
// other core package talks to G1/G2/Fr only through this interface, so the
// MPC transform, the PoK, and the batch engine are polymorphic over the
// concrete curve the way the spec requires. Two concrete engines are
// provided, both backed by gnark-crypto: BLS12381 (the teacher's exclusive
// curve) and BN254 (used across the rest of the retrieved pack).
package curve

import (
	"fmt"
	"io"
	"math/big"
)

// Mode selects compressed (x-coordinate + sign bit) or uncompressed
// (both coordinates) point encoding, per spec §4.1.
type Mode int

const (
	Compressed Mode = iota
	Uncompressed
)

// CheckMode selects how much validation Decode performs.
type CheckMode int

const (
	CheckNone CheckMode = iota
	CheckOnCurve
	CheckFullSubgroup
)

// SubgroupCheckMode selects the algorithm FullSubgroup validation uses for
// G1, per spec §4.1. Auto, Direct and Endomorphism all route to
// gnark-crypto's IsInSubGroup, which already picks the fastest available
// check internally; No skips the subgroup test. See DESIGN.md Open Question
// on Auto-threshold benchmarking (spec §9.4).
type SubgroupCheckMode int

const (
	SubgroupAuto SubgroupCheckMode = iota
	SubgroupDirect
	SubgroupEndomorphism
	SubgroupNo
)

// G1Point and G2Point are opaque, curve-specific group elements. Equal and
// IsIdentity are the only operations the generic core ever needs beyond
// what Engine itself exposes (Add, Neg, ScalarMult, Encode/Decode).
type G1Point interface {
	IsIdentity() bool
	Equal(G1Point) bool
}

type G2Point interface {
	IsIdentity() bool
	Equal(G2Point) bool
}

// GTElement is a pairing target-group element; the only operation the core
// needs is equality, used to compare two pairings.
type GTElement interface {
	Equal(GTElement) bool
}

// Scalar is an element of the curve's scalar field Fr.
type Scalar interface {
	IsZero() bool
	Add(Scalar) Scalar
	Mul(Scalar) Scalar
	Inverse() (Scalar, bool)
	BigInt() *big.Int
	Bytes() []byte
}

// Engine is the capability interface spec §9 requires: {G1, G2, Fr, Fq,
// pairing, hash_to_g2 support, miller_loop/final_exponentiation folded into
// Pair}. hash_to_g2 itself lives in package keypair, layered on top of
// G2SecondGenerator below, which is the curve-specific part of that map
// (spec §6: "a·g2 + b·hg2 where hg2 is a curve-specific second generator").
type Engine interface {
	Name() string

	G1Generator() G1Point
	G2Generator() G2Point
	G1Identity() G1Point
	G2Identity() G2Point
	// G2SecondGenerator is the curve-specific hg2 of spec §6's HashToG2,
	// fixed and public, distinct from G2Generator so that a·g2 + b·hg2
	// cannot collapse to a single scalar multiple of g2.
	G2SecondGenerator() G2Point

	RandomScalar(rng io.Reader) (Scalar, error)
	ScalarFromBigInt(v *big.Int) Scalar
	ScalarFromUint64(v uint64) Scalar

	G1Add(a, b G1Point) G1Point
	G1Neg(a G1Point) G1Point
	G1ScalarMult(a G1Point, s Scalar) G1Point

	G2Add(a, b G2Point) G2Point
	G2Neg(a G2Point) G2Point
	G2ScalarMult(a G2Point, s Scalar) G2Point

	Pair(a G1Point, b G2Point) (GTElement, error)
	// PairingsEqual checks e(a1,b1) == e(a2,b2) without exposing GT
	// arithmetic beyond equality.
	PairingsEqual(a1 G1Point, b1 G2Point, a2 G1Point, b2 G2Point) (bool, error)

	G1Size(mode Mode) int
	G2Size(mode Mode) int

	EncodeG1(p G1Point, mode Mode) []byte
	DecodeG1(buf []byte, mode Mode, check CheckMode, sg SubgroupCheckMode) (G1Point, error)
	EncodeG2(p G2Point, mode Mode) []byte
	DecodeG2(buf []byte, mode Mode, check CheckMode) (G2Point, error)

	// DomainGenerator returns the generator and inverse generator of the
	// multiplicative subgroup of Fr with the given order, plus the inverse
	// of order itself in Fr, for package bridge's radix-2 IFFT (spec.md
	// §4.5). It is backed by gnark-crypto's per-curve fr/fft.Domain, which
	// is where these roots of unity are defined and validated; bridge
	// never constructs them itself.
	DomainGenerator(size uint64) (generator, generatorInv, sizeInv Scalar, err error)
}

// ByName resolves a curve identifier to its Engine, for CLI/config layers.
func ByName(name string) (Engine, error) {
	switch name {
	case "bls12-381", "bls12381":
		return BLS12381{}, nil
	case "bn254":
		return BN254{}, nil
	default:
		return nil, fmt.Errorf("curve: unknown engine %q", name)
	}
}
