// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package curve

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
)

// BLS12381 is the Engine backed by gnark-crypto's bls12-381 package, the
// teacher ceremony's exclusive curve. It is a value type: it holds no
// state, only dispatches to package-level gnark-crypto functions.
type BLS12381 struct{}

func (BLS12381) Name() string { return "bls12-381" }

type bls12381G1 struct{ p bls12381.G1Affine }
type bls12381G2 struct{ p bls12381.G2Affine }
type bls12381GT struct{ e bls12381.GT }
type bls12381Scalar struct{ e fr.Element }

func (g bls12381G1) IsIdentity() bool { return g.p.X.IsZero() && g.p.Y.IsZero() }
func (g bls12381G1) Equal(o G1Point) bool {
	other, ok := o.(bls12381G1)
	if !ok {
		return false
	}
	return g.p.Equal(&other.p)
}

func (g bls12381G2) IsIdentity() bool { return g.p.X.IsZero() && g.p.Y.IsZero() }
func (g bls12381G2) Equal(o G2Point) bool {
	other, ok := o.(bls12381G2)
	if !ok {
		return false
	}
	return g.p.Equal(&other.p)
}

func (g bls12381GT) Equal(o GTElement) bool {
	other, ok := o.(bls12381GT)
	if !ok {
		return false
	}
	return g.e.Equal(&other.e)
}

func (s bls12381Scalar) IsZero() bool { return s.e.IsZero() }

func (s bls12381Scalar) Add(o Scalar) Scalar {
	other := o.(bls12381Scalar)
	var r fr.Element
	r.Add(&s.e, &other.e)
	return bls12381Scalar{r}
}

func (s bls12381Scalar) Mul(o Scalar) Scalar {
	other := o.(bls12381Scalar)
	var r fr.Element
	r.Mul(&s.e, &other.e)
	return bls12381Scalar{r}
}

func (s bls12381Scalar) Inverse() (Scalar, bool) {
	if s.e.IsZero() {
		return nil, false
	}
	var r fr.Element
	r.Inverse(&s.e)
	return bls12381Scalar{r}, true
}

func (s bls12381Scalar) BigInt() *big.Int {
	var bi big.Int
	s.e.ToBigIntRegular(&bi)
	return &bi
}

func (s bls12381Scalar) Bytes() []byte {
	b := s.e.Bytes()
	return b[:]
}

func (BLS12381) G1Generator() G1Point {
	_, _, g1, _ := bls12381.Generators()
	return bls12381G1{g1}
}

func (BLS12381) G2Generator() G2Point {
	_, _, _, g2 := bls12381.Generators()
	return bls12381G2{g2}
}

func (BLS12381) G1Identity() G1Point { return bls12381G1{} }
func (BLS12381) G2Identity() G2Point { return bls12381G2{} }

// G2SecondGenerator derives a fixed, public second G2 generator independent
// of the standard one by scalar-multiplying the generator with a small
// deterministic constant. It only needs to be unpredictably unrelated to
// g2 by a *known* scalar from the point of view of the contribution
// protocol, which a fixed constant distinct from 1 already gives; see
// SPEC_FULL.md §6 and keypair.HashToG2.
func (e BLS12381) G2SecondGenerator() G2Point {
	_, _, _, g2 := bls12381.Generators()
	var p bls12381.G2Affine
	p.ScalarMultiplication(&g2, big.NewInt(2))
	return bls12381G2{p}
}

func (BLS12381) RandomScalar(rng io.Reader) (Scalar, error) {
	if rng == nil {
		rng = rand.Reader
	}
	buf := make([]byte, 64)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, fmt.Errorf("curve: read random scalar: %w", err)
	}
	var bi big.Int
	bi.SetBytes(buf)
	var e fr.Element
	e.SetBigInt(&bi)
	return bls12381Scalar{e}, nil
}

func (BLS12381) ScalarFromBigInt(v *big.Int) Scalar {
	var e fr.Element
	e.SetBigInt(v)
	return bls12381Scalar{e}
}

func (BLS12381) ScalarFromUint64(v uint64) Scalar {
	var e fr.Element
	e.SetUint64(v)
	return bls12381Scalar{e}
}

func (BLS12381) G1Add(a, b G1Point) G1Point {
	ap, bp := a.(bls12381G1), b.(bls12381G1)
	var aj, bj bls12381.G1Jac
	aj.FromAffine(&ap.p)
	bj.FromAffine(&bp.p)
	aj.AddAssign(&bj)
	var res bls12381.G1Affine
	res.FromJacobian(&aj)
	return bls12381G1{res}
}

func (BLS12381) G1Neg(a G1Point) G1Point {
	ap := a.(bls12381G1)
	res := ap.p
	res.Y.Neg(&ap.p.Y)
	return bls12381G1{res}
}

func (BLS12381) G1ScalarMult(a G1Point, s Scalar) G1Point {
	ap := a.(bls12381G1)
	var res bls12381.G1Affine
	res.ScalarMultiplication(&ap.p, s.BigInt())
	return bls12381G1{res}
}

func (BLS12381) G2Add(a, b G2Point) G2Point {
	ap, bp := a.(bls12381G2), b.(bls12381G2)
	var aj, bj bls12381.G2Jac
	aj.FromAffine(&ap.p)
	bj.FromAffine(&bp.p)
	aj.AddAssign(&bj)
	var res bls12381.G2Affine
	res.FromJacobian(&aj)
	return bls12381G2{res}
}

func (BLS12381) G2Neg(a G2Point) G2Point {
	ap := a.(bls12381G2)
	res := ap.p
	res.Y.Neg(&ap.p.Y)
	return bls12381G2{res}
}

func (BLS12381) G2ScalarMult(a G2Point, s Scalar) G2Point {
	ap := a.(bls12381G2)
	var res bls12381.G2Affine
	res.ScalarMultiplication(&ap.p, s.BigInt())
	return bls12381G2{res}
}

func (BLS12381) Pair(a G1Point, b G2Point) (GTElement, error) {
	ap, bp := a.(bls12381G1), b.(bls12381G2)
	gt, err := bls12381.Pair([]bls12381.G1Affine{ap.p}, []bls12381.G2Affine{bp.p})
	if err != nil {
		return nil, fmt.Errorf("curve: pairing: %w", err)
	}
	return bls12381GT{gt}, nil
}

func (e BLS12381) PairingsEqual(a1 G1Point, b1 G2Point, a2 G1Point, b2 G2Point) (bool, error) {
	left, err := e.Pair(a1, b1)
	if err != nil {
		return false, err
	}
	right, err := e.Pair(a2, b2)
	if err != nil {
		return false, err
	}
	return left.Equal(right), nil
}

func (BLS12381) G1Size(mode Mode) int {
	if mode == Compressed {
		return bls12381.SizeOfG1AffineCompressed
	}
	return bls12381.SizeOfG1AffineUncompressed
}

func (BLS12381) G2Size(mode Mode) int {
	if mode == Compressed {
		return bls12381.SizeOfG2AffineCompressed
	}
	return bls12381.SizeOfG2AffineUncompressed
}

func (BLS12381) EncodeG1(p G1Point, mode Mode) []byte {
	pt := p.(bls12381G1).p
	if mode == Compressed {
		b := pt.Bytes()
		return b[:]
	}
	b := pt.RawBytes()
	return b[:]
}

// DecodeG1 delegates the wire parsing itself to gnark-crypto's own
// SetBytes, which performs on-curve validation as an intrinsic part of
// decoding (there is no cheaper "structurally valid but off-curve" decode
// available) and auto-detects compressed vs. uncompressed from the length
// and flag bits of buf. CheckFullSubgroup adds the explicit subgroup
// membership test on top, per spec §4.1.
func (BLS12381) DecodeG1(buf []byte, mode Mode, check CheckMode, sg SubgroupCheckMode) (G1Point, error) {
	var p bls12381.G1Affine
	if _, err := p.SetBytes(buf); err != nil {
		return nil, classifyDecodeErr(buf, [2]int{bls12381.SizeOfG1AffineCompressed, bls12381.SizeOfG1AffineUncompressed}, err)
	}
	if check == CheckFullSubgroup && sg != SubgroupNo {
		if !p.IsInSubGroup() {
			return nil, subgroupErr()
		}
	}
	return bls12381G1{p}, nil
}

// DomainGenerator builds a radix-2 fft.Domain of the given cardinality and
// returns its generator/inverse-generator/inverse-cardinality as Scalars,
// per spec.md §4.5's "build a radix-2 evaluation domain of size M over Fr".
func (BLS12381) DomainGenerator(size uint64) (Scalar, Scalar, Scalar, error) {
	d := fft.NewDomain(size)
	if d.Cardinality != size {
		return nil, nil, nil, fmt.Errorf("curve: bls12-381 fr has no order-%d subgroup (got %d)", size, d.Cardinality)
	}
	return bls12381Scalar{d.Generator}, bls12381Scalar{d.GeneratorInv}, bls12381Scalar{d.CardinalityInv}, nil
}

func (BLS12381) EncodeG2(p G2Point, mode Mode) []byte {
	pt := p.(bls12381G2).p
	if mode == Compressed {
		b := pt.Bytes()
		return b[:]
	}
	b := pt.RawBytes()
	return b[:]
}

func (BLS12381) DecodeG2(buf []byte, mode Mode, check CheckMode) (G2Point, error) {
	var p bls12381.G2Affine
	if _, err := p.SetBytes(buf); err != nil {
		return nil, classifyDecodeErr(buf, [2]int{bls12381.SizeOfG2AffineCompressed, bls12381.SizeOfG2AffineUncompressed}, err)
	}
	if check == CheckFullSubgroup {
		if !p.IsInSubGroup() {
			return nil, subgroupErr()
		}
	}
	return bls12381G2{p}, nil
}
