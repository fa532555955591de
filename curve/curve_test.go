// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package curve

import (
	"crypto/rand"
	"math/big"
	"testing"
)

func engines() map[string]Engine {
	return map[string]Engine{"bls12-381": BLS12381{}, "bn254": BN254{}}
}

func TestByName_KnownCurve_ReturnsEngine(t *testing.T) {
	for _, name := range []string{"bls12-381", "bls12381", "bn254"} {
		if _, err := ByName(name); err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
	}
}

func TestByName_UnknownCurve_Errors(t *testing.T) {
	if _, err := ByName("secp256k1"); err == nil {
		t.Fatal("expected error for unknown curve")
	}
}

func TestEngine_G1RoundTrip_CompressedAndUncompressed(t *testing.T) {
	for name, e := range engines() {
		t.Run(name, func(t *testing.T) {
			s := e.ScalarFromUint64(12345)
			p := e.G1ScalarMult(e.G1Generator(), s)

			for _, mode := range []Mode{Compressed, Uncompressed} {
				buf := e.EncodeG1(p, mode)
				if len(buf) != e.G1Size(mode) {
					t.Fatalf("mode %v: encoded length %d, want %d", mode, len(buf), e.G1Size(mode))
				}
				got, err := e.DecodeG1(buf, mode, CheckFullSubgroup, SubgroupAuto)
				if err != nil {
					t.Fatalf("mode %v: decode: %v", mode, err)
				}
				if !got.Equal(p) {
					t.Fatalf("mode %v: round trip mismatch", mode)
				}
			}
		})
	}
}

func TestEngine_G2RoundTrip_CompressedAndUncompressed(t *testing.T) {
	for name, e := range engines() {
		t.Run(name, func(t *testing.T) {
			s := e.ScalarFromUint64(98765)
			p := e.G2ScalarMult(e.G2Generator(), s)

			for _, mode := range []Mode{Compressed, Uncompressed} {
				buf := e.EncodeG2(p, mode)
				got, err := e.DecodeG2(buf, mode, CheckFullSubgroup)
				if err != nil {
					t.Fatalf("mode %v: decode: %v", mode, err)
				}
				if !got.Equal(p) {
					t.Fatalf("mode %v: round trip mismatch", mode)
				}
			}
		})
	}
}

func TestEngine_DecodeG1_WrongLength_Errors(t *testing.T) {
	for name, e := range engines() {
		t.Run(name, func(t *testing.T) {
			if _, err := e.DecodeG1(make([]byte, 3), Compressed, CheckOnCurve, SubgroupAuto); err == nil {
				t.Fatal("expected error for short buffer")
			}
		})
	}
}

func TestEngine_ScalarMult_IsAdditiveHomomorphic(t *testing.T) {
	for name, e := range engines() {
		t.Run(name, func(t *testing.T) {
			a := e.ScalarFromUint64(7)
			b := e.ScalarFromUint64(11)
			sum := a.Add(b)

			lhs := e.G1ScalarMult(e.G1Generator(), sum)
			rhs := e.G1Add(e.G1ScalarMult(e.G1Generator(), a), e.G1ScalarMult(e.G1Generator(), b))
			if !lhs.Equal(rhs) {
				t.Fatal("(a+b)*G != a*G + b*G")
			}
		})
	}
}

func TestEngine_Neg_CancelsToIdentity(t *testing.T) {
	for name, e := range engines() {
		t.Run(name, func(t *testing.T) {
			p := e.G1ScalarMult(e.G1Generator(), e.ScalarFromUint64(42))
			sum := e.G1Add(p, e.G1Neg(p))
			if !sum.IsIdentity() {
				t.Fatal("p + (-p) did not collapse to identity")
			}
		})
	}
}

func TestEngine_PairingsEqual_BilinearCheck(t *testing.T) {
	for name, e := range engines() {
		t.Run(name, func(t *testing.T) {
			a := e.ScalarFromUint64(4)
			b := e.ScalarFromUint64(6)
			// e(a*G1, b*G2) == e((a*b)*G1, G2)
			left1 := e.G1ScalarMult(e.G1Generator(), a)
			left2 := e.G2ScalarMult(e.G2Generator(), b)
			ab := a.Mul(b)
			right1 := e.G1ScalarMult(e.G1Generator(), ab)
			right2 := e.G2Generator()

			ok, err := e.PairingsEqual(left1, left2, right1, right2)
			if err != nil {
				t.Fatalf("pairing: %v", err)
			}
			if !ok {
				t.Fatal("e(aG1,bG2) != e(abG1,G2)")
			}
		})
	}
}

func TestEngine_RandomScalar_NonZero(t *testing.T) {
	for name, e := range engines() {
		t.Run(name, func(t *testing.T) {
			s1, err := e.RandomScalar(rand.Reader)
			if err != nil {
				t.Fatalf("random scalar: %v", err)
			}
			if s1.IsZero() {
				t.Fatal("random scalar unexpectedly zero")
			}
		})
	}
}

func TestScalar_InverseOfZero_Fails(t *testing.T) {
	for name, e := range engines() {
		t.Run(name, func(t *testing.T) {
			zero := e.ScalarFromBigInt(big.NewInt(0))
			if _, ok := zero.Inverse(); ok {
				t.Fatal("expected inverse of zero to fail")
			}
		})
	}
}

func TestScalar_InverseRoundTrip(t *testing.T) {
	for name, e := range engines() {
		t.Run(name, func(t *testing.T) {
			s := e.ScalarFromUint64(9)
			inv, ok := s.Inverse()
			if !ok {
				t.Fatal("inverse failed for nonzero scalar")
			}
			prod := s.Mul(inv)
			one := e.ScalarFromUint64(1)
			if prod.BigInt().Cmp(one.BigInt()) != 0 {
				t.Fatalf("s * s^-1 = %v, want 1", prod.BigInt())
			}
		})
	}
}
