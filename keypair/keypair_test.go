// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package keypair

import (
	"crypto/rand"
	"testing"

	"github.com/logical-mechanism/tau-mpc/curve"
)

func TestHashToG2_Deterministic_SameInputSameOutput(t *testing.T) {
	e := curve.BLS12381{}
	sg := e.G1ScalarMult(e.G1Generator(), e.ScalarFromUint64(3))
	sxg := e.G1ScalarMult(e.G1Generator(), e.ScalarFromUint64(7))
	runningHash := []byte("fixed running hash for test")

	p1, err := HashToG2(e, runningHash, SectionTau, sg, sxg)
	if err != nil {
		t.Fatalf("HashToG2: %v", err)
	}
	p2, err := HashToG2(e, runningHash, SectionTau, sg, sxg)
	if err != nil {
		t.Fatalf("HashToG2: %v", err)
	}
	if !p1.Equal(p2) {
		t.Fatal("HashToG2 not deterministic for identical inputs")
	}
}

func TestHashToG2_SectionTag_ChangesOutput(t *testing.T) {
	e := curve.BLS12381{}
	sg := e.G1ScalarMult(e.G1Generator(), e.ScalarFromUint64(3))
	sxg := e.G1ScalarMult(e.G1Generator(), e.ScalarFromUint64(7))
	runningHash := []byte("fixed running hash for test")

	pTau, err := HashToG2(e, runningHash, SectionTau, sg, sxg)
	if err != nil {
		t.Fatalf("HashToG2: %v", err)
	}
	pAlpha, err := HashToG2(e, runningHash, SectionAlpha, sg, sxg)
	if err != nil {
		t.Fatalf("HashToG2: %v", err)
	}
	if pTau.Equal(pAlpha) {
		t.Fatal("different section tags produced the same G2 point")
	}
}

func TestGeneratePhase1PublicKey_PoKVerifies(t *testing.T) {
	e := curve.BLS12381{}
	runningHash := []byte("predecessor accumulator bytes")

	secrets, err := GenerateSecrets(e, rand.Reader)
	if err != nil {
		t.Fatalf("GenerateSecrets: %v", err)
	}
	pk, err := GeneratePhase1PublicKey(e, runningHash, secrets, rand.Reader)
	if err != nil {
		t.Fatalf("GeneratePhase1PublicKey: %v", err)
	}

	prevTauG1 := e.G1Generator() // accumulator head before the transform
	newTauG1 := e.G1ScalarMult(prevTauG1, secrets.Tau)

	ok, err := VerifyOne(e, pk.Tau, runningHash, SectionTau, prevTauG1, newTauG1)
	if err != nil {
		t.Fatalf("VerifyOne: %v", err)
	}
	if !ok {
		t.Fatal("PoK failed to verify for an honestly generated contribution")
	}
}

func TestVerifyOne_WrongPredecessor_Fails(t *testing.T) {
	e := curve.BLS12381{}
	runningHash := []byte("predecessor accumulator bytes")

	secrets, err := GenerateSecrets(e, rand.Reader)
	if err != nil {
		t.Fatalf("GenerateSecrets: %v", err)
	}
	pk, err := GeneratePhase1PublicKey(e, runningHash, secrets, rand.Reader)
	if err != nil {
		t.Fatalf("GeneratePhase1PublicKey: %v", err)
	}

	// The honest update moved g1 to τ·g1; claiming it was applied on top of a
	// different predecessor breaks the ratio the second pairing checks.
	wrongPrev := e.G1ScalarMult(e.G1Generator(), e.ScalarFromUint64(999))
	honestNew := e.G1ScalarMult(e.G1Generator(), secrets.Tau)

	ok, err := VerifyOne(e, pk.Tau, runningHash, SectionTau, wrongPrev, honestNew)
	if err != nil {
		t.Fatalf("VerifyOne: %v", err)
	}
	if ok {
		t.Fatal("PoK verified against a predecessor it was never bound to")
	}
}

func TestGeneratePhase2PublicKey_PoKAndDeltaConsistency(t *testing.T) {
	e := curve.BLS12381{}
	bindHash := []byte("cs_hash || encode(contributions)")

	delta, err := nonZeroScalar(e, rand.Reader)
	if err != nil {
		t.Fatalf("nonZeroScalar: %v", err)
	}
	prevDeltaG1 := e.G1Generator()
	prevDeltaG2 := e.G2Generator()

	pk, err := GeneratePhase2PublicKey(e, bindHash, delta, prevDeltaG1, rand.Reader)
	if err != nil {
		t.Fatalf("GeneratePhase2PublicKey: %v", err)
	}
	afterDeltaG2 := e.G2ScalarMult(prevDeltaG2, delta)

	ok, err := VerifyPhase2PublicKey(e, pk, bindHash, prevDeltaG1, afterDeltaG2)
	if err != nil {
		t.Fatalf("VerifyPhase2PublicKey: %v", err)
	}
	if !ok {
		t.Fatal("phase-2 PoK failed to verify for an honest contribution")
	}
}

func TestMergePairs_Deterministic_SameSeed(t *testing.T) {
	e := curve.BLS12381{}
	before := []curve.G1Point{
		e.G1ScalarMult(e.G1Generator(), e.ScalarFromUint64(2)),
		e.G1ScalarMult(e.G1Generator(), e.ScalarFromUint64(3)),
	}
	after := []curve.G1Point{
		e.G1ScalarMult(e.G1Generator(), e.ScalarFromUint64(20)),
		e.G1ScalarMult(e.G1Generator(), e.ScalarFromUint64(30)),
	}
	rng1 := NewTranscriptRNG([]byte("seed"))
	rng2 := NewTranscriptRNG([]byte("seed"))

	b1, a1, err := MergePairs(e, before, after, rng1)
	if err != nil {
		t.Fatalf("MergePairs: %v", err)
	}
	b2, a2, err := MergePairs(e, before, after, rng2)
	if err != nil {
		t.Fatalf("MergePairs: %v", err)
	}
	if !b1.Equal(b2) || !a1.Equal(a2) {
		t.Fatal("MergePairs not deterministic across independently-seeded equal transcripts")
	}
}
