// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package phase2

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/logical-mechanism/tau-mpc/bridge"
	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/phase1"
	"github.com/logical-mechanism/tau-mpc/phase2/testcircuit"
)

func buildParams(t *testing.T) (*bridge.Groth16Params, curve.Engine) {
	t.Helper()
	e := curve.BLS12381{}
	a0, err := phase1.NewInitial(e, 3, curve.Compressed)
	if err != nil {
		t.Fatalf("NewInitial: %v", err)
	}
	a1, err := a0.Contribute(rand.Reader, phase1.ContributeOptions{BatchSize: 4})
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	gp, err := bridge.ToGroth16Params(a1, 4, 4)
	if err != nil {
		t.Fatalf("ToGroth16Params: %v", err)
	}
	return gp, e
}

func TestInitialize_BuildsExpectedVectorLengths(t *testing.T) {
	gp, e := buildParams(t)
	qap := testcircuit.Build(e)
	mp, err := Initialize(e, qap, gp)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(mp.AQuery) != qap.NumVars() || len(mp.BG1Query) != qap.NumVars() || len(mp.BG2Query) != qap.NumVars() {
		t.Fatalf("unexpected query vector lengths")
	}
	if len(mp.GammaAbcG1) != qap.NumPublic {
		t.Fatalf("unexpected gamma_abc length: %d", len(mp.GammaAbcG1))
	}
	if len(mp.LQuery) != qap.NumWitness {
		t.Fatalf("unexpected l_query length: %d", len(mp.LQuery))
	}
	if !mp.DeltaG1.Equal(e.G1Generator()) || !mp.DeltaG2.Equal(e.G2Generator()) {
		t.Fatalf("expected delta=1 at initialization")
	}
}

func TestContribute_ThenVerify_Succeeds(t *testing.T) {
	gp, e := buildParams(t)
	qap := testcircuit.Build(e)
	mp0, err := Initialize(e, qap, gp)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	mp1, _, err := Contribute(mp0, rand.Reader)
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	ok, err := Verify(mp0, mp1)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected a fresh contribution to verify")
	}

	mp2, _, err := Contribute(mp1, rand.Reader)
	if err != nil {
		t.Fatalf("second Contribute: %v", err)
	}
	ok, err = Verify(mp1, mp2)
	if err != nil {
		t.Fatalf("Verify (second hop): %v", err)
	}
	if !ok {
		t.Fatal("expected the second contribution to verify against the first")
	}
	if ok, _ := Verify(mp0, mp2); ok {
		t.Fatal("a two-hop jump must not verify as a single transition")
	}
}

func TestSplitThenCombine_RoundTrips(t *testing.T) {
	gp, e := buildParams(t)
	qap := testcircuit.Build(e)
	mp0, err := Initialize(e, qap, gp)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	chunks := Split(mp0, 1)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks of size 1, got %d", len(chunks))
	}
	combined, err := Combine(mp0, chunks)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if len(combined.HQuery) != len(mp0.HQuery) || len(combined.LQuery) != len(mp0.LQuery) {
		t.Fatalf("combine lost elements: h=%d/%d l=%d/%d", len(combined.HQuery), len(mp0.HQuery), len(combined.LQuery), len(mp0.LQuery))
	}
	for i := range mp0.HQuery {
		if !combined.HQuery[i].Equal(mp0.HQuery[i]) {
			t.Fatalf("h_query[%d] mismatch after split/combine", i)
		}
	}
}

func TestCombine_InconsistentDelta_Rejected(t *testing.T) {
	gp, e := buildParams(t)
	qap := testcircuit.Build(e)
	mp0, err := Initialize(e, qap, gp)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	chunks := Split(mp0, 1)
	if len(chunks) < 2 {
		t.Fatal("need at least 2 chunks for this test")
	}
	tampered, _, err := Contribute(chunks[0], rand.Reader)
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	chunks[0] = tampered
	if _, err := Combine(mp0, chunks); err == nil {
		t.Fatal("expected InconsistentDelta when one chunk's delta diverges")
	}
}

func TestWriteToThenReadFrom_RoundTrips(t *testing.T) {
	gp, e := buildParams(t)
	qap := testcircuit.Build(e)
	mp0, err := Initialize(e, qap, gp)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	mp1, _, err := Contribute(mp0, rand.Reader)
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}

	var buf bytes.Buffer
	if _, err := mp1.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	roundTripped, err := ReadFrom(&buf, e)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if roundTripped.CsHash != mp1.CsHash {
		t.Fatal("cs_hash did not round-trip")
	}
	if len(roundTripped.Contributions) != len(mp1.Contributions) {
		t.Fatalf("contribution count did not round-trip: got %d want %d", len(roundTripped.Contributions), len(mp1.Contributions))
	}
	ok, err := Verify(mp0, roundTripped)
	if err != nil {
		t.Fatalf("Verify after round trip: %v", err)
	}
	if !ok {
		t.Fatal("round-tripped parameters should still verify against mp0")
	}
}
