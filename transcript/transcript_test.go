// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package transcript

import (
	"crypto/rand"
	"testing"

	"github.com/logical-mechanism/tau-mpc/bridge"
	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/phase1"
	"github.com/logical-mechanism/tau-mpc/phase2"
	"github.com/logical-mechanism/tau-mpc/phase2/testcircuit"
)

func TestVerifyPhase1Chain_TwoContributorsThenBeacon(t *testing.T) {
	e := curve.BLS12381{}
	a0, err := phase1.NewInitial(e, 3, curve.Compressed)
	if err != nil {
		t.Fatalf("NewInitial: %v", err)
	}
	opts := phase1.ContributeOptions{BatchSize: 4}
	a1, err := a0.Contribute(rand.Reader, opts)
	if err != nil {
		t.Fatalf("contribute 1: %v", err)
	}
	a2, err := a1.Contribute(rand.Reader, opts)
	if err != nil {
		t.Fatalf("contribute 2: %v", err)
	}
	beaconHash := make([]byte, 32)
	for i := range beaconHash {
		beaconHash[i] = byte(i)
	}
	a3, err := phase1.BeaconContribute(a2, beaconHash, opts)
	if err != nil {
		t.Fatalf("beacon contribute: %v", err)
	}

	report, err := VerifyPhase1Chain([]*phase1.Accumulator{a0, a1, a2, a3}, phase1.VerifyOptions{BatchSize: 4})
	if err != nil {
		t.Fatalf("VerifyPhase1Chain: %v", err)
	}
	if len(report.Hashes) != 3 {
		t.Fatalf("expected 3 hop hashes, got %d", len(report.Hashes))
	}

	ok, err := VerifyBeaconFinalization(a2, a3, beaconHash, opts)
	if err != nil {
		t.Fatalf("VerifyBeaconFinalization: %v", err)
	}
	if !ok {
		t.Fatal("expected beacon finalization to verify")
	}
}

func TestVerifyPhase2Chain_TwoContributors(t *testing.T) {
	e := curve.BLS12381{}
	a0, err := phase1.NewInitial(e, 3, curve.Compressed)
	if err != nil {
		t.Fatalf("NewInitial: %v", err)
	}
	a1, err := a0.Contribute(rand.Reader, phase1.ContributeOptions{BatchSize: 4})
	if err != nil {
		t.Fatalf("phase1 contribute: %v", err)
	}
	gp, err := bridge.ToGroth16Params(a1, 4, 4)
	if err != nil {
		t.Fatalf("ToGroth16Params: %v", err)
	}
	mp0, err := phase2.Initialize(e, testcircuit.Build(e), gp)
	if err != nil {
		t.Fatalf("phase2.Initialize: %v", err)
	}
	mp1, _, err := phase2.Contribute(mp0, rand.Reader)
	if err != nil {
		t.Fatalf("phase2.Contribute 1: %v", err)
	}
	mp2, _, err := phase2.Contribute(mp1, rand.Reader)
	if err != nil {
		t.Fatalf("phase2.Contribute 2: %v", err)
	}

	report, err := VerifyPhase2Chain([]*phase2.MPCParameters{mp0, mp1, mp2})
	if err != nil {
		t.Fatalf("VerifyPhase2Chain: %v", err)
	}
	if len(report.Hashes) != 2 {
		t.Fatalf("expected 2 hop hashes, got %d", len(report.Hashes))
	}
}

func TestVerifyPhase1Chain_EmptyChain_Errors(t *testing.T) {
	if _, err := VerifyPhase1Chain(nil, phase1.VerifyOptions{}); err == nil {
		t.Fatal("expected an error for an empty chain")
	}
}
