// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package phase1

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/errkind"
)

func TestContribute_ThenVerifyTransition_Succeeds(t *testing.T) {
	e := curve.BLS12381{}
	a0, err := NewInitial(e, 3, curve.Compressed)
	if err != nil {
		t.Fatalf("NewInitial: %v", err)
	}

	a1, err := a0.Contribute(rand.Reader, ContributeOptions{BatchSize: 4})
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}

	ok, err := VerifyTransition(a0, a1, VerifyOptions{BatchSize: 4})
	if err != nil {
		t.Fatalf("VerifyTransition: %v", err)
	}
	if !ok {
		t.Fatal("expected transition to verify")
	}
}

func TestVerifyTransition_SameAccumulatorTwice_NoContributions(t *testing.T) {
	e := curve.BLS12381{}
	a0, err := NewInitial(e, 3, curve.Compressed)
	if err != nil {
		t.Fatalf("NewInitial: %v", err)
	}

	_, err = VerifyTransition(a0, a0, VerifyOptions{BatchSize: 4})
	if err == nil {
		t.Fatal("expected an error verifying an accumulator against itself")
	}
	var kindErr *errkind.Error
	if !errors.As(err, &kindErr) || kindErr.Kind != errkind.NoContributions {
		t.Fatalf("expected NoContributions, got %v", err)
	}
}

func TestVerifyTransition_TamperedElement_Rejected(t *testing.T) {
	e := curve.BLS12381{}
	a0, err := NewInitial(e, 3, curve.Compressed)
	if err != nil {
		t.Fatalf("NewInitial: %v", err)
	}
	a1, err := a0.Contribute(rand.Reader, ContributeOptions{BatchSize: 4})
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}

	raw := a1.Region.Bytes()
	off := a1.Sections.AlphaG1.At(e, 2)
	raw[off] ^= 0xFF

	ok, err := VerifyTransition(a0, a1, VerifyOptions{BatchSize: 4})
	if err == nil && ok {
		t.Fatal("expected tampered accumulator to fail verification")
	}
}

func TestBeaconContribute_Deterministic(t *testing.T) {
	e := curve.BLS12381{}
	beaconHash := bytes.Repeat([]byte{0x42}, 32)

	a0, err := NewInitial(e, 3, curve.Compressed)
	if err != nil {
		t.Fatalf("NewInitial: %v", err)
	}

	a1, err := BeaconContribute(a0, beaconHash, ContributeOptions{BatchSize: 4})
	if err != nil {
		t.Fatalf("BeaconContribute (run 1): %v", err)
	}
	a2, err := BeaconContribute(a0, beaconHash, ContributeOptions{BatchSize: 4})
	if err != nil {
		t.Fatalf("BeaconContribute (run 2): %v", err)
	}

	var buf1, buf2 bytes.Buffer
	if _, err := a1.WriteTo(&buf1); err != nil {
		t.Fatalf("WriteTo a1: %v", err)
	}
	if _, err := a2.WriteTo(&buf2); err != nil {
		t.Fatalf("WriteTo a2: %v", err)
	}
	if !bytes.Equal(buf1.Bytes(), buf2.Bytes()) {
		t.Fatal("two beacon contributions with the same beacon hash diverged")
	}
}

func TestAccumulator_WriteThenReadFrom_RoundTrips(t *testing.T) {
	e := curve.BLS12381{}
	a0, err := NewInitial(e, 2, curve.Uncompressed)
	if err != nil {
		t.Fatalf("NewInitial: %v", err)
	}
	a1, err := a0.Contribute(rand.Reader, ContributeOptions{BatchSize: 3})
	if err != nil {
		t.Fatalf("Contribute: %v", err)
	}

	var buf bytes.Buffer
	if _, err := a1.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := ReadFrom(&buf, e, a1.Power, a1.Mode, len(a1.Contributions))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if !bytes.Equal(got.Region.Bytes(), a1.Region.Bytes()) {
		t.Fatal("round-tripped accumulator body differs")
	}
	if len(got.Contributions) != len(a1.Contributions) {
		t.Fatalf("contribution count mismatch: got %d want %d", len(got.Contributions), len(a1.Contributions))
	}
}
