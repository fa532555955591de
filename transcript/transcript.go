// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package transcript implements the chain verifier (spec.md §4.7): a linear
// replay over an ordered list of transitions, reusing phase1.VerifyTransition
// and phase2.Verify for each hop and accumulating the 64-byte hash of every
// contribution along the way. Grounded on the teacher's sequential
// contribution-chain replay in its ceremony CLI, generalized to both phases.
package transcript

import (
	"github.com/logical-mechanism/tau-mpc/errkind"
	"github.com/logical-mechanism/tau-mpc/phase1"
	"github.com/logical-mechanism/tau-mpc/phase2"
)

// Phase1Report is the result of a successful VerifyPhase1Chain: one 64-byte
// hash per transition, in order — each hop's contribution receipt
// (spec.md §6: Blake2b-512 of the new PublicKey's own bytes), not the
// accumulator's running hash.
type Phase1Report struct {
	Hashes [][64]byte
}

// VerifyPhase1Chain replays {A0, A1, ..., Ak}, applying phase1.VerifyTransition
// to every consecutive pair. The chain must have at least one element
// (A0, the initial accumulator); a chain of length 1 trivially verifies with
// zero transitions and zero hashes.
func VerifyPhase1Chain(chain []*phase1.Accumulator, opts phase1.VerifyOptions) (Phase1Report, error) {
	if len(chain) == 0 {
		return Phase1Report{}, errkind.New(errkind.NoContributions)
	}
	report := Phase1Report{}
	for i := 1; i < len(chain); i++ {
		ok, err := phase1.VerifyTransition(chain[i-1], chain[i], opts)
		if err != nil {
			return Phase1Report{}, err
		}
		if !ok {
			return Phase1Report{}, errkind.NewSection(errkind.InvariantBroken, errkind.SectionTranscript)
		}
		h, err := chain[i].ReceiptOf(len(chain[i].Contributions) - 1)
		if err != nil {
			return Phase1Report{}, err
		}
		report.Hashes = append(report.Hashes, h)
	}
	return report, nil
}

// Phase2Report mirrors Phase1Report for a Phase-2 chain; each hash is the
// receipt of that hop's newly appended PublicKey (Blake2b-512 of its wire
// encoding), matching what phase2.Contribute returns to its caller.
type Phase2Report struct {
	Hashes [][64]byte
}

// VerifyPhase2Chain replays a Phase-2 parameter chain the same way
// VerifyPhase1Chain does for Phase 1, independently of it (spec.md §4.7:
// "Phase 1 and Phase 2 transcripts are verified independently").
func VerifyPhase2Chain(chain []*phase2.MPCParameters) (Phase2Report, error) {
	if len(chain) == 0 {
		return Phase2Report{}, errkind.New(errkind.NoContributions)
	}
	report := Phase2Report{}
	for i := 1; i < len(chain); i++ {
		ok, err := phase2.Verify(chain[i-1], chain[i])
		if err != nil {
			return Phase2Report{}, err
		}
		if !ok {
			return Phase2Report{}, errkind.NewSection(errkind.InvariantBroken, errkind.SectionTranscript)
		}
		pk := chain[i].Contributions[len(chain[i].Contributions)-1]
		h, err := phase2.ReceiptHash(chain[i].Engine, pk)
		if err != nil {
			return Phase2Report{}, err
		}
		report.Hashes = append(report.Hashes, h)
	}
	return report, nil
}

// VerifyBeaconFinalization checks that final is exactly one valid Phase-1
// transition on top of last, produced deterministically from beaconHash
// (spec.md §4.7: "the beacon contribution is verified by the same rules as
// any other"). It is a thin wrapper over phase1.VerifyTransition plus a
// replay check that the beacon's own deterministic RNG would reproduce the
// same PublicKey — i.e. BeaconContribute(last, beaconHash, opts) lands on a
// byte-identical accumulator to final.
func VerifyBeaconFinalization(last, final *phase1.Accumulator, beaconHash []byte, opts phase1.ContributeOptions) (bool, error) {
	ok, err := phase1.VerifyTransition(last, final, phase1.VerifyOptions{BatchSize: opts.BatchSize, Subgroup: opts.Subgroup})
	if err != nil || !ok {
		return false, err
	}
	expected, err := phase1.BeaconContribute(last, beaconHash, opts)
	if err != nil {
		return false, err
	}
	expectedHash, err := expected.RunningHash()
	if err != nil {
		return false, err
	}
	finalHash, err := final.RunningHash()
	if err != nil {
		return false, err
	}
	if expectedHash != finalHash {
		return false, errkind.New(errkind.BeaconMismatch)
	}
	return true, nil
}
