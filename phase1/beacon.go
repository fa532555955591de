// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package phase1

import "github.com/logical-mechanism/tau-mpc/keypair"

// BeaconContribute applies the final, beacon-seeded contribution of
// spec.md §4.7: "a deterministic RNG seeded by a fixed public beacon hash
// acts as the last contributor". It reuses keypair.NewTranscriptRNG (the
// same Blake2b-seeded ChaCha8 stream the merge_pairs check draws ρ from) as
// the entropy source for Contribute, so two independent runs given the same
// beaconHash produce byte-identical transcripts and contribution receipts
// (spec.md §8 invariant 10 / scenario S5) — nothing about Contribute itself
// needs to change for a deterministic contributor.
func BeaconContribute(a *Accumulator, beaconHash []byte, opts ContributeOptions) (*Accumulator, error) {
	rng := keypair.NewTranscriptRNG(beaconHash)
	return a.Contribute(rng, opts)
}
