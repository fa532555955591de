// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package keypair

import (
	"io"

	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/errkind"
)

// PublicKey is the per-secret proof-of-knowledge record spec.md §3/§6
// describes: (s·g1, x·s·g1) in G1 plus x·r in G2, where r itself is not
// stored — the verifier recomputes it from HashToG2 of the stored fields,
// which is what keeps the wire size at 2·G1+1·G2 per secret (§6: "6·G1 +
// 3·G2" for the three Phase-1 secrets together).
type PublicKey struct {
	SG  curve.G1Point // s · g1, a fresh blinding commitment
	SXG curve.G1Point // x · SG, where x is the secret this key binds
	XR  curve.G2Point // x · r, r = HashToG2(runningHash, section, SG, SXG)
}

// generateOne samples a fresh blinding s and uses secret x to build the
// PublicKey record for section, per spec.md §4.3.
func generateOne(e curve.Engine, runningHash []byte, section Section, x curve.Scalar, rng io.Reader) (PublicKey, error) {
	s, err := e.RandomScalar(rng)
	if err != nil {
		return PublicKey{}, errkind.Wrap(errkind.WeakRandomness, err)
	}
	if s.IsZero() {
		return PublicKey{}, errkind.New(errkind.WeakRandomness)
	}
	sg := e.G1ScalarMult(e.G1Generator(), s)
	sxg := e.G1ScalarMult(sg, x)

	r, err := HashToG2(e, runningHash, section, sg, sxg)
	if err != nil {
		return PublicKey{}, err
	}
	xr := e.G2ScalarMult(r, x)

	return PublicKey{SG: sg, SXG: sxg, XR: xr}, nil
}

// VerifyOne checks a single PublicKey's proof-of-knowledge against the
// running hash that produced it and the accumulator's before/after value
// for the bound secret's generator-point, per spec.md §4.3:
//
//	e(SG, XR) = e(SXG, r)                         -- scalar consistency across groups
//	e(prevGenG1, XR) = e(newGenG1, r)              -- binds the contribution to its predecessor
func VerifyOne(e curve.Engine, pk PublicKey, runningHash []byte, section Section, prevGenG1, newGenG1 curve.G1Point) (bool, error) {
	r, err := HashToG2(e, runningHash, section, pk.SG, pk.SXG)
	if err != nil {
		return false, err
	}
	ok1, err := e.PairingsEqual(pk.SG, pk.XR, pk.SXG, r)
	if err != nil {
		return false, err
	}
	ok2, err := e.PairingsEqual(prevGenG1, pk.XR, newGenG1, r)
	if err != nil {
		return false, err
	}
	return ok1 && ok2, nil
}

// Secrets holds the three Phase-1 scalars for the lifetime of a single
// contribution call; callers must not retain them past use (spec.md §5:
// "destroyed at end-of-scope").
type Secrets struct {
	Tau, Alpha, Beta curve.Scalar
}

// GenerateSecrets samples three independent non-zero Fr scalars.
func GenerateSecrets(e curve.Engine, rng io.Reader) (Secrets, error) {
	tau, err := nonZeroScalar(e, rng)
	if err != nil {
		return Secrets{}, err
	}
	alpha, err := nonZeroScalar(e, rng)
	if err != nil {
		return Secrets{}, err
	}
	beta, err := nonZeroScalar(e, rng)
	if err != nil {
		return Secrets{}, err
	}
	return Secrets{Tau: tau, Alpha: alpha, Beta: beta}, nil
}

func nonZeroScalar(e curve.Engine, rng io.Reader) (curve.Scalar, error) {
	s, err := e.RandomScalar(rng)
	if err != nil {
		return nil, errkind.Wrap(errkind.WeakRandomness, err)
	}
	if s.IsZero() {
		return nil, errkind.New(errkind.WeakRandomness)
	}
	return s, nil
}

// Phase1PublicKey is the full trailing contribution record for a Phase-1
// transition: one PoK per secret (τ, α, β).
type Phase1PublicKey struct {
	Tau, Alpha, Beta PublicKey
}

// GeneratePhase1PublicKey builds the three per-secret PoK records bound to
// runningHash (Blake2b-512 of the predecessor accumulator's bytes, §6).
func GeneratePhase1PublicKey(e curve.Engine, runningHash []byte, secrets Secrets, rng io.Reader) (Phase1PublicKey, error) {
	tauPK, err := generateOne(e, runningHash, SectionTau, secrets.Tau, rng)
	if err != nil {
		return Phase1PublicKey{}, err
	}
	alphaPK, err := generateOne(e, runningHash, SectionAlpha, secrets.Alpha, rng)
	if err != nil {
		return Phase1PublicKey{}, err
	}
	betaPK, err := generateOne(e, runningHash, SectionBeta, secrets.Beta, rng)
	if err != nil {
		return Phase1PublicKey{}, err
	}
	return Phase1PublicKey{Tau: tauPK, Alpha: alphaPK, Beta: betaPK}, nil
}

// Phase2PublicKey is the δ-only PoK record for a Phase-2 contribution, plus
// the new δ_g1 value the verifier needs without recomputing it (spec.md
// §3: "plus δ_after = the new δ_g1 value").
type Phase2PublicKey struct {
	PublicKey
	DeltaAfter curve.G1Point
}

// GeneratePhase2PublicKey builds the δ PoK record. bindHash is
// Blake2b-512(cs_hash ∥ encode(prior contributions)), per spec.md §4.6.
func GeneratePhase2PublicKey(e curve.Engine, bindHash []byte, delta curve.Scalar, prevDeltaG1 curve.G1Point, rng io.Reader) (Phase2PublicKey, error) {
	pk, err := generateOne(e, bindHash, SectionDelta, delta, rng)
	if err != nil {
		return Phase2PublicKey{}, err
	}
	deltaAfter := e.G1ScalarMult(prevDeltaG1, delta)
	return Phase2PublicKey{PublicKey: pk, DeltaAfter: deltaAfter}, nil
}

// VerifyPhase2PublicKey checks the δ PoK and the cross-group consistency
// of δ_after, per spec.md §4.6: "e(g1, after.δ_g2) = e(p.δ_after, g2)".
func VerifyPhase2PublicKey(e curve.Engine, pk Phase2PublicKey, bindHash []byte, prevDeltaG1 curve.G1Point, afterDeltaG2 curve.G2Point) (bool, error) {
	ok, err := VerifyOne(e, pk.PublicKey, bindHash, SectionDelta, prevDeltaG1, pk.DeltaAfter)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	crossOK, err := e.PairingsEqual(e.G1Generator(), afterDeltaG2, pk.DeltaAfter, e.G2Generator())
	if err != nil {
		return false, err
	}
	return crossOK, nil
}
