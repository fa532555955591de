// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package phase1

import (
	"io"

	"github.com/logical-mechanism/tau-mpc/batch"
	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/errkind"
	"github.com/logical-mechanism/tau-mpc/internal/mmapio"
	"github.com/logical-mechanism/tau-mpc/keypair"
)

// ContributeOptions configures the batch engine and validation strictness
// used by Contribute; the zero value is a safe default (on-curve checks,
// engine's default batch size).
type ContributeOptions struct {
	BatchSize int
	Check     curve.CheckMode
	Subgroup  curve.SubgroupCheckMode
}

func (o ContributeOptions) normalize() ContributeOptions {
	if o.Check == curve.CheckNone {
		o.Check = curve.CheckOnCurve
	}
	return o
}

// Contribute applies a fresh participant's (τ, α, β) secrets to a, per
// spec.md §4.4:
//
//	τ_g1[i] ← τⁱ · A.τ_g1[i]   τ_g2[i] ← τⁱ · A.τ_g2[i]
//	α_g1[i] ← α·τⁱ · A.α_g1[i]  β_g1[i] ← β·τⁱ · A.β_g1[i]
//	β_g2    ← β · A.β_g2
//
// and appends the resulting PublicKey. The secrets are local to this call
// and never escape it (spec.md §5: "destroyed at end-of-scope"). rng must
// be cryptographically strong; it is never retained.
func (a *Accumulator) Contribute(rng io.Reader, opts ContributeOptions) (*Accumulator, error) {
	opts = opts.normalize()
	e := a.Engine

	runningHash, err := a.RunningHash()
	if err != nil {
		return nil, err
	}

	secrets, err := keypair.GenerateSecrets(e, rng)
	if err != nil {
		return nil, err
	}

	next := &Accumulator{
		Engine:        e,
		Power:         a.Power,
		Mode:          a.Mode,
		Region:        mmapio.Wrap(append([]byte(nil), a.Region.Bytes()...)),
		Sections:      a.Sections,
		Contributions: append([]keypair.Phase1PublicKey(nil), a.Contributions...),
	}

	eng := batch.New(e, opts.BatchSize)

	if err := eng.ExpG1Geometric(next.Region, next.Sections.TauG1, secrets.Tau, 0, batch.ExpAuto, opts.Check, opts.Subgroup); err != nil {
		return nil, err
	}
	if err := eng.ExpG2Geometric(next.Region, next.Sections.TauG2, secrets.Tau, 0, batch.ExpAuto, opts.Check); err != nil {
		return nil, err
	}
	// α_g1 and β_g1 move by the same τ-geometric factor as τ_g1, then by
	// their own uniform scalar — the two steps commute, since both are
	// scalar multiplications of the same group element.
	if err := eng.ExpG1Geometric(next.Region, next.Sections.AlphaG1, secrets.Tau, 0, batch.ExpAuto, opts.Check, opts.Subgroup); err != nil {
		return nil, err
	}
	if err := eng.ExpG1Scalar(next.Region, next.Sections.AlphaG1, secrets.Alpha, opts.Check, opts.Subgroup); err != nil {
		return nil, err
	}
	if err := eng.ExpG1Geometric(next.Region, next.Sections.BetaG1, secrets.Tau, 0, batch.ExpAuto, opts.Check, opts.Subgroup); err != nil {
		return nil, err
	}
	if err := eng.ExpG1Scalar(next.Region, next.Sections.BetaG1, secrets.Beta, opts.Check, opts.Subgroup); err != nil {
		return nil, err
	}
	if err := eng.ExpG2Scalar(next.Region, next.Sections.BetaG2, secrets.Beta, opts.Check); err != nil {
		return nil, err
	}

	pk, err := keypair.GeneratePhase1PublicKey(e, runningHash[:], secrets, rng)
	if err != nil {
		return nil, err
	}
	next.Contributions = append(next.Contributions, pk)

	return next, nil
}

// ReceiptOf returns the spec.md §6 contribution receipt — Blake2b-512 of
// the PublicKey's own encoded bytes — for the contribution at position index
// in a.Contributions.
func (a *Accumulator) ReceiptOf(index int) ([64]byte, error) {
	if index < 0 || index >= len(a.Contributions) {
		return [64]byte{}, errkind.New(errkind.NoContributions)
	}
	var buf writeCounter
	if err := writePublicKey(a.Engine, &buf, a.Contributions[index]); err != nil {
		return [64]byte{}, err
	}
	return blake2b512(buf.bytes), nil
}

// writeCounter is a minimal io.Writer accumulating bytes in memory, used
// only to reuse writePublicKey's encoding logic for the receipt hash.
type writeCounter struct{ bytes []byte }

func (w *writeCounter) Write(p []byte) (int, error) {
	w.bytes = append(w.bytes, p...)
	return len(p), nil
}
