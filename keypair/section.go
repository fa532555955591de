// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package keypair implements participant key generation, the Blake2b/ChaCha20
// hash-to-G2 map, and proof-of-knowledge verification shared by Phase 1's
// (τ, α, β) secrets and Phase 2's δ secret. Grounded on spec.md §4.3/§6 and
// original_source/phase2/src/parameters.rs's keypair/PoK pattern; field
// names (SG, SXG, XR) follow the real gnark mpcsetup.PublicKey layout
// surfaced in the retrieved mpcsetup/marshal.go reference.
package keypair

// Section domain-separates HashToG2 by which secret a PublicKey binds.
type Section byte

const (
	SectionTau Section = iota
	SectionAlpha
	SectionBeta
	SectionDelta
)
