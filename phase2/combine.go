// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package phase2

import (
	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/errkind"
)

// Split partitions mp's h_query and l_query into chunks of at most
// chunkSize elements each, per spec.md §4.6's chunked-contribution mode.
// Every returned chunk shares mp's a/b/γ_abc/δ/cs_hash/contribution fields
// by reference — only h_query and l_query differ per chunk, since those are
// the only vectors Contribute ever rescales.
func Split(mp *MPCParameters, chunkSize int) []*MPCParameters {
	if chunkSize <= 0 {
		chunkSize = 1
	}
	n := chunkCount(len(mp.HQuery), len(mp.LQuery), chunkSize)
	chunks := make([]*MPCParameters, n)
	for i := 0; i < n; i++ {
		chunks[i] = &MPCParameters{
			Engine:        mp.Engine,
			AlphaG1:       mp.AlphaG1,
			BetaG1:        mp.BetaG1,
			BetaG2:        mp.BetaG2,
			GammaG2:       mp.GammaG2,
			DeltaG1:       mp.DeltaG1,
			DeltaG2:       mp.DeltaG2,
			AQuery:        mp.AQuery,
			BG1Query:      mp.BG1Query,
			BG2Query:      mp.BG2Query,
			GammaAbcG1:    mp.GammaAbcG1,
			HQuery:        sliceChunk(mp.HQuery, i, chunkSize),
			LQuery:        sliceChunk(mp.LQuery, i, chunkSize),
			CsHash:        mp.CsHash,
			Contributions: mp.Contributions,
		}
	}
	return chunks
}

func chunkCount(hLen, lLen, chunkSize int) int {
	ch := func(n int) int {
		if n == 0 {
			return 0
		}
		return (n + chunkSize - 1) / chunkSize
	}
	hc, lc := ch(hLen), ch(lLen)
	if hc > lc {
		return hc
	}
	return lc
}

func sliceChunk[T any](vec []T, i, chunkSize int) []T {
	lo := i * chunkSize
	if lo >= len(vec) {
		return nil
	}
	hi := lo + chunkSize
	if hi > len(vec) {
		hi = len(vec)
	}
	return append([]T(nil), vec[lo:hi]...)
}

// Combine reassembles chunks produced by independently contributed-to
// Split() outputs back into one MPCParameters, per spec.md §4.6's
// "Combine(chunks)": every chunk must agree on δ_g1/δ_g2 and on the
// contribution list (a chunked contributor samples one δ and applies it to
// every chunk, so disagreement means chunks were mixed from different
// contributions). template supplies the shared a/b/γ_abc/cs_hash fields
// (any chunk works, since Split never mutates them).
func Combine(template *MPCParameters, chunks []*MPCParameters) (*MPCParameters, error) {
	if len(chunks) == 0 {
		return nil, errkind.New(errkind.ChunkMismatch)
	}
	first := chunks[0]
	for _, c := range chunks[1:] {
		if !c.DeltaG1.Equal(first.DeltaG1) || !c.DeltaG2.Equal(first.DeltaG2) {
			return nil, errkind.New(errkind.InconsistentDelta)
		}
		if len(c.Contributions) != len(first.Contributions) {
			return nil, errkind.New(errkind.ChunkMismatch)
		}
		for i := range c.Contributions {
			if !phase2PKEqual(c.Contributions[i], first.Contributions[i]) {
				return nil, errkind.New(errkind.ChunkMismatch)
			}
		}
	}

	return &MPCParameters{
		Engine:        template.Engine,
		AlphaG1:       template.AlphaG1,
		BetaG1:        template.BetaG1,
		BetaG2:        template.BetaG2,
		GammaG2:       template.GammaG2,
		DeltaG1:       first.DeltaG1,
		DeltaG2:       first.DeltaG2,
		AQuery:        template.AQuery,
		BG1Query:      template.BG1Query,
		BG2Query:      template.BG2Query,
		GammaAbcG1:    template.GammaAbcG1,
		HQuery:        concatHQuery(chunks),
		LQuery:        concatLQuery(chunks),
		CsHash:        template.CsHash,
		Contributions: first.Contributions,
	}, nil
}

func concatHQuery(chunks []*MPCParameters) []curve.G1Point {
	var out []curve.G1Point
	for _, c := range chunks {
		out = append(out, c.HQuery...)
	}
	return out
}

func concatLQuery(chunks []*MPCParameters) []curve.G1Point {
	var out []curve.G1Point
	for _, c := range chunks {
		out = append(out, c.LQuery...)
	}
	return out
}
