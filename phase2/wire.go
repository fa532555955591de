// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package phase2

import (
	"encoding/binary"
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/keypair"
)

// writeCounter is an in-memory io.Writer, used the same way phase1.ReceiptOf
// hashes a PublicKey: build the exact byte image once, then hash or transmit
// it, instead of a streaming hasher threaded through every call site.
type writeCounter struct{ bytes []byte }

func (w *writeCounter) Write(p []byte) (int, error) {
	w.bytes = append(w.bytes, p...)
	return len(p), nil
}

// wireMode is the point encoding phase2's wire format and cs_hash use.
// Parameters are exchanged and archived rather than hashed at high frequency
// the way Phase-1 accumulators are, so there is no compressed/uncompressed
// knob here the way phase1.Accumulator has one — uncompressed throughout,
// matching spec.md §6's PublicKey convention.
const wireMode = curve.Uncompressed

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func writeG1Vec(w io.Writer, e curve.Engine, vec []curve.G1Point) error {
	if err := writeUint32(w, uint32(len(vec))); err != nil {
		return err
	}
	for _, p := range vec {
		if _, err := w.Write(e.EncodeG1(p, wireMode)); err != nil {
			return err
		}
	}
	return nil
}

func writeG2Vec(w io.Writer, e curve.Engine, vec []curve.G2Point) error {
	if err := writeUint32(w, uint32(len(vec))); err != nil {
		return err
	}
	for _, p := range vec {
		if _, err := w.Write(e.EncodeG2(p, wireMode)); err != nil {
			return err
		}
	}
	return nil
}

func readG1Vec(r io.Reader, e curve.Engine) ([]curve.G1Point, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	size := e.G1Size(wireMode)
	out := make([]curve.G1Point, n)
	buf := make([]byte, size)
	for i := range out {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		p, err := e.DecodeG1(buf, wireMode, curve.CheckOnCurve, curve.SubgroupAuto)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func readG2Vec(r io.Reader, e curve.Engine) ([]curve.G2Point, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	size := e.G2Size(wireMode)
	out := make([]curve.G2Point, n)
	buf := make([]byte, size)
	for i := range out {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		p, err := e.DecodeG2(buf, wireMode, curve.CheckOnCurve)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// writeFixedParams writes every field of mp except Contributions and
// CsHash, in a stable order — the byte image canonicalHash digests and
// WriteTo prefixes onto the trailing contribution list.
func writeFixedParams(w io.Writer, mp *MPCParameters) error {
	e := mp.Engine
	for _, fn := range []func() error{
		func() error { _, err := w.Write(e.EncodeG1(mp.AlphaG1, wireMode)); return err },
		func() error { _, err := w.Write(e.EncodeG1(mp.BetaG1, wireMode)); return err },
		func() error { _, err := w.Write(e.EncodeG2(mp.BetaG2, wireMode)); return err },
		func() error { _, err := w.Write(e.EncodeG2(mp.GammaG2, wireMode)); return err },
		func() error { _, err := w.Write(e.EncodeG1(mp.DeltaG1, wireMode)); return err },
		func() error { _, err := w.Write(e.EncodeG2(mp.DeltaG2, wireMode)); return err },
		func() error { return writeG1Vec(w, e, mp.AQuery) },
		func() error { return writeG1Vec(w, e, mp.BG1Query) },
		func() error { return writeG2Vec(w, e, mp.BG2Query) },
		func() error { return writeG1Vec(w, e, mp.GammaAbcG1) },
		func() error { return writeG1Vec(w, e, mp.HQuery) },
		func() error { return writeG1Vec(w, e, mp.LQuery) },
	} {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func writePhase2PublicKey(w io.Writer, e curve.Engine, pk phase2PublicKeyWire) error {
	for _, p := range []curve.G1Point{pk.SG, pk.SXG, pk.DeltaAfter} {
		if _, err := w.Write(e.EncodeG1(p, wireMode)); err != nil {
			return err
		}
	}
	_, err := w.Write(e.EncodeG2(pk.XR, wireMode))
	return err
}

// phase2PublicKeyWire avoids importing keypair.Phase2PublicKey's embedded
// field names into this file's signatures.
type phase2PublicKeyWire struct {
	SG, SXG, DeltaAfter curve.G1Point
	XR                  curve.G2Point
}

// WriteTo serializes mp: the fixed parameter fields, the frozen cs_hash,
// then the contribution list, each PublicKey as 3·G1 + 1·G2.
func (mp *MPCParameters) WriteTo(w io.Writer) (int64, error) {
	wc := &writeCounter{}
	if err := writeFixedParams(wc, mp); err != nil {
		return 0, err
	}
	if _, err := wc.Write(mp.CsHash[:]); err != nil {
		return 0, err
	}
	if err := writeUint32(wc, uint32(len(mp.Contributions))); err != nil {
		return 0, err
	}
	for _, pk := range mp.Contributions {
		if err := writePhase2PublicKey(wc, mp.Engine, phase2PublicKeyWire{pk.SG, pk.SXG, pk.DeltaAfter, pk.XR}); err != nil {
			return 0, err
		}
	}
	n, err := w.Write(wc.bytes)
	return int64(n), err
}

// ReceiptHash computes the same 64-byte value Contribute returns for pk:
// Blake2b-512 of pk's wire encoding. It lets transcript replay rebuild each
// hop's receipt from an already-assembled MPCParameters chain instead of
// needing Contribute to have returned it live.
func ReceiptHash(e curve.Engine, pk keypair.Phase2PublicKey) ([64]byte, error) {
	wc := &writeCounter{}
	if err := writePhase2PublicKey(wc, e, phase2PublicKeyWire{pk.SG, pk.SXG, pk.DeltaAfter, pk.XR}); err != nil {
		return [64]byte{}, err
	}
	return blake2b512(wc.bytes), nil
}

func blake2b512(data []byte) [64]byte {
	var out [64]byte
	sum := blake2b.Sum512(data)
	copy(out[:], sum[:])
	return out
}

func readPhase2PublicKey(r io.Reader, e curve.Engine) (keypair.Phase2PublicKey, error) {
	g1size := e.G1Size(wireMode)
	g2size := e.G2Size(wireMode)
	buf1 := make([]byte, g1size)
	readG1 := func() (curve.G1Point, error) {
		if _, err := io.ReadFull(r, buf1); err != nil {
			return nil, err
		}
		return e.DecodeG1(buf1, wireMode, curve.CheckOnCurve, curve.SubgroupAuto)
	}
	sg, err := readG1()
	if err != nil {
		return keypair.Phase2PublicKey{}, err
	}
	sxg, err := readG1()
	if err != nil {
		return keypair.Phase2PublicKey{}, err
	}
	deltaAfter, err := readG1()
	if err != nil {
		return keypair.Phase2PublicKey{}, err
	}
	buf2 := make([]byte, g2size)
	if _, err := io.ReadFull(r, buf2); err != nil {
		return keypair.Phase2PublicKey{}, err
	}
	xr, err := e.DecodeG2(buf2, wireMode, curve.CheckOnCurve)
	if err != nil {
		return keypair.Phase2PublicKey{}, err
	}
	return keypair.Phase2PublicKey{
		PublicKey:  keypair.PublicKey{SG: sg, SXG: sxg, XR: xr},
		DeltaAfter: deltaAfter,
	}, nil
}

// ReadFrom reconstructs an MPCParameters from the byte image WriteTo
// produces. cs_hash is read back verbatim, not recomputed: it is frozen at
// Initialize and must stay byte-identical across every later contribution,
// so re-deriving it here from the (by-then-mutated) δ/h/l fields would
// produce a different value than the one Initialize froze. Unlike phase1's
// ReadFrom, the contribution count is self-describing (a length prefix),
// since Phase-2 parameter files are not size-dominated by a huge fixed
// vector the way Powers-of-Tau transcripts are — framing it explicitly
// costs four bytes and removes a caller-supplied parameter.
func ReadFrom(r io.Reader, e curve.Engine) (*MPCParameters, error) {
	readG1 := func() (curve.G1Point, error) {
		buf := make([]byte, e.G1Size(wireMode))
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return e.DecodeG1(buf, wireMode, curve.CheckOnCurve, curve.SubgroupAuto)
	}
	readG2 := func() (curve.G2Point, error) {
		buf := make([]byte, e.G2Size(wireMode))
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		return e.DecodeG2(buf, wireMode, curve.CheckOnCurve)
	}

	alphaG1, err := readG1()
	if err != nil {
		return nil, err
	}
	betaG1, err := readG1()
	if err != nil {
		return nil, err
	}
	betaG2, err := readG2()
	if err != nil {
		return nil, err
	}
	gammaG2, err := readG2()
	if err != nil {
		return nil, err
	}
	deltaG1, err := readG1()
	if err != nil {
		return nil, err
	}
	deltaG2, err := readG2()
	if err != nil {
		return nil, err
	}
	aQuery, err := readG1Vec(r, e)
	if err != nil {
		return nil, err
	}
	bG1Query, err := readG1Vec(r, e)
	if err != nil {
		return nil, err
	}
	bG2Query, err := readG2Vec(r, e)
	if err != nil {
		return nil, err
	}
	gammaAbc, err := readG1Vec(r, e)
	if err != nil {
		return nil, err
	}
	hQuery, err := readG1Vec(r, e)
	if err != nil {
		return nil, err
	}
	lQuery, err := readG1Vec(r, e)
	if err != nil {
		return nil, err
	}

	var csHash [64]byte
	if _, err := io.ReadFull(r, csHash[:]); err != nil {
		return nil, err
	}

	numContributions, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	contributions := make([]keypair.Phase2PublicKey, numContributions)
	for i := range contributions {
		pk, err := readPhase2PublicKey(r, e)
		if err != nil {
			return nil, err
		}
		contributions[i] = pk
	}

	mp := &MPCParameters{
		Engine:        e,
		AlphaG1:       alphaG1,
		BetaG1:        betaG1,
		BetaG2:        betaG2,
		GammaG2:       gammaG2,
		DeltaG1:       deltaG1,
		DeltaG2:       deltaG2,
		AQuery:        aQuery,
		BG1Query:      bG1Query,
		BG2Query:      bG2Query,
		GammaAbcG1:    gammaAbc,
		HQuery:        hQuery,
		LQuery:        lQuery,
		CsHash:        csHash,
		Contributions: contributions,
	}
	return mp, nil
}
