// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package bridge

import (
	"encoding/binary"
	"io"

	"github.com/logical-mechanism/tau-mpc/curve"
)

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
	buf := make([]byte, e.G1Size(wireMode))
	out := make([]curve.G1Point, n)
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
	buf := make([]byte, e.G2Size(wireMode))
	out := make([]curve.G2Point, n)
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

// WriteGroth16Params serializes params for hand-off to phase2.Initialize in
// a separate process invocation, uncompressed throughout (matching phase2's
// own wire format).
func WriteGroth16Params(w io.Writer, e curve.Engine, params *Groth16Params) error {
	if _, err := w.Write(e.EncodeG1(params.AlphaG1, wireMode)); err != nil {
		return err
	}
	if _, err := w.Write(e.EncodeG1(params.BetaG1, wireMode)); err != nil {
		return err
	}
	if _, err := w.Write(e.EncodeG2(params.BetaG2, wireMode)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(params.DomainSize)); err != nil {
		return err
	}
	for _, fn := range []func() error{
		func() error { return writeG1Vec(w, e, params.TauG1Coeffs) },
		func() error { return writeG1Vec(w, e, params.AlphaG1Coeffs) },
		func() error { return writeG1Vec(w, e, params.BetaG1Coeffs) },
		func() error { return writeG2Vec(w, e, params.TauG2Coeffs) },
		func() error { return writeG1Vec(w, e, params.HQuery) },
	} {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// ReadGroth16Params reads the byte image WriteGroth16Params produces.
func ReadGroth16Params(r io.Reader, e curve.Engine) (*Groth16Params, error) {
	buf1 := make([]byte, e.G1Size(wireMode))
	readG1 := func() (curve.G1Point, error) {
		if _, err := io.ReadFull(r, buf1); err != nil {
			return nil, err
		}
		return e.DecodeG1(buf1, wireMode, curve.CheckOnCurve, curve.SubgroupAuto)
	}
	alphaG1, err := readG1()
	if err != nil {
		return nil, err
	}
	betaG1, err := readG1()
	if err != nil {
		return nil, err
	}
	buf2 := make([]byte, e.G2Size(wireMode))
	if _, err := io.ReadFull(r, buf2); err != nil {
		return nil, err
	}
	betaG2, err := e.DecodeG2(buf2, wireMode, curve.CheckOnCurve)
	if err != nil {
		return nil, err
	}
	domainSize, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	tauG1Coeffs, err := readG1Vec(r, e)
	if err != nil {
		return nil, err
	}
	alphaG1Coeffs, err := readG1Vec(r, e)
	if err != nil {
		return nil, err
	}
	betaG1Coeffs, err := readG1Vec(r, e)
	if err != nil {
		return nil, err
	}
	tauG2Coeffs, err := readG2Vec(r, e)
	if err != nil {
		return nil, err
	}
	hQuery, err := readG1Vec(r, e)
	if err != nil {
		return nil, err
	}
	return &Groth16Params{
		AlphaG1:       alphaG1,
		BetaG1:        betaG1,
		BetaG2:        betaG2,
		TauG1Coeffs:   tauG1Coeffs,
		AlphaG1Coeffs: alphaG1Coeffs,
		BetaG1Coeffs:  betaG1Coeffs,
		TauG2Coeffs:   tauG2Coeffs,
		HQuery:        hQuery,
		DomainSize:    int(domainSize),
	}, nil
}
