// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package phase1

import (
	"io"

	"golang.org/x/crypto/blake2b"

	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/errkind"
	"github.com/logical-mechanism/tau-mpc/internal/mmapio"
	"github.com/logical-mechanism/tau-mpc/keypair"
)

// publicKeyWireLen is the encoded size of one keypair.Phase1PublicKey:
// spec.md §6 — "6·G1_uncompressed + 3·G2_uncompressed" per trailing entry.
func publicKeyWireLen(e curve.Engine) int {
	return 6*e.G1Size(curve.Uncompressed) + 3*e.G2Size(curve.Uncompressed)
}

func writePublicKey(e curve.Engine, w io.Writer, pk keypair.Phase1PublicKey) error {
	for _, p := range []curve.G1Point{pk.Tau.SG, pk.Tau.SXG, pk.Alpha.SG, pk.Alpha.SXG, pk.Beta.SG, pk.Beta.SXG} {
		if _, err := w.Write(e.EncodeG1(p, curve.Uncompressed)); err != nil {
			return errkind.Wrap(errkind.IOError, err)
		}
	}
	for _, p := range []curve.G2Point{pk.Tau.XR, pk.Alpha.XR, pk.Beta.XR} {
		if _, err := w.Write(e.EncodeG2(p, curve.Uncompressed)); err != nil {
			return errkind.Wrap(errkind.IOError, err)
		}
	}
	return nil
}

func readPublicKey(e curve.Engine, r io.Reader) (keypair.Phase1PublicKey, error) {
	g1buf := make([]byte, e.G1Size(curve.Uncompressed))
	g2buf := make([]byte, e.G2Size(curve.Uncompressed))

	readG1 := func() (curve.G1Point, error) {
		if _, err := io.ReadFull(r, g1buf); err != nil {
			return nil, errkind.Wrap(errkind.UnexpectedEOF, err)
		}
		p, err := e.DecodeG1(g1buf, curve.Uncompressed, curve.CheckOnCurve, curve.SubgroupAuto)
		if err != nil {
			return nil, errkind.Wrap(errkind.NotOnCurve, err)
		}
		return p, nil
	}
	readG2 := func() (curve.G2Point, error) {
		if _, err := io.ReadFull(r, g2buf); err != nil {
			return nil, errkind.Wrap(errkind.UnexpectedEOF, err)
		}
		p, err := e.DecodeG2(g2buf, curve.Uncompressed, curve.CheckOnCurve)
		if err != nil {
			return nil, errkind.Wrap(errkind.NotOnCurve, err)
		}
		return p, nil
	}

	tauSG, err := readG1()
	if err != nil {
		return keypair.Phase1PublicKey{}, err
	}
	tauSXG, err := readG1()
	if err != nil {
		return keypair.Phase1PublicKey{}, err
	}
	alphaSG, err := readG1()
	if err != nil {
		return keypair.Phase1PublicKey{}, err
	}
	alphaSXG, err := readG1()
	if err != nil {
		return keypair.Phase1PublicKey{}, err
	}
	betaSG, err := readG1()
	if err != nil {
		return keypair.Phase1PublicKey{}, err
	}
	betaSXG, err := readG1()
	if err != nil {
		return keypair.Phase1PublicKey{}, err
	}
	tauXR, err := readG2()
	if err != nil {
		return keypair.Phase1PublicKey{}, err
	}
	alphaXR, err := readG2()
	if err != nil {
		return keypair.Phase1PublicKey{}, err
	}
	betaXR, err := readG2()
	if err != nil {
		return keypair.Phase1PublicKey{}, err
	}

	return keypair.Phase1PublicKey{
		Tau:   keypair.PublicKey{SG: tauSG, SXG: tauSXG, XR: tauXR},
		Alpha: keypair.PublicKey{SG: alphaSG, SXG: alphaSXG, XR: alphaXR},
		Beta:  keypair.PublicKey{SG: betaSG, SXG: betaSXG, XR: betaXR},
	}, nil
}

// WriteTo serializes the accumulator per spec.md §6: the five vector
// sections in a's Mode, followed by the trailing PublicKeys (always
// uncompressed), in contribution order.
func (a *Accumulator) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(a.Region.Bytes())
	if err != nil {
		return int64(n), errkind.Wrap(errkind.IOError, err)
	}
	total := int64(n)
	for _, pk := range a.Contributions {
		if err := writePublicKey(a.Engine, w, pk); err != nil {
			return total, err
		}
		total += int64(publicKeyWireLen(a.Engine))
	}
	return total, nil
}

// ReadFrom reconstructs an Accumulator of the given (Power, Mode) from r,
// reading numContributions trailing PublicKeys. The caller supplies
// numContributions because spec.md §6's layout carries no length prefix for
// Phase-1's trailer (unlike Phase-2's u32-prefixed form, §6) — a thin
// framing layer (out of core scope, §1) is expected to track it, exactly as
// WriteResponseHeader/StripResponseHeader below supplement that framing for
// the file-based workflow.
func ReadFrom(r io.Reader, e curve.Engine, power int, mode curve.Mode, numContributions int) (*Accumulator, error) {
	sec := layout(e, power, mode)
	body := make([]byte, bodyLen(sec, e))
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, errkind.Wrap(errkind.UnexpectedEOF, err)
	}
	region := mmapio.Wrap(body)

	contributions := make([]keypair.Phase1PublicKey, numContributions)
	for i := 0; i < numContributions; i++ {
		pk, err := readPublicKey(e, r)
		if err != nil {
			return nil, err
		}
		contributions[i] = pk
	}

	return &Accumulator{
		Engine:        e,
		Power:         power,
		Mode:          mode,
		Region:        region,
		Sections:      sec,
		Contributions: contributions,
	}, nil
}

// RunningHash is Blake2b-512 of the accumulator's complete byte image
// (spec.md §6: "over the complete byte image of the preceding
// accumulator"), the domain-separation input fed into HashToG2 by the next
// contributor.
func (a *Accumulator) RunningHash() ([64]byte, error) {
	h, _ := blake2b.New512(nil)
	if _, err := a.WriteTo(h); err != nil {
		return [64]byte{}, err
	}
	var out [64]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// blake2b512 is the spec.md §6 contribution-receipt hash primitive.
func blake2b512(data []byte) [64]byte {
	return blake2b.Sum512(data)
}

// responseHeaderLen is the supplemented challenge/response framing of
// SPEC_FULL.md §3: 64 bytes holding the predecessor's RunningHash, written
// ahead of the accumulator body in the on-disk response file. It has no
// effect on RunningHash or WriteTo/ReadFrom, which only ever see the
// accumulator's own bytes.
const responseHeaderLen = 64

// WriteResponseHeader writes the 64-byte predecessor-hash header that
// original_source/powersoftau/src/cli_common/contribute.rs prepends to a
// response file ahead of the transformed accumulator body.
func WriteResponseHeader(w io.Writer, predecessorHash [64]byte) error {
	if _, err := w.Write(predecessorHash[:]); err != nil {
		return errkind.Wrap(errkind.IOError, err)
	}
	return nil
}

// StripResponseHeader reads and discards the 64-byte response header,
// returning the predecessor hash it carried so a caller can cross-check it
// against the challenge it responded to.
func StripResponseHeader(r io.Reader) ([64]byte, error) {
	var hash [64]byte
	if _, err := io.ReadFull(r, hash[:]); err != nil {
		return hash, errkind.Wrap(errkind.UnexpectedEOF, err)
	}
	return hash, nil
}
