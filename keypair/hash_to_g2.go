// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package keypair

import (
	"io"
	"math/big"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"

	"github.com/logical-mechanism/tau-mpc/curve"
)

// keystream adapts a chacha20.Cipher into an io.Reader yielding raw
// keystream bytes, by encrypting an all-zero source.
type keystream struct {
	cipher *chacha20.Cipher
}

func newKeystream(key [32]byte) (*keystream, error) {
	var nonce [chacha20.NonceSize]byte // all-zero: the key alone is the per-call entropy
	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, err
	}
	return &keystream{cipher: c}, nil
}

func (k *keystream) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	k.cipher.XORKeyStream(p, p)
	return len(p), nil
}

// drawScalar reads 64 bytes from the keystream and reduces them modulo the
// scalar field, the same oversampling approach curve.Engine.RandomScalar
// uses, so a single code path defines "how a uniform Fr element is drawn
// from an entropy stream" across the core.
func drawScalar(e curve.Engine, src io.Reader) (curve.Scalar, error) {
	buf := make([]byte, 64)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, err
	}
	var bi big.Int
	bi.SetBytes(buf)
	return e.ScalarFromBigInt(&bi), nil
}

// HashToG2 is spec.md §6's deterministic hash-to-curve map: Blake2b-512 of
// the domain-separated input seeds a ChaCha20 keystream; two Fr scalars
// (a, b) are drawn from it and combined as a·g2 + b·hg2, redrawing only on
// the negligible-probability identity result. hg2 is the curve's fixed
// second G2 generator (curve.Engine.G2SecondGenerator), distinct from g2 so
// the map cannot collapse to a bare scalar multiple of the generator.
func HashToG2(e curve.Engine, runningHash []byte, section Section, sg, sxg curve.G1Point) (curve.G2Point, error) {
	input := make([]byte, 0, len(runningHash)+1+e.G1Size(curve.Uncompressed)*2)
	input = append(input, runningHash...)
	input = append(input, byte(section))
	input = append(input, e.EncodeG1(sg, curve.Uncompressed)...)
	input = append(input, e.EncodeG1(sxg, curve.Uncompressed)...)

	seed := blake2b.Sum512(input)
	var key [32]byte
	copy(key[:], seed[:32])

	ks, err := newKeystream(key)
	if err != nil {
		return nil, err
	}

	g2 := e.G2Generator()
	hg2 := e.G2SecondGenerator()

	for {
		a, err := drawScalar(e, ks)
		if err != nil {
			return nil, err
		}
		b, err := drawScalar(e, ks)
		if err != nil {
			return nil, err
		}
		p := e.G2Add(e.G2ScalarMult(g2, a), e.G2ScalarMult(hg2, b))
		if !p.IsIdentity() {
			return p, nil
		}
	}
}
