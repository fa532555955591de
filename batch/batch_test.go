// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package batch

import (
	"testing"

	"github.com/logical-mechanism/tau-mpc/curve"
	"github.com/logical-mechanism/tau-mpc/internal/mmapio"
)

func fillG1Generators(t *testing.T, e curve.Engine, region *mmapio.Region, sec Section) {
	t.Helper()
	buf := e.EncodeG1(e.G1Generator(), sec.Mode)
	size := sec.ElementSize(e)
	raw := region.Slice(sec.Offset, sec.Count*size)
	for i := 0; i < sec.Count; i++ {
		copy(raw[i*size:(i+1)*size], buf)
	}
}

func newScratchRegion(t *testing.T, size int) *mmapio.Region {
	t.Helper()
	dir := t.TempDir()
	r, err := mmapio.CreateReadWrite(dir+"/scratch.bin", size)
	if err != nil {
		t.Fatalf("CreateReadWrite: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestExpG1Geometric_MatchesDirectStrategy(t *testing.T) {
	e := curve.BLS12381{}
	const count = 17 // not a multiple of the batch size, exercises the partial final batch
	sec := Section{Kind: KindG1, Offset: 0, Count: count, Mode: curve.Uncompressed}
	size := sec.ElementSize(e)

	regionA := newScratchRegion(t, count*size)
	regionB := newScratchRegion(t, count*size)
	fillG1Generators(t, e, regionA, sec)
	fillG1Generators(t, e, regionB, sec)

	base := e.ScalarFromUint64(3)
	eng := New(e, 4)

	if err := eng.ExpG1Geometric(regionA, sec, base, 0, ExpGeometric, curve.CheckOnCurve, curve.SubgroupAuto); err != nil {
		t.Fatalf("ExpG1Geometric (geometric): %v", err)
	}
	if err := eng.ExpG1Geometric(regionB, sec, base, 0, ExpDirect, curve.CheckOnCurve, curve.SubgroupAuto); err != nil {
		t.Fatalf("ExpG1Geometric (direct): %v", err)
	}

	rawA := regionA.Bytes()
	rawB := regionB.Bytes()
	for i := 0; i < count; i++ {
		a, err := e.DecodeG1(rawA[i*size:(i+1)*size], sec.Mode, curve.CheckOnCurve, curve.SubgroupAuto)
		if err != nil {
			t.Fatalf("decode A[%d]: %v", i, err)
		}
		b, err := e.DecodeG1(rawB[i*size:(i+1)*size], sec.Mode, curve.CheckOnCurve, curve.SubgroupAuto)
		if err != nil {
			t.Fatalf("decode B[%d]: %v", i, err)
		}
		if !a.Equal(b) {
			t.Fatalf("element %d: geometric strategy disagrees with direct strategy", i)
		}
		// Spot-check against the expected value base^i * g1.
		want := e.G1ScalarMult(e.G1Generator(), scalarPow(e, base, i))
		if !a.Equal(want) {
			t.Fatalf("element %d: got unexpected value, geometric progression is wrong", i)
		}
	}
}

func TestExpG1Scalar_UniformScale(t *testing.T) {
	e := curve.BLS12381{}
	const count = 5
	sec := Section{Kind: KindG1, Offset: 0, Count: count, Mode: curve.Compressed}
	size := sec.ElementSize(e)
	region := newScratchRegion(t, count*size)
	fillG1Generators(t, e, region, sec)

	s := e.ScalarFromUint64(9)
	eng := New(e, 2)
	if err := eng.ExpG1Scalar(region, sec, s, curve.CheckFullSubgroup, curve.SubgroupAuto); err != nil {
		t.Fatalf("ExpG1Scalar: %v", err)
	}

	raw := region.Bytes()
	want := e.G1ScalarMult(e.G1Generator(), s)
	for i := 0; i < count; i++ {
		got, err := e.DecodeG1(raw[i*size:(i+1)*size], sec.Mode, curve.CheckFullSubgroup, curve.SubgroupAuto)
		if err != nil {
			t.Fatalf("decode[%d]: %v", i, err)
		}
		if !got.Equal(want) {
			t.Fatalf("element %d not scaled correctly", i)
		}
	}
}

func TestValidateG1_RejectsCorruptedElement(t *testing.T) {
	e := curve.BLS12381{}
	sec := Section{Kind: KindG1, Offset: 0, Count: 2, Mode: curve.Uncompressed}
	size := sec.ElementSize(e)
	region := newScratchRegion(t, sec.Count*size)
	fillG1Generators(t, e, region, sec)

	eng := New(e, 8)
	if err := eng.ValidateG1(region, sec); err != nil {
		t.Fatalf("ValidateG1 on honest section: %v", err)
	}

	// Corrupt one element's encoding; it must no longer decode as a valid
	// subgroup member.
	raw := region.Bytes()
	raw[0] ^= 0xFF
	if err := eng.ValidateG1(region, sec); err == nil {
		t.Fatal("expected ValidateG1 to reject a corrupted element")
	}
}

func TestConvertG1_CompressedToUncompressed_RoundTrips(t *testing.T) {
	e := curve.BLS12381{}
	const count = 6
	src := Section{Kind: KindG1, Offset: 0, Count: count, Mode: curve.Compressed}
	dst := Section{Kind: KindG1, Offset: 0, Count: count, Mode: curve.Uncompressed}

	srcRegion := newScratchRegion(t, src.ByteLen(e))
	dstRegion := newScratchRegion(t, dst.ByteLen(e))
	fillG1Generators(t, e, srcRegion, src)

	eng := New(e, 3)
	if err := eng.ConvertG1(srcRegion, src, dstRegion, dst, curve.CheckOnCurve, curve.SubgroupAuto); err != nil {
		t.Fatalf("ConvertG1: %v", err)
	}

	dstRaw := dstRegion.Bytes()
	dstSize := dst.ElementSize(e)
	for i := 0; i < count; i++ {
		got, err := e.DecodeG1(dstRaw[i*dstSize:(i+1)*dstSize], curve.Uncompressed, curve.CheckFullSubgroup, curve.SubgroupAuto)
		if err != nil {
			t.Fatalf("decode converted[%d]: %v", i, err)
		}
		if !got.Equal(e.G1Generator()) {
			t.Fatalf("element %d did not convert to the expected generator", i)
		}
	}
}
