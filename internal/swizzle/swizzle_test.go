// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package swizzle

import (
	"math/bits"
	"testing"
)

func TestPdep(t *testing.T) {
	tests := []struct {
		name         string
		source, mask uint32
		want         uint32
	}{
		{"alternating high", 0b101, 0b101010, 0b100010},
		{"alternating low", 0b010, 0b010101, 0b000100},
		{"zero source", 0, 0xDEADBEEF, 0},
		{"full mask", 0b1111, 0b11110000, 0b11110000},
		{"x mask identity", 3, XMask, 0b0101},
		{"y mask identity", 3, YMask, 0b1010},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pdep(tt.source, tt.mask); got != tt.want {
				t.Errorf("Pdep(%#b, %#b) = %#b, want %#b", tt.source, tt.mask, got, tt.want)
			}
		})
	}
}

func TestPdepSaturatedSource(t *testing.T) {
	// 2^k-1 deposited into a popcount-k mask reproduces the mask.
	for _, mask := range []uint32{XMask, YMask, 0b1011001} {
		k := bits.OnesCount32(mask)
		if got := Pdep(uint32(1)<<k-1, mask); got != mask {
			t.Errorf("Pdep(2^%d-1, %#x) = %#x, want the mask itself", k, mask, got)
		}
	}
}

func TestAdvanceMatchesPdep(t *testing.T) {
	for _, mask := range []uint32{XMask, YMask} {
		b := Pdep(0, mask)
		for n := uint32(1); n < TileWidth; n++ {
			b = Advance(b, mask)
			if want := Pdep(n, mask); b != want {
				t.Fatalf("Advance chain at n=%d mask=%#x: got %#x, want %#x", n, mask, b, want)
			}
		}
	}
}

func TestMasksDisjoint(t *testing.T) {
	if XMask&YMask != 0 {
		t.Fatal("swizzle masks overlap")
	}
	if XMask|YMask != PixelsPerTile-1 {
		t.Fatal("swizzle masks do not cover the tile")
	}
}
