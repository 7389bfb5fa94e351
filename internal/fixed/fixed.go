// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package fixed provides the fixed-point number types used throughout
// the rasterizer.
//
// All triangle setup and pixel math runs on 32-bit signed fixed point
// so results are deterministic across platforms and no float enters
// the inner loops.
//
// Type reference:
//   - S1516: 16.16 fixed point (16 fractional bits) - clip space, depth,
//     matrices
//   - S168: 24.8 fixed point (8 fractional bits) - window coordinates and
//     edge equations
package fixed

// S1516 is a 16.16 fixed-point number (16 fractional bits).
// Used for clip-space coordinates, depth values and matrix elements.
//
// Range: approximately -32768 to +32768 with 1/65536 precision.
type S1516 = int32

// S168 is a 24.8 fixed-point number (8 fractional bits) stored in 32 bits.
// Used for window coordinates, where 1/256 pixel precision is enough for
// the edge equations while keeping their products inside 64 bits.
type S168 = int32

const (
	// One is 1.0 in S1516 representation (2^16).
	One S1516 = 1 << 16

	// Half is 0.5 in S1516 representation (2^15).
	Half S1516 = 1 << 15

	// Shift is the number of fractional bits in S1516.
	Shift = 16

	// S168One is 1.0 in S168 representation (2^8).
	S168One S168 = 1 << 8

	// S168Half is 0.5 in S168 representation (2^7).
	S168Half S168 = 1 << 7

	// S168Shift is the number of fractional bits in S168.
	S168Shift = 8
)

// sat saturates a 64-bit intermediate to the signed 32-bit range.
func sat(x int64) int32 {
	if x > 0x7FFFFFFF {
		return 0x7FFFFFFF
	}
	if x < -0x80000000 {
		return -0x80000000
	}
	return int32(x)
}

// Add returns a+b with the usual two's-complement wraparound.
func Add(a, b S1516) S1516 {
	return a + b
}

// AddSat returns a+b saturated to the signed 32-bit range.
func AddSat(a, b S1516) S1516 {
	return sat(int64(a) + int64(b))
}

// Mul returns a*b with a 64-bit intermediate, rounding half up,
// saturated to the signed 32-bit range.
func Mul(a, b S1516) S1516 {
	t := int64(a) * int64(b)
	t += 1 << 15
	return sat(t >> 16)
}

// Div returns a/b, rounding half away from zero.
// The caller must ensure b is nonzero.
func Div(a, b S1516) S1516 {
	t := int64(a) << 16
	if (t >= 0) == (b >= 0) {
		t += int64(b) / 2
	} else {
		t -= int64(b) / 2
	}
	return sat(t / int64(b))
}

// FMA returns a*b+c with a single rounding at the end, saturated.
func FMA(a, b, c S1516) S1516 {
	t := int64(a)*int64(b) + int64(c)<<16
	t += 1 << 15
	return sat(t >> 16)
}

// FromInt converts an integer to S1516.
// The integer must fit in 16 bits.
func FromInt(i int32) S1516 {
	return i << 16
}

// FromFloat32 converts a float32 to S1516, truncating toward zero.
//
// The multiplier is 0xFFFF rather than 0x10000, so results carry a
// systematic relative bias of about 1.5e-5. Integer values should go
// through FromInt, which is exact.
func FromFloat32(f float32) S1516 {
	return int32(f * 0xFFFF)
}

// ToS168 converts an S1516 value to S168 window precision.
func ToS168(x S1516) S168 {
	return Div(x, FromInt(256))
}
