package scene

import "github.com/gogpu/rast/internal/fixed"

// Mat4 is a 4x4 matrix of Q16.16 values in column-major memory order:
// the element at row r, column c lives at index r + 4*c. This is the
// layout the fixed-point transform below consumes directly.
type Mat4 [16]fixed.S1516

// Identity returns the identity matrix.
func Identity() Mat4 {
	var m Mat4
	m[0] = fixed.One
	m[5] = fixed.One
	m[10] = fixed.One
	m[15] = fixed.One
	return m
}

// Mul returns m*b. Each element is produced by the same four-wide
// fused-multiply-add chain the vertex transform uses, so matrix
// concatenation rounds exactly as the transform does: once per link
// of the chain.
func (m *Mat4) Mul(b *Mat4) Mat4 {
	var dst Mat4
	for c := 0; c < 4; c++ {
		col := b[c*4 : c*4+4]
		for r := 0; r < 4; r++ {
			dst[r+4*c] = fixed.FMA(m[r+0], col[0],
				fixed.FMA(m[r+4], col[1],
					fixed.FMA(m[r+8], col[2],
						fixed.Mul(m[r+12], col[3]))))
		}
	}
	return dst
}

// TransformPoint applies m to the point (x, y, z, 1) and returns the
// four Q16.16 clip-space components.
func (m *Mat4) TransformPoint(x, y, z fixed.S1516) [4]fixed.S1516 {
	var dst [4]fixed.S1516
	for r := 0; r < 4; r++ {
		dst[r] = fixed.FMA(m[r+0], x,
			fixed.FMA(m[r+4], y,
				fixed.FMA(m[r+8], z,
					fixed.Mul(m[r+12], fixed.One))))
	}
	return dst
}
