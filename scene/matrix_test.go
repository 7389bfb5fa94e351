package scene

import (
	"testing"

	"github.com/gogpu/rast/internal/fixed"
)

func TestIdentityTransform(t *testing.T) {
	m := Identity()
	got := m.TransformPoint(fixed.FromInt(2), fixed.FromInt(-3), fixed.Half)

	want := [4]fixed.S1516{fixed.FromInt(2), fixed.FromInt(-3), fixed.Half, fixed.One}
	if got != want {
		t.Fatalf("identity transform = %v, want %v", got, want)
	}
}

func TestMulIdentity(t *testing.T) {
	var m Mat4
	for i := range m {
		m[i] = fixed.S1516(i+1) << 12
	}
	id := Identity()

	if got := id.Mul(&m); got != m {
		t.Fatalf("I*m = %v, want m", got)
	}
	if got := m.Mul(&id); got != m {
		t.Fatalf("m*I = %v, want m", got)
	}
}

func TestTranslationTransform(t *testing.T) {
	// Column-major: translation occupies indices 12..14.
	m := Identity()
	m[12] = fixed.FromInt(10)
	m[13] = fixed.FromInt(-5)
	m[14] = fixed.One

	got := m.TransformPoint(fixed.One, fixed.One, 0)
	want := [4]fixed.S1516{fixed.FromInt(11), fixed.FromInt(-4), fixed.One, fixed.One}
	if got != want {
		t.Fatalf("translated point = %v, want %v", got, want)
	}
}

func TestMulMatchesTransform(t *testing.T) {
	// Applying a concatenated matrix must equal applying the factors
	// in sequence. The factors and the point are integer valued, so no
	// rounding occurs and the two results match exactly.
	a := Identity()
	a[12] = fixed.FromInt(3)
	b := Identity()
	b[0] = fixed.FromInt(2)
	b[5] = fixed.FromInt(2)
	b[10] = fixed.FromInt(2)

	ab := a.Mul(&b)

	p := [3]fixed.S1516{fixed.One, fixed.FromInt(2), fixed.FromInt(3)}
	viaConcat := ab.TransformPoint(p[0], p[1], p[2])

	scaled := b.TransformPoint(p[0], p[1], p[2])
	viaSequence := a.TransformPoint(scaled[0], scaled[1], scaled[2])

	if viaConcat != viaSequence {
		t.Fatalf("concat %v != sequence %v", viaConcat, viaSequence)
	}
}

func TestFMARoundingSingle(t *testing.T) {
	// The transform rounds once per FMA link, so a row made of values
	// with half-ulp products must match fixed.FMA exactly.
	var m Mat4
	m[0] = 3
	m[4] = 5
	m[8] = 7
	m[12] = 11

	x, y, z := fixed.Half, fixed.Half, fixed.Half
	got := m.TransformPoint(x, y, z)[0]
	want := fixed.FMA(3, x, fixed.FMA(5, y, fixed.FMA(7, z, fixed.Mul(11, fixed.One))))
	if got != want {
		t.Fatalf("row FMA = %#x, want %#x", got, want)
	}
}
