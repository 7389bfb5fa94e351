package scene

import (
	"testing"

	"github.com/gogpu/rast"
	"github.com/gogpu/rast/internal/fixed"
)

// halfScreenModel is a single triangle that covers the upper-left half
// of the window under identity view and projection: clip (-1,1),
// (1,1), (-1,-1) with w=1.
func halfScreenModel() ModelData {
	return ModelData{
		Positions: []fixed.S1516{
			-fixed.One, +fixed.One, 0,
			-fixed.One, -fixed.One, 0,
			+fixed.One, +fixed.One, 0,
		},
		// CCW source winding; the loader flips it to (0, 2, 1).
		Indices: []uint32{0, 1, 2},
	}
}

func packAlpha(fb *rast.Framebuffer) []byte {
	buf := make([]byte, fb.Width()*fb.Height()*4)
	fb.PackRowMajor(rast.AttachmentColor, 0, 0, fb.Width(), fb.Height(),
		rast.PixelFormatRGBA8Unorm, buf)
	return buf
}

// TestRenderSceneFullScreenTriangle is the end-to-end scenario: a 3x3
// tile framebuffer, identity matrices, one instance. Pixels above the
// x+y=384 diagonal carry alpha 0xFF; pixels below stay background.
func TestRenderSceneFullScreenTriangle(t *testing.T) {
	sc := New()
	model, err := sc.AddModel(halfScreenModel())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.AddInstance(model); err != nil {
		t.Fatal(err)
	}

	rd := NewRenderer(384, 384)
	rd.RenderScene(sc)

	buf := packAlpha(rd.Framebuffer())
	for y := 0; y < 384; y++ {
		for x := 0; x < 384; x++ {
			alpha := buf[(y*384+x)*4+3]
			switch {
			case x+y <= 382:
				if alpha != 0xFF {
					t.Fatalf("pixel (%d,%d) not covered", x, y)
				}
			case x+y >= 384:
				if alpha != 0 {
					t.Fatalf("pixel (%d,%d) covered past the diagonal", x, y)
				}
			}
		}
	}

	if rd.PerfCounters().MVPTransform == 0 {
		t.Error("mvptransform counter did not accumulate")
	}
	rd.ResetPerfCounters()
	if rd.PerfCounters().MVPTransform != 0 {
		t.Error("mvptransform counter not reset")
	}
}

// TestRenderSceneDepthBetweenInstances renders a near and a far
// full-screen triangle as separate instances; the near one must own
// every covered pixel no matter the instance order.
func TestRenderSceneDepthBetweenInstances(t *testing.T) {
	tri := func(z fixed.S1516) ModelData {
		return ModelData{
			Positions: []fixed.S1516{
				-fixed.One, +fixed.One, z,
				-fixed.One, -fixed.One, z,
				+fixed.One, +fixed.One, z,
			},
			Indices: []uint32{0, 1, 2},
		}
	}

	depthAt := func(order ...fixed.S1516) uint32 {
		sc := New()
		for _, z := range order {
			id, err := sc.AddModel(tri(z))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := sc.AddInstance(id); err != nil {
				t.Fatal(err)
			}
		}
		rd := NewRenderer(256, 256)
		rd.RenderScene(sc)

		var d [1]uint32
		rd.Framebuffer().PackDepth(10, 10, 1, 1, d[:])
		return d[0]
	}

	near := fixed.S1516(0x4000) // z = 0.25
	far := fixed.S1516(0xC000)  // z = 0.75
	want := uint32(near) << 15

	if got := depthAt(near, far); got != want {
		t.Fatalf("near-then-far depth = %#x, want %#x", got, want)
	}
	if got := depthAt(far, near); got != want {
		t.Fatalf("far-then-near depth = %#x, want %#x", got, want)
	}
}

// TestRenderSceneRespectsInstanceRemoval renders, removes the only
// instance, renders again: the second frame must be empty.
func TestRenderSceneRespectsInstanceRemoval(t *testing.T) {
	sc := New()
	model, err := sc.AddModel(halfScreenModel())
	if err != nil {
		t.Fatal(err)
	}
	id, err := sc.AddInstance(model)
	if err != nil {
		t.Fatal(err)
	}

	rd := NewRenderer(256, 256)
	rd.RenderScene(sc)

	sc.RemoveInstance(id)
	rd.RenderScene(sc)

	buf := packAlpha(rd.Framebuffer())
	for i := 3; i < len(buf); i += 4 {
		if buf[i] != 0 {
			t.Fatal("removed instance still rendered")
		}
	}
}

// TestRenderSceneProjectionScale halves the triangle with a scaling
// projection and checks coverage shrinks accordingly.
func TestRenderSceneProjectionScale(t *testing.T) {
	sc := New()
	model, err := sc.AddModel(halfScreenModel())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.AddInstance(model); err != nil {
		t.Fatal(err)
	}

	proj := Identity()
	proj[0] = fixed.Half
	proj[5] = fixed.Half
	sc.SetProjection(proj)

	rd := NewRenderer(256, 256)
	rd.RenderScene(sc)

	buf := packAlpha(rd.Framebuffer())
	covered := 0
	for i := 3; i < len(buf); i += 4 {
		if buf[i] != 0 {
			covered++
		}
	}

	// The half-scaled triangle covers half of the middle square, an
	// eighth of the frame.
	want := 256 * 256 / 8
	if covered < want*9/10 || covered > want*11/10 {
		t.Fatalf("covered %d pixels, want about %d", covered, want)
	}
}
