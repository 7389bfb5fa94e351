package rast

import (
	"encoding/binary"
	"testing"

	"github.com/gogpu/rast/internal/swizzle"
)

func TestNewFramebufferPadsToTiles(t *testing.T) {
	fb := NewFramebuffer(200, 100)
	if fb.Width() != 200 || fb.Height() != 100 {
		t.Fatalf("logical size = %dx%d", fb.Width(), fb.Height())
	}
	if fb.widthInTiles != 2 || fb.heightInTiles != 1 {
		t.Fatalf("tiles = %dx%d, want 2x1", fb.widthInTiles, fb.heightInTiles)
	}
	if fb.TileCount() != 2 {
		t.Fatalf("TileCount = %d", fb.TileCount())
	}
	if len(fb.color) != 2*swizzle.PixelsPerTile {
		t.Fatalf("color plane = %d pixels", len(fb.color))
	}
	for i, d := range fb.depth {
		if d != 0xFFFFFFFF {
			t.Fatalf("depth[%d] = %#x at creation", i, d)
		}
	}
	for i, c := range fb.color {
		if c != 0 {
			t.Fatalf("color[%d] = %#x at creation", i, c)
		}
	}
}

func TestNewFramebufferRejectsBadDimensions(t *testing.T) {
	for _, dim := range [][2]int{{0, 100}, {100, 0}, {-1, 5}, {MaxDimension, 100}, {100, MaxDimension}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("dimensions %v: no panic", dim)
				}
			}()
			NewFramebuffer(dim[0], dim[1])
		}()
	}
}

// TestSwizzleRoundTrip fills storage with sequential words and checks
// that PackRowMajor reads pixel (x, y) from tile base plus the morton
// offset pdep(x)|pdep(y).
func TestSwizzleRoundTrip(t *testing.T) {
	const size = 2 * swizzle.TileWidth
	fb := NewFramebuffer(size, size)

	for i := range fb.color {
		fb.color[i] = uint32(i)
	}

	packed := make([]byte, size*size*4)
	fb.PackRowMajor(AttachmentColor, 0, 0, size, size, PixelFormatBGRA8Unorm, packed)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			tileX := x / swizzle.TileWidth
			tileY := y / swizzle.TileWidth
			tileBase := (tileY*fb.widthInTiles + tileX) * swizzle.PixelsPerTile
			swz := swizzle.Pdep(uint32(x), swizzle.XMask) | swizzle.Pdep(uint32(y), swizzle.YMask)
			want := uint32(tileBase) + swz

			got := binary.LittleEndian.Uint32(packed[(y*size+x)*4:])
			if got != want {
				t.Fatalf("pixel (%d,%d): packed %#x, want storage index %#x", x, y, got, want)
			}
		}
	}
}

func TestPackRowMajorFormats(t *testing.T) {
	fb := NewFramebuffer(128, 128)

	// Pixel (0,0) of tile 0 lives at storage index 0.
	fb.color[0] = 0xAABBCCDD // A=AA R=BB G=CC B=DD in packed BGRA
	fb.depth[0] = 0x01020304

	var buf [4]byte
	fb.PackRowMajor(AttachmentColor, 0, 0, 1, 1, PixelFormatRGBA8Unorm, buf[:])
	if want := [4]byte{0xBB, 0xCC, 0xDD, 0xAA}; buf != want {
		t.Errorf("RGBA pack = %x, want %x", buf, want)
	}

	fb.PackRowMajor(AttachmentColor, 0, 0, 1, 1, PixelFormatBGRA8Unorm, buf[:])
	if want := [4]byte{0xDD, 0xCC, 0xBB, 0xAA}; buf != want {
		t.Errorf("BGRA pack = %x, want %x", buf, want)
	}

	fb.PackRowMajor(AttachmentDepth, 0, 0, 1, 1, PixelFormatR32Unorm, buf[:])
	if got := binary.LittleEndian.Uint32(buf[:]); got != 0x01020304 {
		t.Errorf("depth pack = %#x, want 0x01020304", got)
	}
}

func TestPackRowMajorRejectsBadArgs(t *testing.T) {
	fb := NewFramebuffer(128, 128)
	buf := make([]byte, 128*128*4)

	mustPanic := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s: no panic", name)
			}
		}()
		fn()
	}

	mustPanic("out of bounds", func() {
		fb.PackRowMajor(AttachmentColor, 100, 0, 100, 10, PixelFormatRGBA8Unorm, buf)
	})
	mustPanic("depth as color format", func() {
		fb.PackRowMajor(AttachmentDepth, 0, 0, 4, 4, PixelFormatRGBA8Unorm, buf)
	})
	mustPanic("color as depth format", func() {
		fb.PackRowMajor(AttachmentColor, 0, 0, 4, 4, PixelFormatR32Unorm, buf)
	})
	mustPanic("short destination", func() {
		fb.PackRowMajor(AttachmentColor, 0, 0, 128, 128, PixelFormatRGBA8Unorm, buf[:16])
	})
}

// TestPackRowMajorSubRectangle packs an unaligned region spanning a
// tile boundary and verifies each pixel lands at its row-major spot.
func TestPackRowMajorSubRectangle(t *testing.T) {
	fb := NewFramebuffer(256, 256)
	for i := range fb.color {
		fb.color[i] = uint32(i)
	}

	const x, y, w, h = 100, 90, 60, 50
	packed := make([]byte, w*h*4)
	fb.PackRowMajor(AttachmentColor, x, y, w, h, PixelFormatBGRA8Unorm, packed)

	for ry := 0; ry < h; ry++ {
		for rx := 0; rx < w; rx++ {
			px, py := x+rx, y+ry
			tileBase := (py/swizzle.TileWidth*fb.widthInTiles + px/swizzle.TileWidth) * swizzle.PixelsPerTile
			swz := swizzle.Pdep(uint32(px), swizzle.XMask) | swizzle.Pdep(uint32(py), swizzle.YMask)
			want := uint32(tileBase) + swz

			got := binary.LittleEndian.Uint32(packed[(ry*w+rx)*4:])
			if got != want {
				t.Fatalf("pixel (%d,%d): got %#x, want %#x", px, py, got, want)
			}
		}
	}
}

func TestClearIdempotence(t *testing.T) {
	fb := NewFramebuffer(256, 200)

	const c = 0xFF336699
	fb.Clear(c)
	fb.Resolve()
	fb.Clear(c)
	fb.Resolve()

	for i, got := range fb.color {
		if got != c {
			t.Fatalf("color[%d] = %#x, want %#x", i, got, c)
		}
	}
	for i, got := range fb.depth {
		if got != 0xFFFFFFFF {
			t.Fatalf("depth[%d] = %#x, want far", i, got)
		}
	}
}

func TestPerfCounterNamesStable(t *testing.T) {
	want := []string{"clipping", "common_setup", "smalltri_setup", "largetri_setup"}
	got := PerfCounterNames()
	if len(got) != len(want) {
		t.Fatalf("PerfCounterNames = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PerfCounterNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	wantTile := []string{
		"smalltri_tile_raster", "smalltri_coarse_raster",
		"largetri_tile_raster", "largetri_coarse_raster",
		"cmdbuf_pushcmd", "cmdbuf_resolve", "clear",
	}
	gotTile := TilePerfCounterNames()
	if len(gotTile) != len(wantTile) {
		t.Fatalf("TilePerfCounterNames = %v", gotTile)
	}
	for i := range wantTile {
		if gotTile[i] != wantTile[i] {
			t.Errorf("TilePerfCounterNames[%d] = %q, want %q", i, gotTile[i], wantTile[i])
		}
	}

	if PerfCounterFrequency() == 0 {
		t.Error("PerfCounterFrequency = 0")
	}
}

func TestPerfCountersAccumulateAndReset(t *testing.T) {
	fb := NewFramebuffer(128, 128)
	fb.Clear(0xFF000000)
	fb.Resolve()

	var clearTicks uint64
	for _, tc := range fb.TilePerfCounters(nil) {
		clearTicks += tc.Clear
	}
	if clearTicks == 0 {
		t.Error("clear counter did not accumulate")
	}

	fb.ResetPerfCounters()
	if fb.PerfCounters() != (PerfCounters{}) {
		t.Error("framebuffer counters not reset")
	}
	for _, tc := range fb.TilePerfCounters(nil) {
		if tc != (TilePerfCounters{}) {
			t.Error("tile counters not reset")
		}
	}
}
