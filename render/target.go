// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render connects the rast framebuffer to presentation
// surfaces: CPU-side image targets and GPU textures shared with a
// host application through gpucontext.
package render

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rast"
)

// RenderTarget is a destination the framebuffer can be packed into.
//
// Targets may be CPU backed (Pixels returns the buffer) or GPU backed
// (Pixels returns nil and the texture lives host-side).
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// Pixels returns direct access to pixel data, or nil for
	// GPU-only targets. For RGBA, each pixel is 4 bytes: R, G, B, A.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// PixmapTarget is a CPU-backed render target using *image.RGBA.
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a new CPU-backed render target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing *image.RGBA as a render
// target. The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int {
	return t.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns direct access to the pixel data.
func (t *PixmapTarget) Pixels() []byte {
	return t.img.Pix
}

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int {
	return t.img.Stride
}

// Image returns the underlying *image.RGBA.
// The returned image shares memory with the target.
func (t *PixmapTarget) Image() *image.RGBA {
	return t.img
}

// Ensure PixmapTarget implements RenderTarget.
var _ RenderTarget = (*PixmapTarget)(nil)

// CopyFramebuffer packs the framebuffer's color attachment into a
// CPU-backed target. If the target is smaller than the framebuffer,
// only the top-left region that fits is copied. image.RGBA rows may
// carry padding, so rows are packed through the target's stride.
func CopyFramebuffer(fb *rast.Framebuffer, t *PixmapTarget) {
	w, h := fb.Width(), fb.Height()
	if t.Width() < w || t.Height() < h {
		w = min(w, t.Width())
		h = min(h, t.Height())
	}

	pix := t.Pixels()
	stride := t.Stride()
	if stride == w*4 {
		fb.PackRowMajor(rast.AttachmentColor, 0, 0, w, h, rast.PixelFormatRGBA8Unorm, pix)
		return
	}
	row := make([]byte, w*4)
	for y := 0; y < h; y++ {
		fb.PackRowMajor(rast.AttachmentColor, 0, y, w, 1, rast.PixelFormatRGBA8Unorm, row)
		copy(pix[y*stride:], row)
	}
}
