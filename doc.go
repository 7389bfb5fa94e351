// Package rast implements a tile-binned, Pineda-style software
// triangle rasterizer on 32-bit fixed-point arithmetic.
//
// Clip-space triangles (Q16.16 x, y, z, w) are clipped against the
// near and far planes, projected to Q16.8 window coordinates, and
// binned into 128x128 pixel tiles. Each tile owns a small command
// ring buffer; Resolve drains the rings and performs coarse-block
// rejection, per-pixel edge tests, barycentric interpolation, depth
// testing and color writes. Pixels are stored morton-swizzled inside
// each tile so every rasterization granule stays contiguous in
// memory.
//
// The core is single threaded by design: no tile ever touches another
// tile's pixels or commands, so a future scheduler can resolve tiles
// concurrently without changing the data model.
//
// Basic usage:
//
//	fb := rast.NewFramebuffer(640, 480)
//	fb.Clear(0xFF101010)
//	fb.Draw(vertices) // Q16.16 clip-space x,y,z,w per vertex
//	fb.Resolve()
//
//	pix := make([]byte, 640*480*4)
//	fb.PackRowMajor(rast.AttachmentColor, 0, 0, 640, 480, rast.PixelFormatRGBA8Unorm, pix)
//
// The scene package layers models, instances and fixed-point matrix
// transforms on top of this package.
package rast
