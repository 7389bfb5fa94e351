package rast

import (
	"github.com/gogpu/rast/internal/fixed"
	"github.com/gogpu/rast/internal/swizzle"
)

// Tile geometry shorthands for the pipeline code.
const (
	tileWidth        = swizzle.TileWidth
	tilePixels       = swizzle.PixelsPerTile
	coarseWidth      = swizzle.CoarseBlockWidth
	tileCoarseBlocks = swizzle.TileWidthInCoarseBlocks
)

// clipVert is a clip-space vertex: Q16.16 x, y, z, w.
// After the window transform the same storage carries Q16.8 x/y,
// Q16.16 post-divide z, and the original w.
type clipVert struct {
	x, y, z, w fixed.S1516
}

// rasterizeTriangle runs one triangle through the full setup pipeline:
// near/far clipping, window transform, bounding box and orientation,
// then small- or large-triangle binning into tile command rings.
func (fb *Framebuffer) rasterizeTriangle(clipVerts [3]clipVert) {
	start := ticks()

	if fb.clipNearFar(&clipVerts, &start) {
		fb.perf.Clipping += ticks() - start
		return
	}
	fb.perf.Clipping += ticks() - start

	fb.setupTriangle(clipVerts)
}

// clipNearFar clips the triangle in place against the near plane
// (z < 0) and then the far plane (z >= w). With two vertices outside a
// plane the edges are cut short; with one outside the triangle splits
// in two and the first half recurses through rasterizeTriangle. The
// return value reports a fully clipped triangle.
func (fb *Framebuffer) clipNearFar(v *[3]clipVert, start *uint64) bool {
	for _, far := range [2]bool{false, true} {
		var outside [3]bool
		numOutside := 0
		for i := range v {
			if far {
				outside[i] = v[i].z >= v[i].w
			} else {
				outside[i] = v[i].z < 0
			}
			if outside[i] {
				numOutside++
			}
		}

		switch numOutside {
		case 3:
			return true

		case 2:
			in := 0
			if !outside[1] {
				in = 1
			} else if !outside[2] {
				in = 2
			}
			v1 := (in + 1) % 3
			v2 := (in + 2) % 3
			v[v1] = clipIntersect(v[in], v[v1], far)
			v[v2] = clipIntersect(v[in], v[v2], far)

		case 1:
			cv := 0
			if outside[1] {
				cv = 1
			} else if outside[2] {
				cv = 2
			}
			v1 := (cv + 1) % 3
			v2 := (cv + 2) % 3
			clipped1 := clipIntersect(v[cv], v[v1], far)
			clipped2 := clipIntersect(v[cv], v[v2], far)

			// First half recurses; this triangle becomes the second.
			tri := *v
			tri[cv] = clipped1
			fb.perf.Clipping += ticks() - *start
			fb.rasterizeTriangle(tri)
			*start = ticks()

			v[cv] = clipped2
			v[v1] = clipped1
		}
	}
	return false
}

// clipIntersect moves from vertex a toward vertex b until z meets the
// clip plane, interpolating x, y and w linearly. The interpolant is
// alpha = d(a) / (d(a) - d(b)) with d = z against the near plane and
// d = z - w against the far plane. z snaps exactly onto the plane
// (0 for near, w-1 for far) to keep the result inside on requeue.
func clipIntersect(a, b clipVert, far bool) clipVert {
	var alpha fixed.S1516
	if far {
		da := fixed.Add(a.z, -a.w)
		db := fixed.Add(b.z, -b.w)
		alpha = fixed.Div(da, fixed.Add(da, -db))
	} else {
		alpha = fixed.Div(a.z, fixed.Add(a.z, -b.z))
	}
	oneMinus := fixed.Add(fixed.One, -alpha)

	var r clipVert
	r.x = fixed.Add(fixed.Mul(oneMinus, a.x), fixed.Mul(alpha, b.x))
	r.y = fixed.Add(fixed.Mul(oneMinus, a.y), fixed.Mul(alpha, b.y))
	r.w = fixed.Add(fixed.Mul(oneMinus, a.w), fixed.Mul(alpha, b.w))
	if far {
		r.z = r.w - 1
	} else {
		r.z = 0
	}
	return r
}

// setupTriangle transforms a clipped triangle to window coordinates,
// computes its bounding box and Z range, rejects offscreen and
// degenerate geometry, and dispatches to the small- or large-triangle
// setup path.
func (fb *Framebuffer) setupTriangle(clip [3]clipVert) {
	start := ticks()

	two := fixed.FromInt(2)
	width := fixed.FromInt(int32(fb.width))
	height := fixed.FromInt(int32(fb.height))

	// Window transform. x and y drop to Q16.8; z keeps Q16.16 after
	// the perspective divide; w is retained alongside 1/w.
	var verts [3]clipVert
	var rcpWs [3]fixed.S1516
	for i := range clip {
		oneOverW := fixed.Div(fixed.One, clip[i].w)

		verts[i].x = fixed.ToS168(fixed.Mul(fixed.Div(fixed.Add(fixed.Mul(clip[i].x, oneOverW), fixed.One), two), width))
		verts[i].y = fixed.ToS168(fixed.Mul(fixed.Div(fixed.Add(fixed.Mul(-clip[i].y, oneOverW), fixed.One), two), height))
		verts[i].z = fixed.Mul(clip[i].z, oneOverW)
		verts[i].w = clip[i].w
		rcpWs[i] = oneOverW
	}

	minZ := uint32(verts[0].z)
	maxZ := uint32(verts[0].z)
	for i := 1; i < 3; i++ {
		if uint32(verts[i].z) < minZ {
			minZ = uint32(verts[i].z)
		}
		if uint32(verts[i].z) > maxZ {
			maxZ = uint32(verts[i].z)
		}
	}

	bboxMinX := min(verts[0].x, verts[1].x, verts[2].x)
	bboxMaxX := max(verts[0].x, verts[1].x, verts[2].x)
	bboxMinY := min(verts[0].y, verts[1].y, verts[2].y)
	bboxMaxY := max(verts[0].y, verts[1].y, verts[2].y)

	// Scissor: the whole window.
	if bboxMaxX < 0 || bboxMaxY < 0 ||
		bboxMinX >= int32(fb.width)<<8 || bboxMinY >= int32(fb.height)<<8 {
		fb.perf.CommonSetup += ticks() - start
		return
	}

	clampedMinX := max(bboxMinX, 0)
	clampedMinY := max(bboxMinY, 0)
	clampedMaxX := min(bboxMaxX, int32(fb.width)<<8-1)
	clampedMaxY := min(bboxMaxY, int32(fb.height)<<8-1)

	// Small triangles are narrower than a tile on both axes, which
	// bounds their edge equations to 32 bits once rebased.
	isLarge := bboxMaxX-bboxMinX >= tileWidth<<8 ||
		bboxMaxY-bboxMinY >= tileWidth<<8

	fb.perf.CommonSetup += ticks() - start

	if isLarge {
		fb.setupLargeTri(verts, rcpWs, minZ, maxZ,
			clampedMinX, clampedMinY, clampedMaxX, clampedMaxY)
	} else {
		fb.setupSmallTri(verts, rcpWs, minZ, maxZ,
			bboxMinX, bboxMinY, bboxMaxX, bboxMaxY)
	}
}
