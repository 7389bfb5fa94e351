package rast

import (
	"math/bits"

	"github.com/gogpu/rast/internal/fixed"
)

// setupSmallTri bins a triangle whose bbox fits within one tile span.
// Such a triangle overlaps at most a 2x2 block of tiles. Vertices are
// rebased to the bottom-right tile of that block so every intermediate
// edge value fits comfortably in 32 bits, then one command is enqueued
// per overlapping tile with the edges shifted to that tile's origin.
func (fb *Framebuffer) setupSmallTri(verts [3]clipVert, rcpWs [3]fixed.S1516, minZ, maxZ uint32, bboxMinX, bboxMinY, bboxMaxX, bboxMaxY int32) {
	start := ticks()

	firstTileX := int(bboxMinX>>8) / tileWidth
	firstTileY := int(bboxMinY>>8) / tileWidth
	lastTileX := int(bboxMaxX>>8) / tileWidth
	lastTileY := int(bboxMaxY>>8) / tileWidth

	firstTilePxX := (int32(firstTileX) << 8) * tileWidth
	firstTilePxY := (int32(firstTileY) << 8) * tileWidth
	lastTilePxX := (int32(lastTileX) << 8) * tileWidth
	lastTilePxY := (int32(lastTileY) << 8) * tileWidth

	// Coarse blocks touched, relative to the top-left tile of the block.
	firstRelCbX := ((bboxMinX - firstTilePxX) >> 8) / coarseWidth
	firstRelCbY := ((bboxMinY - firstTilePxY) >> 8) / coarseWidth
	lastRelCbX := ((bboxMaxX - firstTilePxX) >> 8) / coarseWidth
	lastRelCbY := ((bboxMaxY - firstTilePxY) >> 8) / coarseWidth

	// Rebase onto the bottom-right tile; |coord| is now at most one
	// tile span, so the cross products below stay inside 32 bits.
	for v := range verts {
		verts[v].x -= lastTilePxX
		verts[v].y -= lastTilePxY
	}

	triarea2 := ((verts[1].x-verts[0].x)*(verts[2].y-verts[0].y) -
		(verts[1].y-verts[0].y)*(verts[2].x-verts[0].x)) >> 8

	if triarea2 == 0 {
		// Degenerate.
		fb.perf.SmallTriSetup += ticks() - start
		return
	}
	if triarea2 < 0 {
		// Flip to clockwise.
		verts[1], verts[2] = verts[2], verts[1]
		rcpWs[1], rcpWs[2] = rcpWs[2], rcpWs[1]
		triarea2 = -triarea2
	}

	rcpArea := rcpTriArea2Small(triarea2)

	var edges, edgeDXs, edgeDYs [3]int32
	for v := 0; v < 3; v++ {
		v1 := (v + 1) % 3

		edgeDXs[v] = verts[v1].y - verts[v].y
		edgeDYs[v] = verts[v].x - verts[v1].x

		// Edge equation evaluated at the (0.5, 0.5) sample of the
		// rebased origin pixel.
		const half = 0x80
		edges[v] = (half-verts[v].x)*edgeDXs[v] - (half-verts[v].y)*(-edgeDYs[v])

		// Top-left rule: nudge top and left edges outward so shared
		// edges between adjacent triangles land in exactly one of them.
		if (verts[v].y == verts[v1].y && verts[v].x < verts[v1].x) || verts[v].y > verts[v1].y {
			edges[v]--
		}

		edges[v] >>= 8
	}

	// Rotate so the vertex opposite the steepest edge is the one whose
	// barycentric is derived from the other two.
	maxSlopeVertex := -1
	var maxSlope int64
	for i := 0; i < 3; i++ {
		v1 := (i + 1) % 3
		slope := int64(edgeDXs[v1])*int64(edgeDXs[v1]) + int64(edgeDYs[v1])*int64(edgeDYs[v1])
		if slope > maxSlope {
			maxSlopeVertex = i
			maxSlope = slope
		}
	}
	if rot := maxSlopeVertex; rot > 0 {
		e, dx, dy, vv, rw := edges, edgeDXs, edgeDYs, verts, rcpWs
		for i := 0; i < 3; i++ {
			j := (i + rot) % 3
			edges[i] = e[j]
			edgeDXs[i] = dx[j]
			edgeDYs[i] = dy[j]
			verts[i] = vv[j]
			rcpWs[i] = rw[j]
		}
	}

	cmd := smallTriCmd{
		edgeDXs: edgeDXs,
		edgeDYs: edgeDYs,
		maxZ:    maxZ,
		minZ:    minZ,
		rcpArea: rcpArea,
	}
	for v := 0; v < 3; v++ {
		cmd.vertZs[v] = verts[v].z
	}

	var dwords [smallTriCmdSize]uint32
	for ty := firstTileY; ty <= lastTileY; ty++ {
		if ty < 0 || ty >= fb.heightInTiles {
			continue
		}
		for tx := firstTileX; tx <= lastTileX; tx++ {
			if tx < 0 || tx >= fb.widthInTiles {
				continue
			}

			// Shift the edge values from the bottom-right tile's
			// origin to this tile's origin.
			for v := 0; v < 3; v++ {
				cmd.edges[v] = edges[v] +
					(edgeDXs[v]*int32(tx-lastTileX)+edgeDYs[v]*int32(ty-lastTileY))*tileWidth
			}

			offX := int32(tx-firstTileX) * tileCoarseBlocks
			offY := int32(ty-firstTileY) * tileCoarseBlocks
			cmd.firstCoarseX = max(firstRelCbX-offX, 0)
			cmd.lastCoarseX = min(lastRelCbX-offX, tileCoarseBlocks-1)
			cmd.firstCoarseY = max(firstRelCbY-offY, 0)
			cmd.lastCoarseY = min(lastRelCbY-offY, tileCoarseBlocks-1)

			cmd.encode(&dwords)
			fb.perf.SmallTriSetup += ticks() - start
			fb.pushCmd(ty*fb.widthInTiles+tx, dwords[:])
			start = ticks()
		}
	}

	fb.perf.SmallTriSetup += ticks() - start
}

// rcpTriArea2Small packs 1/(2*area) as a pseudo-float with an 8-bit
// mantissa and an 8-bit biased exponent. The pixel loop undoes the
// exponent with a shift and multiplies by the mantissa, avoiding a
// division per pixel.
func rcpTriArea2Small(triarea2 int32) uint32 {
	lz := int32(bits.LeadingZeros32(uint32(triarea2)))

	// Normalize the area so its top bit sits at bit 8.
	mantShift := (31 - 8) - lz
	var mant int32
	if mantShift < 0 {
		mant = triarea2 << -mantShift
	} else {
		mant = triarea2 >> mantShift
	}

	// The numerator is 1.8-normalized to match the mantissa.
	rcpMant := int32(0xFFFF) / mant

	// Denormalize the reciprocal down to 8 bits.
	rcpShift := (31 - 7) - int32(bits.LeadingZeros32(uint32(rcpMant)))
	if rcpShift < 0 {
		rcpMant <<= -rcpShift
	} else {
		rcpMant >>= rcpShift
	}
	rcpMant &= 0xFF

	exp := uint32(127 + mantShift - rcpShift)
	return exp<<8 | uint32(rcpMant)
}
