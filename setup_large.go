package rast

import (
	"math/bits"

	"github.com/gogpu/rast/internal/fixed"
)

// setupLargeTri bins a triangle wider than a tile. Edge equations are
// evaluated once at the first tile's sample point with 64-bit
// intermediates (two Q16.8 products need up to 48 bits), then stepped
// across the bbox tile by tile. Each tile is tested with
// trivial-reject and trivial-accept corners; surviving tiles get a
// command tagged with the number of edges still needing per-pixel
// tests, rotated to the front.
func (fb *Framebuffer) setupLargeTri(verts [3]clipVert, rcpWs [3]fixed.S1516, minZ, maxZ uint32, bboxMinX, bboxMinY, bboxMaxX, bboxMaxY int32) {
	start := ticks()

	firstTileX := int(bboxMinX>>8) / tileWidth
	firstTileY := int(bboxMinY>>8) / tileWidth
	lastTileX := int(bboxMaxX>>8) / tileWidth
	lastTileY := int(bboxMaxY>>8) / tileWidth

	firstTilePxX := (int64(firstTileX) << 8) * tileWidth
	firstTilePxY := (int64(firstTileY) << 8) * tileWidth

	triarea2 := ((int64(verts[1].x)-int64(verts[0].x))*(int64(verts[2].y)-int64(verts[0].y)) -
		(int64(verts[1].y)-int64(verts[0].y))*(int64(verts[2].x)-int64(verts[0].x))) >> 8

	if triarea2 == 0 {
		// Degenerate.
		fb.perf.LargeTriSetup += ticks() - start
		return
	}
	if triarea2 < 0 {
		// Flip to clockwise.
		verts[1], verts[2] = verts[2], verts[1]
		rcpWs[1], rcpWs[2] = rcpWs[2], rcpWs[1]
		triarea2 = -triarea2
	}

	rcpArea := rcpTriArea2Large(triarea2)

	var edges, edgeDXs, edgeDYs [3]int64
	for v := 0; v < 3; v++ {
		v1 := (v + 1) % 3

		edgeDXs[v] = int64(verts[v1].y) - int64(verts[v].y)
		edgeDYs[v] = int64(verts[v].x) - int64(verts[v1].x)

		// Edge equation at the (0.5, 0.5) sample of the first tile's
		// top-left pixel.
		const half = 0x80
		edges[v] = (firstTilePxX+half-int64(verts[v].x))*edgeDXs[v] -
			(firstTilePxY+half-int64(verts[v].y))*(-edgeDYs[v])

		// Top-left rule, as in the small path.
		if (verts[v].y == verts[v1].y && verts[v].x < verts[v1].x) || verts[v].y > verts[v1].y {
			edges[v]--
		}

		edges[v] >>= 8
	}

	var tileEdgeDXs, tileEdgeDYs [3]int64
	for v := 0; v < 3; v++ {
		tileEdgeDXs[v] = edgeDXs[v] * tileWidth
		tileEdgeDYs[v] = edgeDYs[v] * tileWidth
	}

	// Trivial reject samples the tile corner most inside each edge;
	// trivial accept the corner most outside. Adding the step
	// component of matching sign picks the corner.
	var edgeTrivRejs, edgeTrivAccs [3]int64
	for v := 0; v < 3; v++ {
		edgeTrivRejs[v] = edges[v]
		edgeTrivAccs[v] = edges[v]
		if tileEdgeDXs[v] < 0 {
			edgeTrivRejs[v] += tileEdgeDXs[v]
		}
		if tileEdgeDXs[v] > 0 {
			edgeTrivAccs[v] += tileEdgeDXs[v]
		}
		if tileEdgeDYs[v] < 0 {
			edgeTrivRejs[v] += tileEdgeDYs[v]
		}
		if tileEdgeDYs[v] > 0 {
			edgeTrivAccs[v] += tileEdgeDYs[v]
		}
	}

	var dwords [largeTriCmdSize]uint32

	tileRowStart := firstTileY*fb.widthInTiles + firstTileX
	for tileY := firstTileY; tileY <= lastTileY; tileY++ {
		var rowEdges, rowTrivRejs, rowTrivAccs [3]int64
		for v := 0; v < 3; v++ {
			rowEdges[v] = edges[v]
			rowTrivRejs[v] = edgeTrivRejs[v]
			rowTrivAccs[v] = edgeTrivAccs[v]
		}

		tileID := tileRowStart

		for tileX := firstTileX; tileX <= lastTileX; tileX++ {
			// Skip tiles with at least one edge fully outside.
			rejected := rowTrivRejs[0] >= 0 || rowTrivRejs[1] >= 0 || rowTrivRejs[2] >= 0

			if !rejected {
				var needsTest [3]bool
				numTests := 0
				for v := 0; v < 3; v++ {
					if rowTrivAccs[v] >= 0 {
						needsTest[v] = true
						numTests++
					}
				}

				cmd := largeTriCmd{
					tag:     cmdDrawTile0Edge + uint32(numTests),
					maxZ:    maxZ,
					minZ:    minZ,
					rcpArea: rcpArea,
				}

				// Rotate the needs-test edges to the front so the
				// consumer can test exactly the first N.
				rotation := 0
				switch numTests {
				case 1:
					if needsTest[1] {
						rotation = 1
					} else if needsTest[2] {
						rotation = 2
					}
				case 2:
					if !needsTest[0] {
						rotation = 1
					} else if !needsTest[1] {
						rotation = 2
					}
				}

				for v := 0; v < 3; v++ {
					rv := (v + rotation) % 3

					if v < numTests {
						// Edges that survived trivial accept/reject
						// against this tile are bounded by one tile
						// span, so the narrowing below is lossless.
						if rowEdges[rv] < -1<<31 || rowEdges[rv] > 1<<31-1 {
							panic("rast: large-triangle edge out of 32-bit range")
						}
					}

					cmd.edges[v] = int32(rowEdges[rv])
					cmd.edgeDXs[v] = int32(edgeDXs[rv])
					cmd.edgeDYs[v] = int32(edgeDYs[rv])
					cmd.vertZs[v] = verts[rv].z
				}

				cmd.encode(&dwords)
				fb.perf.LargeTriSetup += ticks() - start
				fb.pushCmd(tileID, dwords[:])
				start = ticks()
			}

			tileID++
			for v := 0; v < 3; v++ {
				rowEdges[v] += tileEdgeDXs[v]
				rowTrivRejs[v] += tileEdgeDXs[v]
				rowTrivAccs[v] += tileEdgeDXs[v]
			}
		}

		tileRowStart += fb.widthInTiles
		for v := 0; v < 3; v++ {
			edges[v] += tileEdgeDYs[v]
			edgeTrivRejs[v] += tileEdgeDYs[v]
			edgeTrivAccs[v] += tileEdgeDYs[v]
		}
	}

	fb.perf.LargeTriSetup += ticks() - start
}

// rcpTriArea2Large packs 1/(2*area) as a pseudo-float with a 16-bit
// mantissa and an 8-bit biased exponent, the wider counterpart of
// rcpTriArea2Small for areas that need 64-bit setup math.
func rcpTriArea2Large(triarea2 int64) uint32 {
	lz := int32(bits.LeadingZeros64(uint64(triarea2)))

	// Normalize the area so its top bit sits at bit 16.
	mantShift := (63 - 16) - lz
	var mant int32
	if mantShift < 0 {
		mant = int32(triarea2 << -mantShift)
	} else {
		mant = int32(triarea2 >> mantShift)
	}

	// The numerator is 1.16-normalized to match the mantissa.
	rcpMant := int32(0xFFFFFFFF / int64(mant))

	// Denormalize the reciprocal down to 16 bits.
	rcpShift := (31 - 15) - int32(bits.LeadingZeros32(uint32(rcpMant)))
	if rcpShift < 0 {
		rcpMant <<= -rcpShift
	} else {
		rcpMant >>= rcpShift
	}
	rcpMant &= 0xFFFF

	exp := uint32(127 + mantShift - rcpShift)
	return exp<<16 | uint32(rcpMant)
}
