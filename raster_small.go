package rast

import "github.com/gogpu/rast/internal/swizzle"

// drawTileSmallTri rasterizes a small-triangle command against one
// tile, stepping the edge equations across the command's coarse-block
// range. Small triangles get no trivial accept: every pixel tests all
// three edges.
func (fb *Framebuffer) drawTileSmallTri(tileID int, cmd *smallTriCmd) {
	start := ticks()

	var coarseEdgeDXs, coarseEdgeDYs [3]int32
	for v := 0; v < 3; v++ {
		coarseEdgeDXs[v] = cmd.edgeDXs[v] * coarseWidth
		coarseEdgeDYs[v] = cmd.edgeDYs[v] * coarseWidth
	}

	var edges [3]int32
	for v := 0; v < 3; v++ {
		edges[v] = cmd.edges[v] +
			cmd.firstCoarseX*coarseEdgeDXs[v] +
			cmd.firstCoarseY*coarseEdgeDYs[v]
	}

	tileY := tileID / fb.widthInTiles
	tileX := tileID - tileY*fb.widthInTiles

	for cbY := cmd.firstCoarseY; cbY <= cmd.lastCoarseY; cbY++ {
		rowEdges := edges

		for cbX := cmd.firstCoarseX; cbX <= cmd.lastCoarseX; cbX++ {
			coarseTopLeftX := tileX*tileWidth + int(cbX)*coarseWidth
			coarseTopLeftY := tileY*tileWidth + int(cbY)*coarseWidth

			fb.tilePerf[tileID].SmallTriTileRaster += ticks() - start
			fb.drawCoarseBlockSmallTri(tileID, coarseTopLeftX, coarseTopLeftY, rowEdges, cmd)
			start = ticks()

			for v := 0; v < 3; v++ {
				rowEdges[v] += coarseEdgeDXs[v]
			}
		}

		for v := 0; v < 3; v++ {
			edges[v] += coarseEdgeDYs[v]
		}
	}

	fb.tilePerf[tileID].SmallTriTileRaster += ticks() - start
}

// drawCoarseBlockSmallTri rasterizes one 16x16 coarse block of a small
// triangle: per-pixel edge tests, barycentric interpolation via the
// packed reciprocal, depth test, and color write. Pixels advance
// through the tile's morton layout with the masked-subtract trick so
// no pdep runs in the loop.
func (fb *Framebuffer) drawCoarseBlockSmallTri(tileID, coarseTopLeftX, coarseTopLeftY int, edges [3]int32, cmd *smallTriCmd) {
	start := ticks()

	tileStart := tileID * tilePixels

	yBits := swizzle.Pdep(uint32(coarseTopLeftY), swizzle.YMask)
	for y := coarseTopLeftY; y < coarseTopLeftY+coarseWidth; y++ {
		rowEdges := edges

		xBits := swizzle.Pdep(uint32(coarseTopLeftX), swizzle.XMask)
		for x := coarseTopLeftX; x < coarseTopLeftX+coarseWidth; x++ {
			dst := tileStart + int(yBits|xBits)

			discarded := rowEdges[0] >= 0 || rowEdges[1] >= 0 || rowEdges[2] >= 0

			if !discarded {
				mant := int32(cmd.rcpArea & 0xFF)
				exp := int32(cmd.rcpArea&0xFF00) >> 8
				rshift := exp - 127

				shiftedE2 := -rowEdges[2]
				shiftedE0 := -rowEdges[0]
				if rshift < 0 {
					shiftedE2 <<= -rshift
					shiftedE0 <<= -rshift
				} else {
					shiftedE2 >>= rshift
					shiftedE0 >>= rshift
				}

				// Non-perspective-correct barycentrics in [0, 0x8000).
				u := (shiftedE2 * mant) >> 1
				v := (shiftedE0 * mant) >> 1
				w := 0x7FFF - u - v

				pixelZ := uint32(cmd.vertZs[0]<<15) +
					uint32(u*(cmd.vertZs[1]-cmd.vertZs[0])) +
					uint32(v*(cmd.vertZs[2]-cmd.vertZs[0]))

				if pixelZ < cmd.minZ<<15 {
					pixelZ = cmd.minZ << 15
				}
				if pixelZ > cmd.maxZ<<15 {
					pixelZ = cmd.maxZ << 15
				}

				if pixelZ < fb.depth[dst] {
					fb.depth[dst] = pixelZ
					fb.color[dst] = 0xFF000000 |
						uint32(w/0x80)<<16 | uint32(u/0x80)<<8 | uint32(v/0x80)
				}
			}

			for v := 0; v < 3; v++ {
				rowEdges[v] += cmd.edgeDXs[v]
			}
			xBits = swizzle.Advance(xBits, swizzle.XMask)
		}

		for v := 0; v < 3; v++ {
			edges[v] += cmd.edgeDYs[v]
		}
		yBits = swizzle.Advance(yBits, swizzle.YMask)
	}

	fb.tilePerf[tileID].SmallTriCoarseRaster += ticks() - start
}
