package rast

import "github.com/gogpu/rast/internal/swizzle"

// drawTileLargeTri rasterizes a large-triangle command against one
// tile. The command's tag carries N, the number of edges that still
// need per-pixel tests within this tile; the other edges passed
// trivial accept at binning time. Coarse blocks get their own
// accept/reject pass so fully covered blocks test even fewer edges.
func (fb *Framebuffer) drawTileLargeTri(tileID int, cmd *largeTriCmd) {
	start := ticks()

	numTestEdges := int(cmd.tag - cmdDrawTile0Edge)

	var coarseEdgeDXs, coarseEdgeDYs [3]int32
	for v := 0; v < numTestEdges; v++ {
		coarseEdgeDXs[v] = cmd.edgeDXs[v] * coarseWidth
		coarseEdgeDYs[v] = cmd.edgeDYs[v] * coarseWidth
	}

	var edges, edgeTrivRejs, edgeTrivAccs [3]int32
	for v := 0; v < numTestEdges; v++ {
		edges[v] = cmd.edges[v]
		edgeTrivRejs[v] = cmd.edges[v]
		edgeTrivAccs[v] = cmd.edges[v]
		if coarseEdgeDXs[v] < 0 {
			edgeTrivRejs[v] += coarseEdgeDXs[v]
		}
		if coarseEdgeDXs[v] > 0 {
			edgeTrivAccs[v] += coarseEdgeDXs[v]
		}
		if coarseEdgeDYs[v] < 0 {
			edgeTrivRejs[v] += coarseEdgeDYs[v]
		}
		if coarseEdgeDYs[v] > 0 {
			edgeTrivAccs[v] += coarseEdgeDYs[v]
		}
	}

	tileY := tileID / fb.widthInTiles
	tileX := tileID - tileY*fb.widthInTiles

	for cbY := 0; cbY < tileCoarseBlocks; cbY++ {
		var rowEdges, rowTrivRejs, rowTrivAccs [3]int32
		for v := 0; v < numTestEdges; v++ {
			rowEdges[v] = edges[v]
			rowTrivRejs[v] = edgeTrivRejs[v]
			rowTrivAccs[v] = edgeTrivAccs[v]
		}

		for cbX := 0; cbX < tileCoarseBlocks; cbX++ {
			rejected := false
			for v := 0; v < numTestEdges; v++ {
				if rowTrivRejs[v] >= 0 {
					rejected = true
					break
				}
			}

			if !rejected {
				cbCmd := *cmd

				var needsTest [3]bool
				numTests := 0
				for v := 0; v < numTestEdges; v++ {
					if rowTrivAccs[v] >= 0 {
						needsTest[v] = true
						numTests++
					}
				}

				cbCmd.tag = cmdDrawTile0Edge + uint32(numTests)

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

				for v := 0; v < numTests; v++ {
					rv := (v + rotation) % 3
					cbCmd.edges[v] = rowEdges[rv]
					cbCmd.edgeDXs[v] = cmd.edgeDXs[rv]
					cbCmd.edgeDYs[v] = cmd.edgeDYs[rv]
				}

				coarseTopLeftX := tileX*tileWidth + cbX*coarseWidth
				coarseTopLeftY := tileY*tileWidth + cbY*coarseWidth

				fb.tilePerf[tileID].LargeTriTileRaster += ticks() - start
				fb.drawCoarseBlockLargeTri(tileID, coarseTopLeftX, coarseTopLeftY, &cbCmd)
				start = ticks()
			}

			for v := 0; v < numTestEdges; v++ {
				rowEdges[v] += coarseEdgeDXs[v]
				rowTrivRejs[v] += coarseEdgeDXs[v]
				rowTrivAccs[v] += coarseEdgeDXs[v]
			}
		}

		for v := 0; v < numTestEdges; v++ {
			edges[v] += coarseEdgeDYs[v]
			edgeTrivRejs[v] += coarseEdgeDYs[v]
			edgeTrivAccs[v] += coarseEdgeDYs[v]
		}
	}

	fb.tilePerf[tileID].LargeTriTileRaster += ticks() - start
}

// drawCoarseBlockLargeTri rasterizes one 16x16 coarse block of a large
// triangle. Identical per-pixel math to the small path except only the
// first N edges are tested, barycentric contributions of untested
// edges are zero, and the reciprocal carries a 16-bit mantissa.
func (fb *Framebuffer) drawCoarseBlockLargeTri(tileID, coarseTopLeftX, coarseTopLeftY int, cmd *largeTriCmd) {
	start := ticks()

	numTestEdges := int(cmd.tag - cmdDrawTile0Edge)

	edges := cmd.edges

	tileStart := tileID * tilePixels

	yBits := swizzle.Pdep(uint32(coarseTopLeftY), swizzle.YMask)
	for y := coarseTopLeftY; y < coarseTopLeftY+coarseWidth; y++ {
		rowEdges := edges

		xBits := swizzle.Pdep(uint32(coarseTopLeftX), swizzle.XMask)
		for x := coarseTopLeftX; x < coarseTopLeftX+coarseWidth; x++ {
			dst := tileStart + int(yBits|xBits)

			discarded := false
			for v := 0; v < numTestEdges; v++ {
				if rowEdges[v] >= 0 {
					discarded = true
					break
				}
			}

			if !discarded {
				mant := int32(cmd.rcpArea & 0xFFFF)
				exp := int32(cmd.rcpArea&0xFF0000) >> 16
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
				// Untested edges are known inside; their contribution
				// collapses to zero.
				u := (shiftedE2 * mant) >> 16 >> 1
				if numTestEdges < 3 {
					u = 0
				}
				v := (shiftedE0 * mant) >> 16 >> 1
				if numTestEdges < 1 {
					v = 0
				}
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

			for v := 0; v < numTestEdges; v++ {
				rowEdges[v] += cmd.edgeDXs[v]
			}
			xBits = swizzle.Advance(xBits, swizzle.XMask)
		}

		for v := 0; v < numTestEdges; v++ {
			edges[v] += cmd.edgeDYs[v]
		}
		yBits = swizzle.Advance(yBits, swizzle.YMask)
	}

	fb.tilePerf[tileID].LargeTriCoarseRaster += ticks() - start
}
