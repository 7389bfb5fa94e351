package rast

// pushCmd appends a serialized command to a tile's ring buffer.
//
// The ring keeps two invariants: the write cursor never catches up to
// the read cursor from behind (one dword of separation always remains,
// keeping Empty distinguishable from Full), and a command never spans
// the wrap point (a cmdResetBuf marker abandons the slop at the end
// instead). Whenever an invariant would break, the tile is resolved in
// place to drain the ring.
func (fb *Framebuffer) pushCmd(tileID int, cmd []uint32) {
	start := ticks()

	tb := &fb.tiles[tileID]
	n := len(cmd)

	if tb.read > tb.write && tb.read-tb.write < n+1 {
		// Read cursor ahead of write with not enough room between.
		fb.tilePerf[tileID].CmdbufPushCmd += ticks() - start
		fb.resolveTile(tileID)
		start = ticks()
	}

	if len(tb.buf)-tb.write < n {
		// Not enough room before the end; abandon the slop.
		tb.buf[tb.write] = cmdResetBuf

		if tb.read == 0 {
			// Write is about to wrap onto the read cursor, so make
			// read catch up first.
			fb.tilePerf[tileID].CmdbufPushCmd += ticks() - start
			fb.resolveTile(tileID)
			start = ticks()

			tb.read = 0
		}
		tb.write = 0

		if tb.read > tb.write && tb.read-tb.write < n+1 {
			// The read cursor is in the way again after wrapping.
			fb.tilePerf[tileID].CmdbufPushCmd += ticks() - start
			fb.resolveTile(tileID)
			start = ticks()
		}
	}

	copy(tb.buf[tb.write:], cmd)
	tb.write += n

	if tb.write == tb.read {
		panic("rast: command ring write cursor caught read cursor")
	}

	if tb.write == len(tb.buf) {
		if tb.read == 0 {
			// The whole buffer is pending; drain it so both cursors
			// can return to the start.
			fb.tilePerf[tileID].CmdbufPushCmd += ticks() - start
			fb.resolveTile(tileID)
			start = ticks()
		}
		tb.write = 0
	}

	fb.tilePerf[tileID].CmdbufPushCmd += ticks() - start
}

// resolveTile drains one tile's ring, dispatching each command against
// the tile's pixels, and leaves the ring empty (read == write).
func (fb *Framebuffer) resolveTile(tileID int) {
	start := ticks()

	tb := &fb.tiles[tileID]

	i := tb.read
	for i != tb.write {
		switch tag := tb.buf[i]; {
		case tag == cmdResetBuf:
			i = 0

		case tag == cmdDrawSmallTri:
			cmd := decodeSmallTriCmd(tb.buf[i:])
			fb.tilePerf[tileID].CmdbufResolve += ticks() - start
			fb.drawTileSmallTri(tileID, &cmd)
			start = ticks()
			i += smallTriCmdSize

		case tag >= cmdDrawTile0Edge && tag <= cmdDrawTile3Edge:
			cmd := decodeLargeTriCmd(tb.buf[i:])
			fb.tilePerf[tileID].CmdbufResolve += ticks() - start
			fb.drawTileLargeTri(tileID, &cmd)
			start = ticks()
			i += largeTriCmdSize

		case tag == cmdClearTile:
			color := tb.buf[i+1]
			fb.tilePerf[tileID].CmdbufResolve += ticks() - start
			fb.clearTile(tileID, color)
			start = ticks()
			i += clearCmdSize

		default:
			panic("rast: unknown tile command")
		}

		if i == len(tb.buf) {
			i = 0
			if tb.write == len(tb.buf) {
				break
			}
		}
	}

	tb.read = i

	fb.tilePerf[tileID].CmdbufResolve += ticks() - start
}

// clearTile fills one tile's color plane and resets its depth plane to
// the far value.
func (fb *Framebuffer) clearTile(tileID int, color uint32) {
	start := ticks()

	base := tileID * tilePixels
	colorPlane := fb.color[base : base+tilePixels]
	depthPlane := fb.depth[base : base+tilePixels]
	for i := range colorPlane {
		colorPlane[i] = color
		depthPlane[i] = 0xFFFFFFFF
	}

	fb.tilePerf[tileID].Clear += ticks() - start
}
