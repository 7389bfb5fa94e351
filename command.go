package rast

// Tile commands are serialized into each tile's ring buffer as dwords.
// The first dword of every command is its tag; the consumer dispatches
// on the tag and advances by the command's fixed dword size.
const (
	// cmdResetBuf marks the end of the usable ring; the consumer
	// jumps back to the ring start.
	cmdResetBuf uint32 = iota

	// cmdDrawSmallTri rasterizes a triangle no wider than a tile.
	cmdDrawSmallTri

	// cmdDrawTile0Edge through cmdDrawTile3Edge rasterize a large
	// triangle's overlap with this tile; the offset from
	// cmdDrawTile0Edge is the number of edges still needing
	// per-pixel tests (the rest are trivially inside).
	cmdDrawTile0Edge
	cmdDrawTile1Edge
	cmdDrawTile2Edge
	cmdDrawTile3Edge

	// cmdClearTile fills the tile with a solid color and resets its
	// depth to the far plane.
	cmdClearTile
)

// Command sizes in dwords, tag included.
const (
	smallTriCmdSize = 20
	largeTriCmdSize = 16
	clearCmdSize    = 2
)

// smallTriCmd is the payload of a cmdDrawSmallTri command. Edge values
// are Q16.0 (truncated from Q16.8 edge equations), rebased to this
// tile's origin. The coarse range is inclusive and tile-relative.
type smallTriCmd struct {
	edges   [3]int32
	edgeDXs [3]int32
	edgeDYs [3]int32
	vertZs  [3]int32
	maxZ    uint32
	minZ    uint32
	rcpArea uint32 // packed pseudo-float reciprocal of 2*area

	firstCoarseX int32
	lastCoarseX  int32
	firstCoarseY int32
	lastCoarseY  int32
}

func (c *smallTriCmd) encode(dst *[smallTriCmdSize]uint32) {
	dst[0] = cmdDrawSmallTri
	for v := 0; v < 3; v++ {
		dst[1+v] = uint32(c.edges[v])
		dst[4+v] = uint32(c.edgeDXs[v])
		dst[7+v] = uint32(c.edgeDYs[v])
		dst[10+v] = uint32(c.vertZs[v])
	}
	dst[13] = c.maxZ
	dst[14] = c.minZ
	dst[15] = c.rcpArea
	dst[16] = uint32(c.firstCoarseX)
	dst[17] = uint32(c.lastCoarseX)
	dst[18] = uint32(c.firstCoarseY)
	dst[19] = uint32(c.lastCoarseY)
}

func decodeSmallTriCmd(src []uint32) smallTriCmd {
	var c smallTriCmd
	for v := 0; v < 3; v++ {
		c.edges[v] = int32(src[1+v])
		c.edgeDXs[v] = int32(src[4+v])
		c.edgeDYs[v] = int32(src[7+v])
		c.vertZs[v] = int32(src[10+v])
	}
	c.maxZ = src[13]
	c.minZ = src[14]
	c.rcpArea = src[15]
	c.firstCoarseX = int32(src[16])
	c.lastCoarseX = int32(src[17])
	c.firstCoarseY = int32(src[18])
	c.lastCoarseY = int32(src[19])
	return c
}

// largeTriCmd is the payload of a cmdDrawTileNEdge command. Only the
// first N edge slots are meaningful, where N is the tag's edge count;
// the setup stage rotates the needs-test edges to the front.
type largeTriCmd struct {
	tag     uint32
	edges   [3]int32
	edgeDXs [3]int32
	edgeDYs [3]int32
	vertZs  [3]int32
	maxZ    uint32
	minZ    uint32
	rcpArea uint32
}

func (c *largeTriCmd) encode(dst *[largeTriCmdSize]uint32) {
	dst[0] = c.tag
	for v := 0; v < 3; v++ {
		dst[1+v] = uint32(c.edges[v])
		dst[4+v] = uint32(c.edgeDXs[v])
		dst[7+v] = uint32(c.edgeDYs[v])
		dst[10+v] = uint32(c.vertZs[v])
	}
	dst[13] = c.maxZ
	dst[14] = c.minZ
	dst[15] = c.rcpArea
}

func decodeLargeTriCmd(src []uint32) largeTriCmd {
	var c largeTriCmd
	c.tag = src[0]
	for v := 0; v < 3; v++ {
		c.edges[v] = int32(src[1+v])
		c.edgeDXs[v] = int32(src[4+v])
		c.edgeDYs[v] = int32(src[7+v])
		c.vertZs[v] = int32(src[10+v])
	}
	c.maxZ = src[13]
	c.minZ = src[14]
	c.rcpArea = src[15]
	return c
}
