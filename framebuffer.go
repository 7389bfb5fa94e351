package rast

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/rast/internal/fixed"
	"github.com/gogpu/rast/internal/swizzle"
)

// MaxDimension is the exclusive upper bound on framebuffer width and
// height. It follows from the range of the 2D cross product between
// two Q16.8 window coordinates: anything wider would overflow the
// edge equations.
const MaxDimension = 16384

// cmdBufferSize is the per-tile command ring capacity in dwords.
// When a tile's ring fills up, the setup stage drains it in place.
const cmdBufferSize = 128

// tileCmdBuf is one tile's command ring. read and write are dword
// indices into buf; len(buf) is past-the-end. write is never allowed
// to catch up to read from behind, so a full ring keeps one dword of
// separation and Empty (read == write) stays unambiguous.
type tileCmdBuf struct {
	buf   []uint32
	read  int
	write int
}

// Framebuffer owns the color and depth planes, the per-tile command
// rings, and the perf counters. Color pixels are packed BGRA dwords;
// depth is a 32-bit value in the same scale as post-divide vertex Z.
//
// Storage is tile-major: tiles are stored row major, padded up to
// whole tiles, and pixels inside a tile are morton swizzled (see the
// swizzle package). A Framebuffer is not safe for concurrent use.
type Framebuffer struct {
	color []uint32
	depth []uint32

	width  int
	height int

	widthInTiles  int
	heightInTiles int
	tileCount     int

	// pixelsPerRowOfTiles is padded width times the tile height.
	pixelsPerRowOfTiles int
	// pixelsPerSlice is the full padded plane size in pixels.
	pixelsPerSlice int

	cmdPool []uint32
	tiles   []tileCmdBuf

	perf     PerfCounters
	tilePerf []TilePerfCounters
}

// NewFramebuffer creates a framebuffer with the given dimensions.
// Width and height must be positive and below MaxDimension; the
// backing planes are padded up to whole 128-pixel tiles so the
// rasterizer never bounds-checks inside a tile.
//
// The color plane starts cleared to zero and the depth plane to the
// far value 0xFFFFFFFF.
func NewFramebuffer(width, height int) *Framebuffer {
	if width <= 0 || height <= 0 || width >= MaxDimension || height >= MaxDimension {
		panic(fmt.Sprintf("rast: framebuffer dimensions %dx%d out of range", width, height))
	}

	paddedW := (width + swizzle.TileWidth - 1) &^ (swizzle.TileWidth - 1)
	paddedH := (height + swizzle.TileWidth - 1) &^ (swizzle.TileWidth - 1)

	fb := &Framebuffer{
		width:         width,
		height:        height,
		widthInTiles:  paddedW / swizzle.TileWidth,
		heightInTiles: paddedH / swizzle.TileWidth,
	}
	fb.tileCount = fb.widthInTiles * fb.heightInTiles
	fb.pixelsPerRowOfTiles = paddedW * swizzle.TileWidth
	fb.pixelsPerSlice = paddedH / swizzle.TileWidth * fb.pixelsPerRowOfTiles

	fb.color = make([]uint32, fb.pixelsPerSlice)
	fb.depth = make([]uint32, fb.pixelsPerSlice)
	for i := range fb.depth {
		fb.depth[i] = 0xFFFFFFFF
	}

	fb.cmdPool = make([]uint32, fb.tileCount*cmdBufferSize)
	fb.tiles = make([]tileCmdBuf, fb.tileCount)
	for i := range fb.tiles {
		fb.tiles[i].buf = fb.cmdPool[i*cmdBufferSize : (i+1)*cmdBufferSize : (i+1)*cmdBufferSize]
	}

	fb.tilePerf = make([]TilePerfCounters, fb.tileCount)

	logger().Info("rast: framebuffer created",
		"width", width, "height", height,
		"tiles", fb.tileCount)
	return fb
}

// Width returns the framebuffer width in pixels.
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the framebuffer height in pixels.
func (fb *Framebuffer) Height() int { return fb.height }

// TileCount returns the number of 128x128 tiles backing the
// framebuffer, for sizing TilePerfCounters readback.
func (fb *Framebuffer) TileCount() int { return fb.tileCount }

// Clear enqueues a clear command on every tile: color is filled with
// the given packed BGRA value, depth resets to the far plane. Like
// draws, the clear takes effect on Resolve (or earlier for tiles whose
// ring overflows).
func (fb *Framebuffer) Clear(color uint32) {
	var cmd [clearCmdSize]uint32
	cmd[0] = cmdClearTile
	cmd[1] = color
	for tileID := 0; tileID < fb.tileCount; tileID++ {
		fb.pushCmd(tileID, cmd[:])
	}
}

// Resolve drains every tile's command ring in row-major tile order,
// rasterizing all pending commands into the color and depth planes.
func (fb *Framebuffer) Resolve() {
	for tileID := 0; tileID < fb.tileCount; tileID++ {
		fb.resolveTile(tileID)
	}
}

// Draw submits non-indexed triangles. vertices holds tightly packed
// Q16.16 clip-space components (x, y, z, w per vertex), three vertices
// per triangle. The vertex count must be a multiple of three.
func (fb *Framebuffer) Draw(vertices []fixed.S1516) {
	if len(vertices)%(4*3) != 0 {
		panic("rast: Draw vertex count must be a multiple of three")
	}
	for base := 0; base < len(vertices); base += 12 {
		var verts [3]clipVert
		for v := 0; v < 3; v++ {
			verts[v] = clipVert{
				x: vertices[base+v*4+0],
				y: vertices[base+v*4+1],
				z: vertices[base+v*4+2],
				w: vertices[base+v*4+3],
			}
		}
		fb.rasterizeTriangle(verts)
	}
}

// DrawIndexed submits indexed triangles. vertices holds tightly packed
// Q16.16 clip-space components (x, y, z, w per vertex); indices are
// consumed in groups of three.
func (fb *Framebuffer) DrawIndexed(vertices []fixed.S1516, indices []uint32) {
	if len(indices)%3 != 0 {
		panic("rast: DrawIndexed index count must be a multiple of three")
	}
	for base := 0; base < len(indices); base += 3 {
		var verts [3]clipVert
		for v := 0; v < 3; v++ {
			c := indices[base+v] * 4
			verts[v] = clipVert{
				x: vertices[c+0],
				y: vertices[c+1],
				z: vertices[c+2],
				w: vertices[c+3],
			}
		}
		fb.rasterizeTriangle(verts)
	}
}

// PackRowMajor copies a rectangle of the given attachment into dst as
// a tightly packed row-major image in the requested pixel format.
// The rectangle must lie inside the framebuffer's logical (unpadded)
// bounds and dst must hold at least width*height packed pixels.
//
// Color supports PixelFormatRGBA8Unorm and PixelFormatBGRA8Unorm;
// depth supports PixelFormatR32Unorm (raw words, little endian).
func (fb *Framebuffer) PackRowMajor(att Attachment, x, y, width, height int, format PixelFormat, dst []byte) {
	if x < 0 || y < 0 || width < 0 || height < 0 ||
		x+width > fb.width || y+height > fb.height {
		panic(fmt.Sprintf("rast: pack rectangle %d,%d %dx%d out of bounds", x, y, width, height))
	}
	if len(dst) < width*height*format.BytesPerPixel() {
		panic("rast: pack destination too small")
	}
	switch {
	case att == AttachmentColor && (format == PixelFormatRGBA8Unorm || format == PixelFormatBGRA8Unorm):
	case att == AttachmentDepth && format == PixelFormatR32Unorm:
	default:
		panic(fmt.Sprintf("rast: unsupported pack of %v as %v", att, format))
	}

	firstTileX := x / swizzle.TileWidth
	firstTileY := y / swizzle.TileWidth
	lastTileX := (x + width - 1) / swizzle.TileWidth
	lastTileY := (y + height - 1) / swizzle.TileWidth

	tileRowStart := firstTileY*fb.pixelsPerRowOfTiles + firstTileX*swizzle.PixelsPerTile
	for tileY := firstTileY; tileY <= lastTileY; tileY++ {
		tileStart := tileRowStart

		for tileX := firstTileX; tileX <= lastTileX; tileX++ {
			topY := tileY * swizzle.TileWidth
			topX := tileX * swizzle.TileWidth
			minY := max(topY, y)
			minX := max(topX, x)
			maxY := min(topY+swizzle.TileWidth, y+height)
			maxX := min(topX+swizzle.TileWidth, x+width)

			yBits := swizzle.Pdep(uint32(minY), swizzle.YMask)
			for py := minY; py < maxY; py++ {
				xBits := swizzle.Pdep(uint32(minX), swizzle.XMask)
				for px := minX; px < maxX; px++ {
					dstIdx := (py-y)*width + (px - x)
					srcIdx := tileStart + int(yBits|xBits)

					switch att {
					case AttachmentColor:
						src := fb.color[srcIdx]
						d := dst[dstIdx*4 : dstIdx*4+4]
						if format == PixelFormatRGBA8Unorm {
							d[0] = byte(src >> 16)
							d[1] = byte(src >> 8)
							d[2] = byte(src)
							d[3] = byte(src >> 24)
						} else {
							d[0] = byte(src)
							d[1] = byte(src >> 8)
							d[2] = byte(src >> 16)
							d[3] = byte(src >> 24)
						}
					case AttachmentDepth:
						binary.LittleEndian.PutUint32(dst[dstIdx*4:], fb.depth[srcIdx])
					}

					xBits = swizzle.Advance(xBits, swizzle.XMask)
				}
				yBits = swizzle.Advance(yBits, swizzle.YMask)
			}

			tileStart += swizzle.PixelsPerTile
		}

		tileRowStart += fb.pixelsPerRowOfTiles
	}
}

// PackDepth copies a rectangle of the depth plane into dst as raw
// 32-bit words, one per pixel, row major.
func (fb *Framebuffer) PackDepth(x, y, width, height int, dst []uint32) {
	if len(dst) < width*height {
		panic("rast: pack destination too small")
	}
	buf := make([]byte, width*height*4)
	fb.PackRowMajor(AttachmentDepth, x, y, width, height, PixelFormatR32Unorm, buf)
	for i := range dst[:width*height] {
		dst[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
}
