// Command rastview demonstrates the rast software rasterizer.
//
// It spins a cube through a fixed-point model-view-projection
// transform, rasterizes it, and writes the final frame as a PNG with
// a perf-counter summary on stdout.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/rast"
	"github.com/gogpu/rast/internal/fixed"
	"github.com/gogpu/rast/render"
	"github.com/gogpu/rast/scene"
)

func main() {
	var (
		width  = flag.Int("width", 640, "framebuffer width")
		height = flag.Int("height", 480, "framebuffer height")
		frames = flag.Int("frames", 60, "number of frames to render")
		scale  = flag.Int("scale", 1, "integer upscale factor for the output image")
		output = flag.String("output", "rastview.png", "output file")
	)
	flag.Parse()

	sc := scene.New()
	modelID, err := sc.AddModel(cubeModel())
	if err != nil {
		log.Fatalf("Failed to add model: %v", err)
	}
	if _, err := sc.AddInstance(modelID); err != nil {
		log.Fatalf("Failed to add instance: %v", err)
	}

	sc.SetProjection(perspective(70, float32(*width)/float32(*height), 0.01, 10))

	rd := scene.NewRenderer(*width, *height)
	for frame := 0; frame < *frames; frame++ {
		angle := float32(frame) * 2 * math.Pi / float32(*frames)
		sc.SetView(turntableView(angle, 3))
		rd.RenderScene(sc)
	}

	target := render.NewPixmapTarget(*width, *height)
	render.CopyFramebuffer(rd.Framebuffer(), target)

	img := image.Image(target.Image())
	if *scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, *width**scale, *height**scale))
		xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		img = dst
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Fatalf("Failed to encode PNG: %v", err)
	}

	printPerf(rd, *frames)
	log.Printf("Saved %s (%dx%d, %d frames)", *output, *width, *height, *frames)
}

// cubeModel builds a unit cube with counter-clockwise winding, the
// source convention the scene loader rewinds at add time.
func cubeModel() scene.ModelData {
	f := func(v float32) fixed.S1516 { return fixed.FromFloat32(v) }

	corners := [8][3]float32{
		{-1, -1, -1}, {+1, -1, -1}, {+1, +1, -1}, {-1, +1, -1},
		{-1, -1, +1}, {+1, -1, +1}, {+1, +1, +1}, {-1, +1, +1},
	}
	positions := make([]fixed.S1516, 0, len(corners)*3)
	for _, c := range corners {
		positions = append(positions, f(c[0]), f(c[1]), f(c[2]))
	}

	quads := [6][4]uint32{
		{0, 3, 2, 1}, // back
		{4, 5, 6, 7}, // front
		{0, 1, 5, 4}, // bottom
		{3, 7, 6, 2}, // top
		{0, 4, 7, 3}, // left
		{1, 2, 6, 5}, // right
	}
	indices := make([]uint32, 0, len(quads)*6)
	for _, q := range quads {
		indices = append(indices, q[0], q[1], q[2], q[0], q[2], q[3])
	}

	return scene.ModelData{Positions: positions, Indices: indices}
}

// perspective builds a left-handed perspective projection in float
// math and converts the 16 elements to Q16.16, the same float-first
// path a host application takes for its camera.
func perspective(fovDeg, aspect, near, far float32) scene.Mat4 {
	h := float32(1 / math.Tan(float64(fovDeg)*math.Pi/180/2))
	w := h / aspect
	a := far / (far - near)
	b := -near * far / (far - near)

	var m scene.Mat4
	m[0] = fixed.FromFloat32(w)
	m[5] = fixed.FromFloat32(h)
	m[10] = fixed.FromFloat32(a)
	m[11] = fixed.One // clip.w = view.z
	m[14] = fixed.FromFloat32(b)
	return m
}

// turntableView rotates the world around Y and pushes it distance
// units down the view axis.
func turntableView(angle, distance float32) scene.Mat4 {
	sin := fixed.FromFloat32(float32(math.Sin(float64(angle))))
	cos := fixed.FromFloat32(float32(math.Cos(float64(angle))))

	var m scene.Mat4
	m[0] = cos
	m[8] = sin
	m[2] = -sin
	m[10] = cos
	m[5] = fixed.One
	m[14] = fixed.FromFloat32(distance)
	m[15] = fixed.One
	return m
}

// printPerf dumps the renderer and framebuffer counters, aggregated
// over all tiles, with locale-aware number formatting.
func printPerf(rd *scene.Renderer, frames int) {
	p := message.NewPrinter(language.English)
	fb := rd.Framebuffer()

	freq := rast.PerfCounterFrequency()
	ms := func(t uint64) float64 { return float64(t) / float64(freq) * 1000 }

	p.Printf("frames rendered: %d\n", frames)
	p.Printf("mvptransform: %d ticks (%.2f ms)\n",
		rd.PerfCounters().MVPTransform, ms(rd.PerfCounters().MVPTransform))

	fc := fb.PerfCounters()
	for i, v := range []uint64{fc.Clipping, fc.CommonSetup, fc.SmallTriSetup, fc.LargeTriSetup} {
		p.Printf("%s: %d ticks (%.2f ms)\n", rast.PerfCounterNames()[i], v, ms(v))
	}

	var sum rast.TilePerfCounters
	for _, tc := range fb.TilePerfCounters(nil) {
		sum.SmallTriTileRaster += tc.SmallTriTileRaster
		sum.SmallTriCoarseRaster += tc.SmallTriCoarseRaster
		sum.LargeTriTileRaster += tc.LargeTriTileRaster
		sum.LargeTriCoarseRaster += tc.LargeTriCoarseRaster
		sum.CmdbufPushCmd += tc.CmdbufPushCmd
		sum.CmdbufResolve += tc.CmdbufResolve
		sum.Clear += tc.Clear
	}
	tileVals := []uint64{
		sum.SmallTriTileRaster, sum.SmallTriCoarseRaster,
		sum.LargeTriTileRaster, sum.LargeTriCoarseRaster,
		sum.CmdbufPushCmd, sum.CmdbufResolve, sum.Clear,
	}
	for i, v := range tileVals {
		p.Printf("%s: %d ticks (%.2f ms)\n", rast.TilePerfCounterNames()[i], v, ms(v))
	}
}
