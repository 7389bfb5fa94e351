package scene

import (
	"time"

	"github.com/gogpu/rast"
	"github.com/gogpu/rast/internal/fixed"
)

// timeBase anchors the renderer's monotonic tick readings.
var timeBase = time.Now()

func ticks() uint64 {
	return uint64(time.Since(timeBase))
}

// PerfCounters holds the renderer phase timers.
type PerfCounters struct {
	MVPTransform uint64
}

// PerfCounterNames returns the renderer counter names, stable across
// versions.
func PerfCounterNames() []string {
	return []string{"mvptransform"}
}

// Renderer owns a framebuffer and draws scenes into it.
type Renderer struct {
	fb   *rast.Framebuffer
	perf PerfCounters
}

// NewRenderer creates a renderer with a framebuffer of the given
// dimensions.
func NewRenderer(width, height int) *Renderer {
	return &Renderer{fb: rast.NewFramebuffer(width, height)}
}

// Framebuffer returns the renderer's framebuffer for readback or
// direct draws.
func (r *Renderer) Framebuffer() *rast.Framebuffer {
	return r.fb
}

// PerfCounters returns a snapshot of the renderer phase timers.
func (r *Renderer) PerfCounters() PerfCounters {
	return r.perf
}

// ResetPerfCounters zeroes the renderer phase timers.
func (r *Renderer) ResetPerfCounters() {
	r.perf = PerfCounters{}
}

// RenderScene renders one frame: clear the framebuffer, concatenate
// projection and view, transform every live instance's vertices with
// fixed-point FMAs, submit the triangles, and resolve all tiles.
//
// The scene is borrowed for the duration of the call only.
func (r *Renderer) RenderScene(sc *Scene) {
	r.fb.Clear(0)

	mvp := sc.projection.Mul(&sc.view)

	// Per-instance world transforms are reserved; every instance
	// currently renders at the origin.
	var tri [12]fixed.S1516
	sc.instances.All(func(_ InstanceID, inst *instance) {
		model := &sc.models[inst.model]

		for i := 0; i+2 < len(model.indices); i += 3 {
			start := ticks()
			for v := 0; v < 3; v++ {
				p := model.indices[i+v] * 3
				clip := mvp.TransformPoint(
					model.positions[p+0],
					model.positions[p+1],
					model.positions[p+2],
				)
				copy(tri[v*4:], clip[:])
			}
			r.perf.MVPTransform += ticks() - start

			r.fb.Draw(tri[:])
		}
	})

	r.fb.Resolve()
}
