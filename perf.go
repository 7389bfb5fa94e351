package rast

import "time"

// Performance counters accumulate elapsed ticks per pipeline phase.
// A tick is one nanosecond of monotonic time; PerfCounterFrequency
// returns the ticks-per-second divisor so readers stay unit-agnostic.

// timeBase anchors the monotonic clock for tick readings.
var timeBase = time.Now()

// ticks returns the current monotonic tick count.
func ticks() uint64 {
	return uint64(time.Since(timeBase))
}

// PerfCounters holds the whole-framebuffer phase timers.
type PerfCounters struct {
	Clipping      uint64
	CommonSetup   uint64
	SmallTriSetup uint64
	LargeTriSetup uint64
}

// TilePerfCounters holds the per-tile phase timers.
type TilePerfCounters struct {
	SmallTriTileRaster   uint64
	SmallTriCoarseRaster uint64
	LargeTriTileRaster   uint64
	LargeTriCoarseRaster uint64
	CmdbufPushCmd        uint64
	CmdbufResolve        uint64
	Clear                uint64
}

// PerfCounterNames returns the framebuffer counter names, in the same
// order PerfCounters fields are laid out. The names are stable across
// versions.
func PerfCounterNames() []string {
	return []string{"clipping", "common_setup", "smalltri_setup", "largetri_setup"}
}

// TilePerfCounterNames returns the per-tile counter names, in the same
// order TilePerfCounters fields are laid out. The names are stable
// across versions.
func TilePerfCounterNames() []string {
	return []string{
		"smalltri_tile_raster", "smalltri_coarse_raster",
		"largetri_tile_raster", "largetri_coarse_raster",
		"cmdbuf_pushcmd", "cmdbuf_resolve", "clear",
	}
}

// PerfCounterFrequency returns the number of ticks per second.
func PerfCounterFrequency() uint64 {
	return uint64(time.Second)
}

// PerfCounters returns a snapshot of the framebuffer phase timers.
func (fb *Framebuffer) PerfCounters() PerfCounters {
	return fb.perf
}

// TilePerfCounters copies the per-tile timers for all tiles, in
// row-major tile order, into dst and returns it. A nil dst allocates.
func (fb *Framebuffer) TilePerfCounters(dst []TilePerfCounters) []TilePerfCounters {
	if dst == nil {
		dst = make([]TilePerfCounters, fb.tileCount)
	}
	copy(dst, fb.tilePerf)
	return dst
}

// ResetPerfCounters zeroes the framebuffer and per-tile timers.
func (fb *Framebuffer) ResetPerfCounters() {
	fb.perf = PerfCounters{}
	for i := range fb.tilePerf {
		fb.tilePerf[i] = TilePerfCounters{}
	}
}
