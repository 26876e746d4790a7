package renderer

import (
	"time"

	"github.com/achilleasa/whitted/integrator"
)

type TracerStat struct {
	// The tracer id.
	Id string

	// True if this is the primary tracer
	IsPrimary bool

	// The block height and the percentage of total frame area it represents.
	BlockH       uint32
	FramePercent float32

	// Render time for assigned block
	RenderTime time.Duration

	// Rays traced for the assigned block.
	Rays integrator.Stats
}

type FrameStats struct {
	// Individual tracer stats.
	Tracers []TracerStat

	// Total render time for entire frame.
	RenderTime time.Duration

	// Rays traced by all tracers.
	Rays integrator.Stats
}

// Merge ray statistics from another tracer.
func addRays(total *integrator.Stats, rays integrator.Stats) {
	total.TraceCalls += rays.TraceCalls
	total.PrimaryRays += rays.PrimaryRays
	total.ShadowRays += rays.ShadowRays
	total.SecondaryRays += rays.SecondaryRays
	if rays.MaxDepth > total.MaxDepth {
		total.MaxDepth = rays.MaxDepth
	}
}
