package renderer

import (
	"runtime"

	"github.com/achilleasa/whitted/integrator"
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Max recursion depth for secondary rays.
	MaxSteps uint32

	// Cast 4 rays per pixel instead of 1.
	Antialias bool

	// Depth fog between FogNear and FogFar along -Z.
	Fog     bool
	FogNear float32
	FogFar  float32

	// Number of cpu tracers. Defaults to the number of cpus.
	NumTracers int
}

// Get the default render options.
func DefaultOptions() Options {
	integratorOpts := integrator.DefaultOptions()
	return Options{
		FrameW:     512,
		FrameH:     512,
		MaxSteps:   integratorOpts.MaxSteps,
		Antialias:  true,
		FogNear:    integratorOpts.FogNear,
		FogFar:     integratorOpts.FogFar,
		NumTracers: runtime.NumCPU(),
	}
}

func (opts Options) integratorOptions() integrator.Options {
	return integrator.Options{
		MaxSteps: opts.MaxSteps,
		Fog:      opts.Fog,
		FogNear:  opts.FogNear,
		FogFar:   opts.FogFar,
	}
}
