package renderer

import (
	"context"
	"image"
)

type Renderer interface {
	// Render a frame. The returned image is owned by the caller.
	Render(ctx context.Context) (*image.RGBA, error)

	// Shutdown renderer and any attached tracer.
	Close()

	// Get render statistics for the last frame.
	Stats() FrameStats
}
