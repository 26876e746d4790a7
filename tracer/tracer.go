package tracer

import (
	"time"

	"github.com/achilleasa/whitted/integrator"
)

type ChangeType uint8

const (
	// Payload: *scene.Scene
	SetScene ChangeType = iota
	// Payload: *scene.Camera
	SetCamera
	// Payload: FrameOptions
	SetOptions
)

func (ct ChangeType) String() string {
	switch ct {
	case SetScene:
		return "SetScene"
	case SetCamera:
		return "SetCamera"
	case SetOptions:
		return "SetOptions"
	}
	return "Unknown"
}

// Per-frame tracing options shared by all tracers.
type FrameOptions struct {
	Integrator integrator.Options

	// Cast 4 rays per image plane cell and average them.
	Antialias bool
}

// A unit of work that is processed by a tracer.
type BlockRequest struct {
	// Block start row and height. Row 0 is the top row of the frame.
	BlockY uint32
	BlockH uint32

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error

	// Tracers stop processing the block between rows once this channel
	// is closed.
	Cancel <-chan struct{}
}

// Tracer statistics.
type Stats struct {
	// The rendered block height
	BlockH uint32

	// The time for rendering the last block.
	RenderTime time.Duration

	// The time spent applying pending changes before the last block.
	UpdateTime time.Duration

	// Ray statistics for the last block.
	Rays integrator.Stats
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Shutdown and cleanup tracer.
	Close()

	// Get the tracer's computation speed estimate compared to a
	// baseline (single cpu core) implementation.
	SpeedEstimate() float32

	// Setup the tracer. Tracers write their blocks into the shared RGBA
	// frame buffer.
	Setup(frameW, frameH uint32, frameBuffer []uint8) error

	// Enqueue block request.
	Enqueue(BlockRequest)

	// Append a change to the tracer's update buffer.
	AppendChange(ChangeType, interface{})

	// Apply all pending changes from the update buffer.
	ApplyPendingChanges() error

	// Retrieve last frame statistics.
	Stats() *Stats
}
