package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/tracer"
	"github.com/achilleasa/whitted/tracer/cpu"
)

// A renderer that splits each frame into row blocks and traces them in
// parallel on a pool of cpu tracers.
type defaultRenderer struct {
	logger log.Logger

	options   Options
	scheduler tracer.BlockScheduler
	tracers   []tracer.Tracer

	// Shared output frame. Tracers write disjoint row ranges.
	frame *image.RGBA

	// Block heights used for the last frame.
	blockAssignments []uint32

	stats FrameStats
}

// Create a new renderer for the given scene and camera.
func NewDefault(sc *scene.Scene, camera *scene.Camera, scheduler tracer.BlockScheduler, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if camera == nil {
		return nil, ErrCameraNotDefined
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameSize
	}
	if opts.NumTracers <= 0 {
		return nil, ErrNoTracers
	}
	if scheduler == nil {
		scheduler = tracer.PerfectScheduler()
	}

	r := &defaultRenderer{
		logger:    log.New("renderer"),
		options:   opts,
		scheduler: scheduler,
		tracers:   make([]tracer.Tracer, 0, opts.NumTracers),
		frame:     image.NewRGBA(image.Rect(0, 0, int(opts.FrameW), int(opts.FrameH))),
	}

	frameOpts := tracer.FrameOptions{
		Integrator: opts.integratorOptions(),
		Antialias:  opts.Antialias,
	}
	for index := 0; index < opts.NumTracers; index++ {
		tr := cpu.NewTracer(fmt.Sprintf("cpu-%d", index))
		if err := tr.Setup(opts.FrameW, opts.FrameH, r.frame.Pix); err != nil {
			tr.Close()
			r.Close()
			return nil, err
		}
		tr.AppendChange(tracer.SetScene, sc)
		tr.AppendChange(tracer.SetCamera, camera)
		tr.AppendChange(tracer.SetOptions, frameOpts)
		r.tracers = append(r.tracers, tr)
	}

	r.logger.Infof("attached %d cpu tracers; frame %dx%d, max steps %d, antialias %t, fog %t", len(r.tracers), opts.FrameW, opts.FrameH, opts.MaxSteps, opts.Antialias, opts.Fog)
	return r, nil
}

// Shutdown renderer and any attached tracer.
func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

// Get render statistics for the last frame.
func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

// Render a frame.
func (r *defaultRenderer) Render(ctx context.Context) (*image.RGBA, error) {
	if len(r.tracers) == 0 {
		return nil, ErrNoTracers
	}
	if ctx.Err() != nil {
		return nil, ErrInterrupted
	}

	start := time.Now()
	if err := r.renderFrame(ctx); err != nil {
		return nil, err
	}
	r.stats.RenderTime = time.Since(start)
	r.logger.Infof("rendered %dx%d frame in %d ms", r.options.FrameW, r.options.FrameH, r.stats.RenderTime.Nanoseconds()/1000000)

	out := image.NewRGBA(r.frame.Rect)
	copy(out.Pix, r.frame.Pix)
	return out, nil
}

// Schedule blocks, dispatch them to the tracers and wait for all tracers to
// reply. On cancellation or failure the remaining tracers are asked to stop
// and their replies are drained before returning.
func (r *defaultRenderer) renderFrame(ctx context.Context) error {
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	numTracers := len(r.tracers)
	doneChan := make(chan uint32, numTracers)
	errChan := make(chan error, numTracers)
	cancelChan := make(chan struct{})

	var blockY uint32
	pending := 0
	for index, tr := range r.tracers {
		blockH := r.blockAssignments[index]
		if blockH == 0 {
			continue
		}
		tr.Enqueue(tracer.BlockRequest{
			BlockY:   blockY,
			BlockH:   blockH,
			DoneChan: doneChan,
			ErrChan:  errChan,
			Cancel:   cancelChan,
		})
		blockY += blockH
		pending++
	}

	var renderErr error
	cancel := func(err error) {
		if renderErr == nil {
			renderErr = err
			close(cancelChan)
		}
	}

	ctxDone := ctx.Done()
	for pending > 0 {
		select {
		case <-doneChan:
			pending--
		case err := <-errChan:
			pending--
			if err == cpu.ErrInterrupted {
				err = ErrInterrupted
			}
			cancel(err)
		case <-ctxDone:
			// Stop listening for ctx and keep draining tracer replies.
			ctxDone = nil
			cancel(ErrInterrupted)
		}
	}

	if renderErr != nil {
		if renderErr != ErrInterrupted {
			r.logger.Errorf("frame render failed: %s", renderErr)
		}
		return renderErr
	}

	r.collectStats()
	return nil
}

// Collect tracer statistics for the last frame.
func (r *defaultRenderer) collectStats() {
	r.stats = FrameStats{
		Tracers: make([]TracerStat, 0, len(r.tracers)),
	}

	for index, tr := range r.tracers {
		blockH := r.blockAssignments[index]
		stat := TracerStat{
			Id:           tr.Id(),
			IsPrimary:    index == 0,
			BlockH:       blockH,
			FramePercent: 100.0 * float32(blockH) / float32(r.options.FrameH),
		}
		if blockH != 0 {
			trStats := tr.Stats()
			stat.RenderTime = trStats.RenderTime
			stat.Rays = trStats.Rays
			addRays(&r.stats.Rays, trStats.Rays)
		}
		r.stats.Tracers = append(r.stats.Tracers, stat)
	}
}
