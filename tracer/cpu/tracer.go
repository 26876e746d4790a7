package cpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/achilleasa/whitted/integrator"
	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/tracer"
	"github.com/achilleasa/whitted/types"
)

var (
	ErrNotSetup         = errors.New("cpu tracer: tracer has not been set up")
	ErrBusy             = errors.New("cpu tracer: a block request is already pending")
	ErrSceneNotDefined  = errors.New("cpu tracer: no scene defined")
	ErrCameraNotDefined = errors.New("cpu tracer: no camera defined")
	ErrInterrupted      = errors.New("cpu tracer: interrupted while rendering block")
)

type cpuTracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The tracer id.
	id string

	// Frame dimensions and the shared output buffer.
	frameW, frameH uint32
	frameBuffer    []uint8

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[tracer.ChangeType]interface{}

	// Applied state.
	scene      *scene.Scene
	camera     *scene.Camera
	opts       tracer.FrameOptions
	integrator *integrator.Whitted

	// A channel for receiving block requests from the renderer.
	blockReqChan chan tracer.BlockRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered block.
	stats *tracer.Stats
}

// Create a new cpu tracer. Each tracer renders its blocks on a single
// goroutine.
func NewTracer(id string) tracer.Tracer {
	return &cpuTracer{
		logger:       log.New(fmt.Sprintf("cpu tracer (%s)", id)),
		id:           id,
		updateBuffer: make(map[tracer.ChangeType]interface{}),
		opts:         tracer.FrameOptions{Integrator: integrator.DefaultOptions(), Antialias: true},
		stats:        &tracer.Stats{},
	}
}

// Get tracer id.
func (tr *cpuTracer) Id() string {
	return tr.id
}

// All cpu tracers run at the baseline speed.
func (tr *cpuTracer) SpeedEstimate() float32 {
	return 1.0
}

// Attach the output buffers and start the worker.
func (tr *cpuTracer) Setup(frameW, frameH uint32, frameBuffer []uint8) error {
	tr.Lock()
	defer tr.Unlock()

	numPixels := int(frameW) * int(frameH)
	if numPixels == 0 {
		return fmt.Errorf("cpu tracer: invalid frame dimensions %dx%d", frameW, frameH)
	}
	if len(frameBuffer) != 4*numPixels {
		return fmt.Errorf("cpu tracer: frame buffer must hold %d bytes; got %d", 4*numPixels, len(frameBuffer))
	}

	tr.frameW, tr.frameH = frameW, frameH
	tr.frameBuffer = frameBuffer

	// Start worker
	if tr.closeChan == nil {
		tr.startWorker()
	}

	return nil
}

// Shutdown and cleanup tracer.
func (tr *cpuTracer) Close() {
	tr.Lock()
	if tr.closeChan == nil {
		tr.Unlock()
		return
	}
	close(tr.closeChan)
	tr.closeChan = nil
	tr.Unlock()

	tr.wg.Wait()
	tr.logger.Debugf("worker stopped")
}

// Enqueue block request.
func (tr *cpuTracer) Enqueue(blockReq tracer.BlockRequest) {
	tr.Lock()
	started := tr.closeChan != nil
	tr.Unlock()

	if !started {
		blockReq.ErrChan <- ErrNotSetup
		return
	}

	select {
	case tr.blockReqChan <- blockReq:
	default:
		tr.logger.Errorf("dropping block request for rows [%d, %d)", blockReq.BlockY, blockReq.BlockY+blockReq.BlockH)
		blockReq.ErrChan <- ErrBusy
	}
}

// Append a change to the tracer's update buffer.
func (tr *cpuTracer) AppendChange(changeType tracer.ChangeType, data interface{}) {
	tr.Lock()
	defer tr.Unlock()
	tr.updateBuffer[changeType] = data
}

// Apply all pending changes from the update buffer.
func (tr *cpuTracer) ApplyPendingChanges() error {
	tr.Lock()
	defer tr.Unlock()

	if len(tr.updateBuffer) == 0 {
		return nil
	}

	for changeType, data := range tr.updateBuffer {
		switch changeType {
		case tracer.SetScene:
			sc, ok := data.(*scene.Scene)
			if !ok || sc == nil {
				return ErrSceneNotDefined
			}
			tr.scene = sc
		case tracer.SetCamera:
			camera, ok := data.(*scene.Camera)
			if !ok || camera == nil {
				return ErrCameraNotDefined
			}
			tr.camera = camera
		case tracer.SetOptions:
			opts, ok := data.(tracer.FrameOptions)
			if !ok {
				return fmt.Errorf("cpu tracer: unsupported payload %T for %s", data, changeType)
			}
			tr.opts = opts
		default:
			return fmt.Errorf("cpu tracer: unsupported change type %d", changeType)
		}
	}

	tr.updateBuffer = make(map[tracer.ChangeType]interface{})

	// Scene or option changes invalidate the integrator.
	if tr.scene != nil {
		tr.integrator = integrator.New(tr.scene, tr.opts.Integrator)
	}
	return nil
}

// Retrieve last frame statistics.
func (tr *cpuTracer) Stats() *tracer.Stats {
	return tr.stats
}

// Spawn a go-routine to process block render requests. This method is meant
// to be called while holding tr.Lock()
func (tr *cpuTracer) startWorker() {
	tr.blockReqChan = make(chan tracer.BlockRequest, 1)
	tr.closeChan = make(chan struct{})
	closeChan := tr.closeChan

	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		for {
			select {
			case blockReq := <-tr.blockReqChan:
				startTime := time.Now()
				if err := tr.ApplyPendingChanges(); err != nil {
					blockReq.ErrChan <- err
					continue
				}
				tr.stats.UpdateTime = time.Since(startTime)

				// Render block and reply with our completion status
				startTime = time.Now()
				if err := tr.renderBlock(&blockReq); err != nil {
					blockReq.ErrChan <- err
					continue
				}

				// Update stats
				tr.stats.BlockH = blockReq.BlockH
				tr.stats.RenderTime = time.Since(startTime)
				tr.stats.Rays = tr.integrator.Stats()

				blockReq.DoneChan <- blockReq.BlockH
			case <-closeChan:
				return
			}
		}
	}()
}

// Trace the rows of a block. Row y of the frame maps to image plane row
// frameH-1-y so that row 0 is the top of the image.
func (tr *cpuTracer) renderBlock(blockReq *tracer.BlockRequest) error {
	if tr.scene == nil || tr.integrator == nil {
		return ErrSceneNotDefined
	}
	if tr.camera == nil {
		return ErrCameraNotDefined
	}
	if blockReq.BlockY+blockReq.BlockH > tr.frameH {
		return fmt.Errorf("cpu tracer: block rows [%d, %d) exceed frame height %d", blockReq.BlockY, blockReq.BlockY+blockReq.BlockH, tr.frameH)
	}

	tr.integrator.ResetStats()

	var dirs [4]types.Vec3
	for y := blockReq.BlockY; y < blockReq.BlockY+blockReq.BlockH; y++ {
		select {
		case <-blockReq.Cancel:
			return ErrInterrupted
		default:
		}

		j := tr.frameH - 1 - y
		for i := uint32(0); i < tr.frameW; i++ {
			numSamples := tr.camera.CellDirections(i, j, tr.frameW, tr.frameH, tr.opts.Antialias, &dirs)

			var color types.Vec3
			for sample := 0; sample < numSamples; sample++ {
				ray := scene.NewRay(tr.camera.Eye, dirs[sample])
				color = color.Add(tr.integrator.Trace(ray, 1))
			}
			color = color.Mul(1.0 / float32(numSamples)).Clamp(0, 1)

			pixel := int(y*tr.frameW + i)
			tr.frameBuffer[4*pixel] = quantize(color[0])
			tr.frameBuffer[4*pixel+1] = quantize(color[1])
			tr.frameBuffer[4*pixel+2] = quantize(color[2])
			tr.frameBuffer[4*pixel+3] = 255
		}
	}

	return nil
}

// Convert a [0, 1] color channel to 8 bits.
func quantize(c float32) uint8 {
	return uint8(c*255 + 0.5)
}
