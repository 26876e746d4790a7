package renderer

import (
	"bytes"
	"context"
	"testing"

	"github.com/achilleasa/whitted/log"
	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/tracer"
)

func init() {
	log.Silence()
}

func TestNewDefaultValidation(t *testing.T) {
	sc := scene.Default(scene.DefaultTextures{})
	cam := scene.DefaultCamera()
	opts := testOptions(1)

	type spec struct {
		sc     *scene.Scene
		cam    *scene.Camera
		opts   Options
		expErr error
	}

	noFrame := opts
	noFrame.FrameH = 0
	noTracers := opts
	noTracers.NumTracers = 0

	specs := []spec{
		{nil, cam, opts, ErrSceneNotDefined},
		{sc, nil, opts, ErrCameraNotDefined},
		{sc, cam, noFrame, ErrInvalidFrameSize},
		{sc, cam, noTracers, ErrNoTracers},
	}

	for index, s := range specs {
		_, err := NewDefault(s.sc, s.cam, tracer.NaiveScheduler(), s.opts)
		if err != s.expErr {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}

func TestRenderIsIndependentOfTracerCount(t *testing.T) {
	sc := scene.Default(scene.DefaultTextures{})

	reference := renderFrame(t, sc, tracer.NaiveScheduler(), testOptions(1))

	type spec struct {
		numTracers int
		scheduler  tracer.BlockScheduler
	}
	specs := []spec{
		{2, tracer.NaiveScheduler()},
		{3, tracer.PerfectScheduler()},
		{7, tracer.PerfectScheduler()},
		// More tracers than rows
		{40, tracer.NaiveScheduler()},
	}

	for index, s := range specs {
		pix := renderFrame(t, sc, s.scheduler, testOptions(s.numTracers))
		if !bytes.Equal(pix, reference) {
			t.Fatalf("[spec %d] expected frame rendered with %d tracers to match the single tracer frame", index, s.numTracers)
		}
	}
}

func TestRenderStats(t *testing.T) {
	opts := testOptions(3)
	r, err := NewDefault(scene.Default(scene.DefaultTextures{}), scene.DefaultCamera(), tracer.PerfectScheduler(), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	// The perfect scheduler uses feedback from the previous frame.
	for frame := 0; frame < 3; frame++ {
		if _, err = r.Render(context.Background()); err != nil {
			t.Fatal(err)
		}

		stats := r.Stats()
		if len(stats.Tracers) != 3 {
			t.Fatalf("[frame %d] expected stats for 3 tracers; got %d", frame, len(stats.Tracers))
		}

		var totalRows uint32
		var totalPercent float32
		for _, trStat := range stats.Tracers {
			totalRows += trStat.BlockH
			totalPercent += trStat.FramePercent
		}
		if totalRows != opts.FrameH {
			t.Fatalf("[frame %d] expected block heights to add up to %d; got %d", frame, opts.FrameH, totalRows)
		}
		if totalPercent < 99.9 || totalPercent > 100.1 {
			t.Fatalf("[frame %d] expected frame percentages to add up to 100; got %f", frame, totalPercent)
		}
		if !stats.Tracers[0].IsPrimary || stats.Tracers[1].IsPrimary {
			t.Fatalf("[frame %d] expected only the first tracer to be primary", frame)
		}

		expPrimary := uint64(4 * opts.FrameW * opts.FrameH)
		if stats.Rays.PrimaryRays != expPrimary {
			t.Fatalf("[frame %d] expected %d primary rays; got %d", frame, expPrimary, stats.Rays.PrimaryRays)
		}
		if stats.Rays.MaxDepth > opts.MaxSteps {
			t.Fatalf("[frame %d] expected max depth <= %d; got %d", frame, opts.MaxSteps, stats.Rays.MaxDepth)
		}
	}
}

func TestRenderCancellation(t *testing.T) {
	r, err := NewDefault(scene.Default(scene.DefaultTextures{}), scene.DefaultCamera(), tracer.NaiveScheduler(), testOptions(2))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err = r.Render(ctx); err != ErrInterrupted {
		t.Fatalf("expected error %v; got %v", ErrInterrupted, err)
	}

	// The renderer remains usable after an interrupted frame.
	if _, err = r.Render(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestRenderAfterClose(t *testing.T) {
	r, err := NewDefault(scene.Default(scene.DefaultTextures{}), scene.DefaultCamera(), nil, testOptions(1))
	if err != nil {
		t.Fatal(err)
	}
	r.Close()

	if _, err = r.Render(context.Background()); err != ErrNoTracers {
		t.Fatalf("expected error %v; got %v", ErrNoTracers, err)
	}
}

func testOptions(numTracers int) Options {
	opts := DefaultOptions()
	opts.FrameW = 24
	opts.FrameH = 18
	opts.Fog = true
	opts.NumTracers = numTracers
	return opts
}

func renderFrame(t *testing.T, sc *scene.Scene, scheduler tracer.BlockScheduler, opts Options) []byte {
	r, err := NewDefault(sc, scene.DefaultCamera(), scheduler, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	img, err := r.Render(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if img.Bounds().Dx() != int(opts.FrameW) || img.Bounds().Dy() != int(opts.FrameH) {
		t.Fatalf("expected a %dx%d frame; got %v", opts.FrameW, opts.FrameH, img.Bounds())
	}
	return img.Pix
}
