package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/achilleasa/whitted/asset/writer"
	"github.com/achilleasa/whitted/integrator"
	"github.com/achilleasa/whitted/renderer"
	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/tracer"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Flags for the render frame command.
var RenderFlags = append([]cli.Flag{
	cli.IntFlag{
		Name:  "width",
		Value: 512,
		Usage: "frame width",
	},
	cli.IntFlag{
		Name:  "height",
		Value: 512,
		Usage: "frame height",
	},
	cli.IntFlag{
		Name:  "max-steps",
		Value: int(integrator.DefaultOptions().MaxSteps),
		Usage: "max recursion depth for reflected and refracted rays",
	},
	cli.BoolFlag{
		Name:  "no-aa",
		Usage: "cast a single ray per pixel",
	},
	cli.BoolFlag{
		Name:  "fog",
		Usage: "blend distant surfaces towards white",
	},
	cli.IntFlag{
		Name:  "tracers",
		Value: runtime.NumCPU(),
		Usage: "number of cpu tracers",
	},
	cli.StringFlag{
		Name:  "scheduler",
		Value: "perfect",
		Usage: "block scheduler (naive or perfect)",
	},
	cli.StringFlag{
		Name:  "env",
		Value: ".env",
		Usage: "file with WHITTED_S3_* settings for s3:// targets",
	},
	cli.StringFlag{
		Name:  "out, o",
		Value: "frame.png",
		Usage: "image file or s3://bucket/key for the rendered frame",
	},
}, SceneFlags...)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	if err := loadEnv(ctx.String("env")); err != nil {
		return err
	}

	scheduler, err := blockScheduler(ctx.String("scheduler"))
	if err != nil {
		return err
	}

	opts := renderer.DefaultOptions()
	opts.FrameW = uint32(ctx.Int("width"))
	opts.FrameH = uint32(ctx.Int("height"))
	opts.MaxSteps = uint32(ctx.Int("max-steps"))
	opts.Antialias = !ctx.Bool("no-aa")
	opts.Fog = ctx.Bool("fog")
	opts.NumTracers = ctx.Int("tracers")

	if ctx.Int("width") <= 0 || ctx.Int("height") <= 0 {
		return renderer.ErrInvalidFrameSize
	}
	if ctx.Int("max-steps") <= 0 {
		return fmt.Errorf("max-steps must be positive; got %d", ctx.Int("max-steps"))
	}

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	// Create renderer
	r, err := renderer.NewDefault(sc, scene.DefaultCamera(), scheduler, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	frame, err := r.Render(renderCtx)
	if err != nil {
		return err
	}

	// Display stats
	displayFrameStats(r.Stats())

	return writer.WriteFrame(renderCtx, frame, ctx.String("out"), writer.S3ConfigFromEnv())
}

// Load S3 settings from an env file. A missing file is not an error; values
// already present in the environment take precedence.
func loadEnv(envFile string) error {
	if envFile == "" {
		return nil
	}
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("could not load env file %s: %w", envFile, err)
	}
	logger.Infof("loaded environment from %s", envFile)
	return nil
}

func blockScheduler(name string) (tracer.BlockScheduler, error) {
	switch name {
	case "naive":
		return tracer.NaiveScheduler(), nil
	case "perfect":
		return tracer.PerfectScheduler(), nil
	}
	return nil, fmt.Errorf("unknown scheduler '%s'; expected naive or perfect", name)
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Primary", "Block height", "% of frame", "Render time", "Rays", "Shadow rays", "Secondary rays"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			stat.RenderTime.String(),
			fmt.Sprintf("%d", stat.Rays.TraceCalls),
			fmt.Sprintf("%d", stat.Rays.ShadowRays),
			fmt.Sprintf("%d", stat.Rays.SecondaryRays),
		})
	}
	table.SetFooter([]string{
		"", "", "", "TOTAL",
		stats.RenderTime.String(),
		fmt.Sprintf("%d", stats.Rays.TraceCalls),
		fmt.Sprintf("%d", stats.Rays.ShadowRays),
		fmt.Sprintf("%d", stats.Rays.SecondaryRays),
	})

	table.Render()
	logger.Noticef("frame statistics (max depth %d)\n%s", stats.Rays.MaxDepth, buf.String())
}
