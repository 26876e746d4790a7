package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/whitted/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "whitted"
	app.Usage = "render scenes using recursive ray tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame",
					Description: `
Render a single frame of a scene file or, when no scene file is given, of the
built-in scene. The frame is written to a local image file whose format is
selected by its extension (png, jpg, bmp, tif, gif) or uploaded to an s3://
target.`,
					ArgsUsage: "[scene.scn]",
					Flags:     cmd.RenderFlags,
					Action:    cmd.RenderFrame,
				},
			},
		},
		{
			Name:  "scene",
			Usage: "inspect scenes",
			Subcommands: []cli.Command{
				{
					Name:      "info",
					Usage:     "display the objects of a scene file or the built-in scene",
					ArgsUsage: "[scene.scn]",
					Flags:     cmd.SceneFlags,
					Action:    cmd.ShowSceneInfo,
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
