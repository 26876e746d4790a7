package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/asset/texture"
	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/scene/reader"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Flags shared by commands that load a scene.
var SceneFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "floor-texture",
		Value: "Butterfly.bmp",
		Usage: "floor texture for the built-in scene",
	},
	cli.StringFlag{
		Name:  "earth-texture",
		Value: "Earth.bmp",
		Usage: "sphere texture for the built-in scene",
	},
	cli.UintFlag{
		Name:  "texture-max-size",
		Value: 0,
		Usage: "downscale textures larger than this size (0 keeps the original size)",
	},
	cli.BoolFlag{
		Name:  "bilinear",
		Usage: "use bilinear texture filtering",
	},
}

// Display scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	sc, err := loadScene(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"#", "Type", "Geometry", "Color", "Material", "Patterns"})
	for index, obj := range sc.Objects {
		mat := obj.Material()
		table.Append([]string{
			fmt.Sprintf("%d", index),
			obj.Type().String(),
			describeGeometry(obj),
			fmt.Sprintf("(%.2f, %.2f, %.2f)", mat.Color[0], mat.Color[1], mat.Color[2]),
			describeMaterial(mat),
			describePatterns(mat),
		})
	}
	table.SetFooter([]string{"", "", "", "", "TOTAL", fmt.Sprintf("%d", len(sc.Objects))})
	table.Render()

	logger.Noticef("light (%.1f, %.1f, %.1f), background (%.2f, %.2f, %.2f), camera %s",
		sc.Light[0], sc.Light[1], sc.Light[2],
		sc.Background[0], sc.Background[1], sc.Background[2],
		scene.DefaultCamera(),
	)
	logger.Noticef("scene information\n%s", buf.String())
	return nil
}

// Load the scene file passed as the first argument or the built-in scene if
// no argument is given.
func loadScene(ctx *cli.Context) (*scene.Scene, error) {
	texOpts := textureOptions(ctx)
	if ctx.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one scene file argument; got %d", ctx.NArg())
	}
	if ctx.NArg() == 1 {
		return reader.Read(ctx.Args().First(), reader.Options{Texture: texOpts})
	}

	var err error
	var textures scene.DefaultTextures
	if textures.Floor, err = loadTexture(ctx.String("floor-texture"), texOpts); err != nil {
		return nil, err
	}
	if textures.Earth, err = loadTexture(ctx.String("earth-texture"), texOpts); err != nil {
		return nil, err
	}

	logger.Infof("using built-in scene")
	return scene.Default(textures), nil
}

func textureOptions(ctx *cli.Context) texture.Options {
	opts := texture.Options{
		MaxSize: ctx.Uint("texture-max-size"),
		Filter:  texture.Nearest,
	}
	if ctx.Bool("bilinear") {
		opts.Filter = texture.Bilinear
	}
	return opts
}

// Load a texture for the built-in scene. Missing textures yield a nil
// sampler so the scene falls back to its untextured look.
func loadTexture(path string, opts texture.Options) (scene.Sampler, error) {
	if path == "" {
		return nil, nil
	}

	res, err := asset.NewResource(path, nil)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warningf("texture %s not found; rendering without it", path)
			return nil, nil
		}
		return nil, err
	}
	defer res.Close()

	tex, err := texture.New(res, opts)
	if err != nil {
		return nil, err
	}
	return tex, nil
}

func describeGeometry(obj scene.Object) string {
	switch o := obj.(type) {
	case *scene.Sphere:
		return fmt.Sprintf("center (%.1f, %.1f, %.1f), radius %.1f", o.Center[0], o.Center[1], o.Center[2], o.Radius)
	case *scene.Plane:
		if !o.Bounded {
			n := o.NormalAt(o.Vertices[0])
			return fmt.Sprintf("infinite, point (%.1f, %.1f, %.1f), normal (%.2f, %.2f, %.2f)",
				o.Vertices[0][0], o.Vertices[0][1], o.Vertices[0][2], n[0], n[1], n[2])
		}
		return fmt.Sprintf("%d vertices", len(o.Vertices))
	}
	return "-"
}

func describeMaterial(mat *scene.Material) string {
	flags := make([]string, 0, 4)
	if mat.Specular {
		flags = append(flags, fmt.Sprintf("specular(%.0f)", mat.Shininess))
	}
	if mat.Reflective {
		flags = append(flags, fmt.Sprintf("reflective(%.2f)", mat.ReflectionCoeff))
	}
	if mat.Transparent {
		flags = append(flags, fmt.Sprintf("transparent(%.2f)", mat.TransparencyCoeff))
	}
	if mat.Refractive {
		flags = append(flags, fmt.Sprintf("refractive(%.2f, n=%.2f)", mat.RefractionCoeff, mat.RefractiveIndex))
	}
	if len(flags) == 0 {
		return "diffuse"
	}
	return strings.Join(flags, " ")
}

func describePatterns(mat *scene.Material) string {
	if len(mat.Patterns) == 0 {
		return "-"
	}

	names := make([]string, 0, len(mat.Patterns))
	for _, p := range mat.Patterns {
		var name string
		switch p.(type) {
		case *scene.Checker:
			name = "checker"
		case *scene.PlanarTexture:
			name = "planar"
		case *scene.SphericalTexture:
			name = "spherical"
		default:
			name = fmt.Sprintf("%T", p)
		}
		names = append(names, fmt.Sprintf("%s/%s", name, p.Stage()))
	}
	return strings.Join(names, ", ")
}
