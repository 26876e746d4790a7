package reader

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/achilleasa/whitted/asset"
	"github.com/achilleasa/whitted/asset/texture"
	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/types"
)

var (
	defaultLight         = types.XYZ(40, 30, -40)
	defaultMaterialColor = types.XYZ(0.7, 0.7, 0.7)
)

type sceneReader struct {
	opts Options

	// The parsed scene.
	scene *scene.Scene

	// Materials defined by material libraries.
	materials map[string]*scene.Material

	// The material selected by usemtl. Each object statement receives its
	// own copy so patterns never leak between objects.
	curMaterial *scene.Material

	// The material copy of the most recent object statement and the most
	// recent sphere (if the last statement defined one).
	lastMaterial *scene.Material
	lastSphere   *scene.Sphere

	// Loaded textures keyed by resource path.
	textures map[string]*texture.Texture

	// An error stack that provides additional error information when
	// scene files reference material libraries.
	errStack []string
}

func newSceneReader(opts Options) *sceneReader {
	return &sceneReader{
		opts:        opts,
		scene:       scene.NewScene(defaultLight),
		materials:   make(map[string]*scene.Material),
		curMaterial: scene.NewMaterial(defaultMaterialColor),
		textures:    make(map[string]*texture.Texture),
		errStack:    make([]string, 0),
	}
}

// Generate an error message that also includes any data in the error stack.
func (r *sceneReader) emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)

	var errMsg string
	if file != "" {
		errMsg = fmt.Sprintf("[%s: %d] error: %s\n%s", file, line, msg, strings.Join(r.errStack, "\n"))
	} else {
		errMsg = fmt.Sprintf("error: %s\n%s", msg, strings.Join(r.errStack, "\n"))
	}

	return errors.New(strings.Trim(errMsg, "\n"))
}

// Push a frame to the error stack.
func (r *sceneReader) pushFrame(msg string) {
	r.errStack = append([]string{msg}, r.errStack...)
}

// Pop a frame from the error stack.
func (r *sceneReader) popFrame() {
	r.errStack = r.errStack[1:]
}

// Tokenize lines, dropping comments and blank lines.
func scanLines(res *asset.Resource, fn func(lineNum int, lineTokens []string) error) error {
	lineNum := 0
	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if commentStart := strings.IndexByte(line, '#'); commentStart != -1 {
			line = line[:commentStart]
		}

		lineTokens := strings.Fields(line)
		if len(lineTokens) == 0 {
			continue
		}

		if err := fn(lineNum, lineTokens); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Parse a scene file.
func (r *sceneReader) parse(res *asset.Resource) error {
	return scanLines(res, func(lineNum int, lineTokens []string) error {
		var err error
		switch lineTokens[0] {
		case "light":
			r.scene.Light, err = parseVec3(lineTokens)
		case "background":
			r.scene.Background, err = parseVec3(lineTokens)
		case "mtllib":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'mtllib'; expected 1 argument; got %d", len(lineTokens)-1)
			}
			return r.parseMaterialLib(res, lineNum, lineTokens[1])
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'usemtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}

			mat, exists := r.materials[lineTokens[1]]
			if !exists {
				return r.emitError(res.Path(), lineNum, "undefined material with name '%s'", lineTokens[1])
			}
			r.curMaterial = mat
		case "sphere":
			err = r.parseSphere(lineTokens)
		case "plane":
			err = r.parsePlane(lineTokens)
		case "iplane":
			err = r.parseInfinitePlane(lineTokens)
		case "pyramid":
			err = r.parsePyramid(lineTokens)
		case "pattern":
			err = r.parsePattern(res, lineTokens)
		default:
			err = fmt.Errorf("unknown directive '%s'", lineTokens[0])
		}

		if err != nil {
			return r.emitError(res.Path(), lineNum, "%s", err.Error())
		}
		return nil
	})
}

func (r *sceneReader) parseMaterialLib(res *asset.Resource, lineNum int, libPath string) error {
	r.pushFrame(fmt.Sprintf("referenced from %s:%d [mtllib]", res.Path(), lineNum))

	libRes, err := asset.NewResource(libPath, res)
	if err != nil {
		return r.emitError(res.Path(), lineNum, "%s", err.Error())
	}
	defer libRes.Close()

	if err = r.parseMaterials(libRes); err != nil {
		return err
	}

	r.popFrame()
	return nil
}

// Get a copy of the selected material for a new object statement.
func (r *sceneReader) objectMaterial() *scene.Material {
	r.lastMaterial = r.curMaterial.Clone()
	r.lastSphere = nil
	return r.lastMaterial
}

// sphere cx cy cz r
func (r *sceneReader) parseSphere(lineTokens []string) error {
	args, err := parseFloats(lineTokens, 4)
	if err != nil {
		return err
	}
	if args[3] <= 0 {
		return fmt.Errorf("sphere radius must be positive; got %f", args[3])
	}

	sphere := scene.NewSphere(types.XYZ(args[0], args[1], args[2]), args[3], r.objectMaterial())
	r.scene.Add(sphere)
	r.lastSphere = sphere
	return nil
}

// plane x y z x y z x y z [x y z]
func (r *sceneReader) parsePlane(lineTokens []string) error {
	args, err := parseFloats(lineTokens, 9, 12)
	if err != nil {
		return err
	}

	vertices := make([]types.Vec3, 0, 4)
	for offset := 0; offset < len(args); offset += 3 {
		vertices = append(vertices, types.XYZ(args[offset], args[offset+1], args[offset+2]))
	}

	plane, err := scene.NewPlane(r.objectMaterial(), vertices...)
	if err != nil {
		return err
	}
	r.scene.Add(plane)
	return nil
}

// iplane px py pz nx ny nz
func (r *sceneReader) parseInfinitePlane(lineTokens []string) error {
	args, err := parseFloats(lineTokens, 6)
	if err != nil {
		return err
	}

	normal := types.XYZ(args[3], args[4], args[5])
	if normal.IsZero() {
		return fmt.Errorf("infinite plane normal must not be zero")
	}

	r.scene.Add(scene.NewInfinitePlane(types.XYZ(args[0], args[1], args[2]), normal, r.objectMaterial()))
	return nil
}

// pyramid x y z size
func (r *sceneReader) parsePyramid(lineTokens []string) error {
	args, err := parseFloats(lineTokens, 4)
	if err != nil {
		return err
	}
	if args[3] <= 0 {
		return fmt.Errorf("pyramid size must be positive; got %f", args[3])
	}

	r.scene.Add(scene.NewPyramid(types.XYZ(args[0], args[1], args[2]), args[3], r.objectMaterial())...)
	return nil
}

// pattern [overlay] checker size ox oy oz axes r g b r g b
// pattern [overlay] planar texfile x1 x2 z1 z2
// pattern [overlay] spherical texfile
func (r *sceneReader) parsePattern(res *asset.Resource, lineTokens []string) error {
	args := lineTokens[1:]
	stage := scene.BeforeLighting
	if len(args) > 0 && args[0] == "overlay" {
		stage = scene.Overlay
		args = args[1:]
	}

	if len(args) == 0 {
		return fmt.Errorf("unsupported syntax for 'pattern'; expected a pattern type")
	}
	if r.lastMaterial == nil {
		return fmt.Errorf("pattern '%s' must follow an object definition", args[0])
	}

	var pattern scene.Pattern
	switch args[0] {
	case "checker":
		if len(args) != 12 {
			return fmt.Errorf("unsupported syntax for 'checker' pattern; expected 11 arguments: size ox oy oz axes r g b r g b; got %d", len(args)-1)
		}
		checker, err := parseChecker(args[1:])
		if err != nil {
			return err
		}
		checker.PatternStage = stage
		pattern = checker
	case "planar":
		if len(args) != 6 {
			return fmt.Errorf("unsupported syntax for 'planar' pattern; expected 5 arguments: texfile x1 x2 z1 z2; got %d", len(args)-1)
		}
		bounds, err := parseFloats(args[1:], 4)
		if err != nil {
			return err
		}
		tex, err := r.loadTexture(res, args[1])
		if err != nil || tex == nil {
			return err
		}
		pattern = &scene.PlanarTexture{
			Texture:      tex,
			X1:           bounds[0],
			X2:           bounds[1],
			Z1:           bounds[2],
			Z2:           bounds[3],
			PatternStage: stage,
		}
	case "spherical":
		if len(args) != 2 {
			return fmt.Errorf("unsupported syntax for 'spherical' pattern; expected 1 argument: texfile; got %d", len(args)-1)
		}
		if r.lastSphere == nil {
			return fmt.Errorf("spherical pattern must follow a sphere definition")
		}
		tex, err := r.loadTexture(res, args[1])
		if err != nil || tex == nil {
			return err
		}
		pattern = &scene.SphericalTexture{
			Texture:      tex,
			Center:       r.lastSphere.Center,
			PatternStage: stage,
		}
	default:
		return fmt.Errorf("unknown pattern type '%s'", args[0])
	}

	r.lastMaterial.AddPattern(pattern)
	return nil
}

// Parse checker arguments: size ox oy oz axes r g b r g b
func parseChecker(args []string) (*scene.Checker, error) {
	size, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("checker size must be positive; got %s", args[0])
	}

	checker := &scene.Checker{Size: float32(size)}
	for axis := 0; axis < 3; axis++ {
		if checker.Offset[axis], err = strconv.Atoi(args[1+axis]); err != nil {
			return nil, err
		}
	}

	if checker.Axes, err = parseAxes(args[4]); err != nil {
		return nil, err
	}

	colors, err := parseFloats(args[4:], 6)
	if err != nil {
		return nil, err
	}
	checker.A = types.XYZ(colors[0], colors[1], colors[2])
	checker.B = types.XYZ(colors[3], colors[4], colors[5])
	return checker, nil
}

// Parse an axis selection such as "xz" or "xyz".
func parseAxes(name string) (scene.Axis, error) {
	var axes scene.Axis
	for _, c := range strings.ToLower(name) {
		switch c {
		case 'x':
			axes |= scene.AxisX
		case 'y':
			axes |= scene.AxisY
		case 'z':
			axes |= scene.AxisZ
		default:
			return 0, fmt.Errorf("invalid checker axes '%s'; expected a combination of x, y and z", name)
		}
	}
	if axes == 0 {
		return 0, fmt.Errorf("invalid checker axes '%s'; expected a combination of x, y and z", name)
	}
	return axes, nil
}

// Load a texture relative to res. Missing local textures are skipped with a
// warning and yield a nil texture.
func (r *sceneReader) loadTexture(res *asset.Resource, texPath string) (*texture.Texture, error) {
	texRes, err := asset.NewResource(texPath, res)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warningf("ignoring missing texture %s", texPath)
			return nil, nil
		}
		return nil, err
	}
	defer texRes.Close()

	if tex, exists := r.textures[texRes.Path()]; exists {
		return tex, nil
	}

	tex, err := texture.New(texRes, r.opts.Texture)
	if err != nil {
		return nil, err
	}
	r.textures[texRes.Path()] = tex
	return tex, nil
}

// Parse a material library.
func (r *sceneReader) parseMaterials(res *asset.Resource) error {
	var curMaterial *scene.Material

	return scanLines(res, func(lineNum int, lineTokens []string) error {
		if lineTokens[0] == "newmtl" {
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'newmtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}

			matName := lineTokens[1]
			if _, exists := r.materials[matName]; exists {
				return r.emitError(res.Path(), lineNum, "material '%s' already defined", matName)
			}

			curMaterial = scene.NewMaterial(defaultMaterialColor)
			r.materials[matName] = curMaterial
			return nil
		}

		if curMaterial == nil {
			return r.emitError(res.Path(), lineNum, "got '%s' without a 'newmtl'", lineTokens[0])
		}

		var err error
		var val float32
		switch lineTokens[0] {
		case "include":
			if len(lineTokens) != 2 {
				return r.emitError(res.Path(), lineNum, "unsupported syntax for 'include'; expected 1 argument; got %d", len(lineTokens)-1)
			}
			base, exists := r.materials[lineTokens[1]]
			if !exists || base == curMaterial {
				return r.emitError(res.Path(), lineNum, "undefined material with name '%s'", lineTokens[1])
			}
			*curMaterial = *base.Clone()
		case "Kd":
			curMaterial.Color, err = parseVec3(lineTokens)
		case "Ns":
			if val, err = parseFloat32(lineTokens); err == nil {
				curMaterial.SetSpecular(val)
			}
		case "Kr":
			if val, err = parseFloat32(lineTokens); err == nil {
				curMaterial.SetReflective(val)
			}
		case "Tr":
			if val, err = parseFloat32(lineTokens); err == nil {
				curMaterial.SetTransparent(val)
			}
		case "Ni":
			var args []float32
			if args, err = parseFloats(lineTokens, 2); err == nil {
				if args[0] <= 0 {
					err = fmt.Errorf("refractive index must be positive; got %f", args[0])
				} else {
					curMaterial.SetRefractive(args[1], args[0])
				}
			}
		default:
			logger.Debugf("[%s: %d] ignoring unsupported material directive '%s'", res.Path(), lineNum, lineTokens[0])
		}

		if err != nil {
			return r.emitError(res.Path(), lineNum, "%s", err.Error())
		}
		return nil
	})
}

// Parse a float scalar value.
func parseFloat32(lineTokens []string) (float32, error) {
	if len(lineTokens) < 2 {
		return 0, fmt.Errorf("unsupported syntax for '%s'; expected 1 argument; got %d", lineTokens[0], len(lineTokens)-1)
	}

	val, err := strconv.ParseFloat(lineTokens[1], 32)
	if err != nil {
		return 0, err
	}

	return float32(val), nil
}

// Parse a Vec3 row.
func parseVec3(lineTokens []string) (types.Vec3, error) {
	if len(lineTokens) < 4 {
		return types.Vec3{}, fmt.Errorf("unsupported syntax for '%s'; expected 3 arguments; got %d", lineTokens[0], len(lineTokens)-1)
	}

	v := types.Vec3{}
	for tokIdx := 1; tokIdx <= 3; tokIdx++ {
		coord, err := strconv.ParseFloat(lineTokens[tokIdx], 32)
		if err != nil {
			return v, err
		}
		v[tokIdx-1] = float32(coord)
	}
	return v, nil
}

// Parse the arguments of a directive that accepts one of the given argument
// counts.
func parseFloats(lineTokens []string, argCounts ...int) ([]float32, error) {
	numArgs := len(lineTokens) - 1

	valid := false
	expCounts := make([]string, len(argCounts))
	for index, count := range argCounts {
		valid = valid || count == numArgs
		expCounts[index] = strconv.Itoa(count)
	}
	if !valid {
		return nil, fmt.Errorf("unsupported syntax for '%s'; expected %s arguments; got %d", lineTokens[0], strings.Join(expCounts, " or "), numArgs)
	}

	out := make([]float32, numArgs)
	for index, token := range lineTokens[1:] {
		val, err := strconv.ParseFloat(token, 32)
		if err != nil {
			return nil, err
		}
		out[index] = float32(val)
	}
	return out, nil
}
