package scene

import (
	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
)

// Controls when a pattern is evaluated during shading.
type PatternStage uint8

const (
	// The pattern color replaces the base color before lighting.
	BeforeLighting PatternStage = iota

	// The pattern color replaces the final shaded color, discarding
	// lighting and any reflected or refracted contribution.
	Overlay
)

func (s PatternStage) String() string {
	if s == Overlay {
		return "overlay"
	}
	return "before-lighting"
}

// A Pattern computes a surface color at a hit point. Patterns may decline
// points they do not cover by returning false.
type Pattern interface {
	Stage() PatternStage
	ColorAt(point types.Vec3) (types.Vec3, bool)
}

// The Sampler interface is implemented by textures that can be addressed
// with normalized (u, v) coordinates.
type Sampler interface {
	Sample(u, v float32) types.Vec3
}

// Axis selection mask for checker patterns.
type Axis uint8

const (
	AxisX Axis = 1 << iota
	AxisY
	AxisZ

	AllAxes = AxisX | AxisY | AxisZ
)

// A procedural checker pattern. For every enabled axis the tile index is
// p/Size + Offset truncated towards zero; the parity of the index sum selects
// A or B.
type Checker struct {
	Size   float32
	Offset [3]int
	Axes   Axis
	A, B   types.Vec3

	PatternStage PatternStage
}

func (c *Checker) Stage() PatternStage {
	return c.PatternStage
}

func (c *Checker) ColorAt(point types.Vec3) (types.Vec3, bool) {
	if c.Size <= 0 {
		return types.Vec3{}, false
	}

	sum := 0
	for axis := 0; axis < 3; axis++ {
		if c.Axes&(1<<uint(axis)) == 0 {
			continue
		}
		sum += int(point[axis]/c.Size + float32(c.Offset[axis]))
	}

	if sum%2 == 0 {
		return c.A, true
	}
	return c.B, true
}

// Maps an axis-aligned rectangle on the XZ plane onto a texture. Points
// outside the rectangle are declined.
type PlanarTexture struct {
	Texture Sampler
	X1, X2  float32
	Z1, Z2  float32

	PatternStage PatternStage
}

func (p *PlanarTexture) Stage() PatternStage {
	return p.PatternStage
}

func (p *PlanarTexture) ColorAt(point types.Vec3) (types.Vec3, bool) {
	if p.Texture == nil || p.X1 == p.X2 || p.Z1 == p.Z2 {
		return types.Vec3{}, false
	}

	s := (point[0] - p.X1) / (p.X2 - p.X1)
	t := (point[2] - p.Z1) / (p.Z2 - p.Z1)
	if s <= 0 || s >= 1 || t <= 0 || t >= 1 {
		return types.Vec3{}, false
	}
	return p.Texture.Sample(s, t), true
}

// Wraps a texture around a sphere using a longitude/latitude mapping.
type SphericalTexture struct {
	Texture Sampler
	Center  types.Vec3

	PatternStage PatternStage
}

func (p *SphericalTexture) Stage() PatternStage {
	return p.PatternStage
}

func (p *SphericalTexture) ColorAt(point types.Vec3) (types.Vec3, bool) {
	if p.Texture == nil {
		return types.Vec3{}, false
	}

	dir := point.Sub(p.Center).Normalize()
	if dir.IsZero() {
		return types.Vec3{}, false
	}

	// asin needs a value in [-1, 1]; float rounding can push it out.
	lat := math32.Asin(math32.Max(-1, math32.Min(1, dir[1])))
	v := 0.5 + lat/math32.Pi
	u := (0.5 - math32.Atan2(dir[2], dir[0]) + math32.Pi) / (2 * math32.Pi)
	return p.Texture.Sample(u, v), true
}
