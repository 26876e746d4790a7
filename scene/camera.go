package scene

import (
	"fmt"

	"github.com/achilleasa/whitted/types"
)

// Sub-cell offsets for the 4 anti-aliasing samples.
var aaOffsets = [4][2]float32{
	{0.25, 0.25},
	{0.25, 0.75},
	{0.75, 0.25},
	{0.75, 0.75},
}

// The camera is a fixed eye looking down the -Z axis at an image plane
// placed Dist units in front of it. The plane spans [XMin, XMax] x [YMin, YMax].
type Camera struct {
	Eye  types.Vec3
	Dist float32

	XMin, XMax float32
	YMin, YMax float32
}

// Get a camera with the eye at (0, 0, 10) looking at a 20x20 image plane
// 40 units away.
func DefaultCamera() *Camera {
	return &Camera{
		Eye:  types.XYZ(0, 0, 10),
		Dist: 40,
		XMin: -10,
		XMax: 10,
		YMin: -10,
		YMax: 10,
	}
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"eye (%3.3f, %3.3f, %3.3f), plane distance %3.3f, extents [%3.3f, %3.3f] x [%3.3f, %3.3f]",
		c.Eye[0], c.Eye[1], c.Eye[2], c.Dist, c.XMin, c.XMax, c.YMin, c.YMax,
	)
}

// Fill dirs with the primary ray directions for image plane cell (i, j) of a
// cols x rows grid and return the number of directions written. Cell (0, 0)
// is the bottom-left cell. With antialias set, 4 samples are generated per
// cell; otherwise a single sample through the cell center.
func (c *Camera) CellDirections(i, j, cols, rows uint32, antialias bool, dirs *[4]types.Vec3) int {
	cellW := (c.XMax - c.XMin) / float32(cols)
	cellH := (c.YMax - c.YMin) / float32(rows)
	xp := c.XMin + float32(i)*cellW
	yp := c.YMin + float32(j)*cellH

	if !antialias {
		dirs[0] = types.XYZ(xp+0.5*cellW, yp+0.5*cellH, -c.Dist)
		return 1
	}

	for index, offset := range aaOffsets {
		dirs[index] = types.XYZ(xp+offset[0]*cellW, yp+offset[1]*cellH, -c.Dist)
	}
	return len(aaOffsets)
}
