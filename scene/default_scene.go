package scene

import "github.com/achilleasa/whitted/types"

// Optional textures for the default scene. Nil textures are skipped.
type DefaultTextures struct {
	// Mapped onto a rectangle of the floor.
	Floor Sampler

	// Wrapped around the large background sphere.
	Earth Sampler
}

var (
	white = types.XYZ(1, 1, 1)
	black = types.XYZ(0, 0, 0)
)

// Build the default scene: a checkered floor, a textured globe, a
// transparent sphere resting on a checkered pyramid, a water sphere and a
// reflective cyan sphere, lit by a single light at (40, 30, -40).
func Default(textures DefaultTextures) *Scene {
	sc := NewScene(types.XYZ(40, 30, -40))

	floorMat := NewMaterial(types.XYZ(0.8, 0.8, 0))
	floorMat.AddPattern(&Checker{
		Size:   10,
		Offset: [3]int{10, 0, 0},
		Axes:   AxisX | AxisZ,
		A:      white,
		B:      black,
	})
	if textures.Floor != nil {
		floorMat.AddPattern(&PlanarTexture{
			Texture: textures.Floor,
			X1:      -15,
			X2:      5,
			Z1:      -60,
			Z2:      -90,
		})
	}
	floor, _ := NewPlane(floorMat,
		types.XYZ(-40, -15, -40),
		types.XYZ(40, -15, -40),
		types.XYZ(40, -15, -200),
		types.XYZ(-40, -15, -200),
	)
	sc.Add(floor)

	earthCenter := types.XYZ(-10, 10, -180)
	earthMat := NewMaterial(white).SetSpecular(DefaultShininess)
	if textures.Earth != nil {
		earthMat.AddPattern(&SphericalTexture{
			Texture: textures.Earth,
			Center:  earthCenter,
		})
	}
	sc.Add(NewSphere(earthCenter, 15, earthMat))

	glassMat := NewMaterial(types.XYZ(0.1, 0, 0)).
		SetReflective(0.1).
		SetTransparent(0.7)
	sc.Add(NewSphere(types.XYZ(-10, -1, -80), 4, glassMat))

	waterMat := NewMaterial(types.XYZ(0.1, 0.1, 0.1)).
		SetReflective(0.1).
		SetRefractive(0.7518, 1.33)
	sc.Add(NewSphere(types.XYZ(5, -10, -60), 5, waterMat))

	cyanMat := NewMaterial(types.XYZ(0, 1, 1)).SetReflective(0.5)
	sc.Add(NewSphere(types.XYZ(14, -12, -70), 3, cyanMat))

	pyramidMat := NewMaterial(white).AddPattern(&Checker{
		Size:   2,
		Offset: [3]int{-6, 0, 0},
		Axes:   AllAxes,
		A:      white,
		B:      black,
	})
	sc.Add(NewPyramid(types.XYZ(-10, -15, -80), 10, pyramidMat)...)

	return sc
}
