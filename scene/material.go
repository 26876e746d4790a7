package scene

import "github.com/achilleasa/whitted/types"

// Default Phong exponent for specular materials.
const DefaultShininess float32 = 50

// Defines the surface properties of a scene object. The reflective,
// transparent and refractive flags are independent; the coefficient that
// accompanies each flag is only meaningful when the flag is set.
type Material struct {
	// Base color.
	Color types.Vec3

	// Specular highlights.
	Specular  bool
	Shininess float32

	// Mirror reflection.
	Reflective      bool
	ReflectionCoeff float32

	// Straight-through transparency.
	Transparent       bool
	TransparencyCoeff float32

	// Refraction. RefractiveIndex is the index of the object's interior
	// relative to the surrounding medium.
	Refractive      bool
	RefractionCoeff float32
	RefractiveIndex float32

	// Surface patterns, applied in order.
	Patterns []Pattern
}

// Create a diffuse material with the given color.
func NewMaterial(color types.Vec3) *Material {
	return &Material{
		Color:     color,
		Shininess: DefaultShininess,
	}
}

// Enable specular highlights.
func (m *Material) SetSpecular(shininess float32) *Material {
	m.Specular = true
	m.Shininess = shininess
	return m
}

// Enable mirror reflection.
func (m *Material) SetReflective(coeff float32) *Material {
	m.Reflective = true
	m.ReflectionCoeff = coeff
	return m
}

// Enable straight-through transparency.
func (m *Material) SetTransparent(coeff float32) *Material {
	m.Transparent = true
	m.TransparencyCoeff = coeff
	return m
}

// Enable refraction.
func (m *Material) SetRefractive(coeff, index float32) *Material {
	m.Refractive = true
	m.RefractionCoeff = coeff
	m.RefractiveIndex = index
	return m
}

// Attach a surface pattern.
func (m *Material) AddPattern(p Pattern) *Material {
	m.Patterns = append(m.Patterns, p)
	return m
}

// Returns true if the material lets light through (transparent or
// refractive).
func (m *Material) IsTranslucent() bool {
	return m.Transparent || m.Refractive
}

// Get the surface color at a hit point after applying all patterns of the
// given stage on top of base. Patterns that do not cover the point leave the
// color unchanged. The second return value reports whether any pattern
// produced a color.
func (m *Material) ColorAt(stage PatternStage, point, base types.Vec3) (types.Vec3, bool) {
	color := base
	applied := false
	for _, p := range m.Patterns {
		if p.Stage() != stage {
			continue
		}
		if c, ok := p.ColorAt(point); ok {
			color = c
			applied = true
		}
	}
	return color, applied
}

// Clone material. The pattern list is copied; patterns themselves are shared.
func (m *Material) Clone() *Material {
	out := *m
	out.Patterns = append([]Pattern(nil), m.Patterns...)
	return &out
}
