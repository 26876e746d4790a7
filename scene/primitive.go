package scene

import (
	"errors"
	"fmt"

	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
)

var (
	ErrDegeneratePlane = errors.New("scene: plane vertices are collinear")
	ErrNonPlanar       = errors.New("scene: plane vertices are not coplanar")
)

// Rays whose direction is closer than this to being parallel with a plane
// never hit it. Sphere discriminants below it count as grazing misses.
const parallelEpsilon float32 = 1e-4
const grazingEpsilon float32 = 1e-3

type PrimitiveType uint32

const (
	PlanePrimitive PrimitiveType = iota
	SpherePrimitive
)

func (t PrimitiveType) String() string {
	switch t {
	case PlanePrimitive:
		return "plane"
	case SpherePrimitive:
		return "sphere"
	}
	return fmt.Sprintf("primitive(%d)", uint32(t))
}

// The Object interface is implemented by all scene primitives.
type Object interface {
	// Get the primitive type.
	Type() PrimitiveType

	// Get the distance to the nearest intersection in front of the ray
	// origin (further than HitEpsilon).
	Intersect(ray *Ray) (float32, bool)

	// Get the outward unit normal at a surface point.
	NormalAt(point types.Vec3) types.Vec3

	// Get the surface material.
	Material() *Material
}

// A sphere primitive.
type Sphere struct {
	Center types.Vec3
	Radius float32

	material *Material
}

// Create new sphere primitive.
func NewSphere(center types.Vec3, radius float32, material *Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		material: material,
	}
}

func (s *Sphere) Type() PrimitiveType {
	return SpherePrimitive
}

func (s *Sphere) Material() *Material {
	return s.material
}

// Solve |o + t*d - c|² = r² for the nearest root past HitEpsilon.
func (s *Sphere) Intersect(ray *Ray) (float32, bool) {
	oc := ray.Origin.Sub(s.Center)
	b := ray.Dir.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius
	delta := b*b - c
	if delta < 0 || math32.Abs(delta) < grazingEpsilon {
		return 0, false
	}

	sqrtDelta := math32.Sqrt(delta)
	if t := -b - sqrtDelta; t > HitEpsilon {
		return t, true
	}
	if t := -b + sqrtDelta; t > HitEpsilon {
		return t, true
	}
	return 0, false
}

func (s *Sphere) NormalAt(point types.Vec3) types.Vec3 {
	return point.Sub(s.Center).Mul(1 / s.Radius)
}

// A plane primitive. Bounded planes are convex polygons with 3 or 4
// vertices; unbounded planes extend to infinity.
type Plane struct {
	Vertices []types.Vec3
	Bounded  bool

	normal   types.Vec3
	material *Material
}

// Create a bounded plane from 3 or 4 coplanar vertices. The normal is
// (v1-v0)x(v2-v0) so vertices should be listed counter-clockwise when seen
// from the front side.
func NewPlane(material *Material, vertices ...types.Vec3) (*Plane, error) {
	if len(vertices) < 3 || len(vertices) > 4 {
		return nil, fmt.Errorf("scene: plane requires 3 or 4 vertices; got %d", len(vertices))
	}

	cross := vertices[1].Sub(vertices[0]).Cross(vertices[2].Sub(vertices[0]))
	if cross.Len() < parallelEpsilon {
		return nil, ErrDegeneratePlane
	}
	normal := cross.Normalize()

	if len(vertices) == 4 {
		dist := math32.Abs(vertices[3].Sub(vertices[0]).Dot(normal))
		scale := math32.Max(1, vertices[1].Sub(vertices[0]).Len())
		if dist > parallelEpsilon*scale {
			return nil, ErrNonPlanar
		}
	}

	return &Plane{
		Vertices: append([]types.Vec3(nil), vertices...),
		Bounded:  true,
		normal:   normal,
		material: material,
	}, nil
}

// Create an unbounded plane through point with the given normal.
func NewInfinitePlane(point, normal types.Vec3, material *Material) *Plane {
	return &Plane{
		Vertices: []types.Vec3{point},
		normal:   normal.Normalize(),
		material: material,
	}
}

func (p *Plane) Type() PrimitiveType {
	return PlanePrimitive
}

func (p *Plane) Material() *Material {
	return p.material
}

func (p *Plane) NormalAt(_ types.Vec3) types.Vec3 {
	return p.normal
}

func (p *Plane) Intersect(ray *Ray) (float32, bool) {
	dDotN := ray.Dir.Dot(p.normal)
	if math32.Abs(dDotN) < parallelEpsilon {
		return 0, false
	}

	t := p.Vertices[0].Sub(ray.Origin).Dot(p.normal) / dDotN
	if t <= HitEpsilon {
		return 0, false
	}

	if p.Bounded && !p.contains(ray.At(t)) {
		return 0, false
	}
	return t, true
}

// Check whether a point on the plane lies inside the polygon boundary. For a
// convex polygon wound counter-clockwise around the normal every edge sees
// the point on its left.
func (p *Plane) contains(point types.Vec3) bool {
	numVerts := len(p.Vertices)
	for i := 0; i < numVerts; i++ {
		v0 := p.Vertices[i]
		v1 := p.Vertices[(i+1)%numVerts]
		if v1.Sub(v0).Cross(point.Sub(v0)).Dot(p.normal) < 0 {
			return false
		}
	}
	return true
}

// Create the 4 side faces and the base of a square pyramid whose base is
// centered at base and whose apex is size units above it. All faces share
// material and have outward facing normals.
func NewPyramid(base types.Vec3, size float32, material *Material) []Object {
	x, y, z := base[0], base[1], base[2]
	a := types.XYZ(x+size, y, z)
	b := types.XYZ(x, y, z+size)
	c := types.XYZ(x-size, y, z)
	d := types.XYZ(x, y, z-size)
	e := types.XYZ(x, y+size, z)

	faces := [][]types.Vec3{
		{a, e, b},
		{b, e, c},
		{c, e, d},
		{d, e, a},
		{a, b, c, d},
	}

	out := make([]Object, 0, len(faces))
	for _, verts := range faces {
		// Pyramid faces are never degenerate for size > 0
		plane, err := NewPlane(material, verts...)
		if err != nil {
			continue
		}
		out = append(out, plane)
	}
	return out
}
