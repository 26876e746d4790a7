package scene

import "github.com/achilleasa/whitted/types"

// The Index value of a ray that did not hit anything.
const NoHit = -1

// Intersections closer than this distance to the ray origin are ignored so
// that rays starting on a surface do not hit that surface again.
const HitEpsilon float32 = 1e-3

// A Ray is an origin and a normalized direction. The Index, Hit and Dist
// fields are populated by Scene.ClosestHit and are only valid when Index is
// not NoHit.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3

	// Index of the nearest object hit by the ray.
	Index int

	// The nearest hit point and its distance from the origin.
	Hit  types.Vec3
	Dist float32
}

// Create a new ray. The direction is normalized.
func NewRay(origin, dir types.Vec3) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir.Normalize(),
		Index:  NoHit,
	}
}

// Get the point at distance t along the ray.
func (r *Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}
