package scene

import (
	"math"

	"github.com/achilleasa/whitted/types"
)

// A Scene is an ordered list of objects lit by a single point light. Object
// indices are stable and reported by ClosestHit; no shading behavior depends
// on them.
type Scene struct {
	Objects []Object

	// Point light position.
	Light types.Vec3

	// The color returned for rays that escape the scene.
	Background types.Vec3
}

func NewScene(light types.Vec3) *Scene {
	return &Scene{
		Objects: make([]Object, 0),
		Light:   light,
	}
}

// Append objects to the scene and return the index of the first one.
func (s *Scene) Add(objects ...Object) int {
	index := len(s.Objects)
	s.Objects = append(s.Objects, objects...)
	return index
}

// Find the nearest object intersected by the ray and record it in the ray's
// hit state. Objects are tested in order and only a strictly closer hit
// replaces the current one, so equal distances resolve to the lowest index.
// Returns false if the ray escapes the scene.
func (s *Scene) ClosestHit(ray *Ray) bool {
	ray.Index = NoHit
	ray.Dist = 0
	ray.Hit = types.Vec3{}

	if ray.Dir.IsZero() {
		return false
	}

	var minDist float32 = math.MaxFloat32
	for index, obj := range s.Objects {
		dist, ok := obj.Intersect(ray)
		if !ok || dist <= HitEpsilon || dist >= minDist {
			continue
		}
		minDist = dist
		ray.Index = index
	}

	if ray.Index == NoHit {
		return false
	}

	ray.Dist = minDist
	ray.Hit = ray.At(minDist)
	return true
}
