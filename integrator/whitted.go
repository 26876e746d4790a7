package integrator

import (
	"sync/atomic"

	"github.com/achilleasa/whitted/scene"
	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
)

const (
	// Scale applied to the surface color for the ambient term and for
	// points shadowed by an opaque occluder.
	ambientScale float32 = 0.2

	// Scale applied to the surface color for points shadowed by a
	// transparent or refractive occluder.
	translucentShadowScale float32 = 0.6
)

var white = types.XYZ(1, 1, 1)

type Options struct {
	// Maximum recursion depth. Primary rays start at depth 1 and no
	// secondary contribution is added once depth reaches MaxSteps.
	MaxSteps uint32

	// Blend hit colors towards white by their depth along -Z. Escaping
	// rays return white when fog is enabled.
	Fog     bool
	FogNear float32
	FogFar  float32
}

// Get the default integrator options.
func DefaultOptions() Options {
	return Options{
		MaxSteps: 5,
		FogNear:  -60,
		FogFar:   -200,
	}
}

// Ray statistics collected while tracing.
type Stats struct {
	TraceCalls    uint64
	PrimaryRays   uint64
	ShadowRays    uint64
	SecondaryRays uint64
	MaxDepth      uint32
}

// A recursive Whitted integrator. The scene is only read while tracing so a
// single integrator can be shared by concurrent callers.
type Whitted struct {
	scene *scene.Scene
	opts  Options

	traceCalls    atomic.Uint64
	primaryRays   atomic.Uint64
	shadowRays    atomic.Uint64
	secondaryRays atomic.Uint64
	maxDepth      atomic.Uint32
}

// Create a new integrator for the given scene.
func New(sc *scene.Scene, opts Options) *Whitted {
	if opts.MaxSteps == 0 {
		opts.MaxSteps = DefaultOptions().MaxSteps
	}
	return &Whitted{
		scene: sc,
		opts:  opts,
	}
}

// Get a snapshot of the ray statistics.
func (w *Whitted) Stats() Stats {
	return Stats{
		TraceCalls:    w.traceCalls.Load(),
		PrimaryRays:   w.primaryRays.Load(),
		ShadowRays:    w.shadowRays.Load(),
		SecondaryRays: w.secondaryRays.Load(),
		MaxDepth:      w.maxDepth.Load(),
	}
}

// Reset ray statistics.
func (w *Whitted) ResetStats() {
	w.traceCalls.Store(0)
	w.primaryRays.Store(0)
	w.shadowRays.Store(0)
	w.secondaryRays.Store(0)
	w.maxDepth.Store(0)
}

// Compute the color seen along ray. Primary rays are traced with depth 1.
func (w *Whitted) Trace(ray scene.Ray, depth uint32) types.Vec3 {
	w.traceCalls.Add(1)
	w.recordDepth(depth)
	if depth <= 1 {
		w.primaryRays.Add(1)
	}

	if !w.scene.ClosestHit(&ray) {
		return w.background()
	}

	obj := w.scene.Objects[ray.Index]
	mat := obj.Material()
	normal := obj.NormalAt(ray.Hit)

	// The effective color is local to this hit; materials are never mutated.
	effective, _ := mat.ColorAt(scene.BeforeLighting, ray.Hit, mat.Color)

	color := w.phong(mat, effective, normal, ray.Dir.Neg(), ray.Hit)
	if scale, shadowed := w.shadowScale(ray.Hit); shadowed {
		color = effective.Mul(scale)
	}

	if depth < w.opts.MaxSteps {
		if mat.Reflective {
			reflDir := types.Reflect(ray.Dir, normal)
			color = color.Add(w.traceSecondary(ray.Hit, reflDir, depth+1).Mul(mat.ReflectionCoeff))
		}
		if mat.Transparent {
			color = color.Add(w.traceSecondary(ray.Hit, ray.Dir, depth+1).Mul(mat.TransparencyCoeff))
		}
		if mat.Refractive {
			color = color.Add(w.refract(obj, &ray, normal, depth))
		}
	}

	color, _ = mat.ColorAt(scene.Overlay, ray.Hit, color)

	if w.opts.Fog {
		color = w.fog(color, ray.Hit[2])
	}

	return color
}

// Local Phong illumination: 0.2*c + max(0, l.n)*c + specular.
func (w *Whitted) phong(mat *scene.Material, c, normal, view, hit types.Vec3) types.Vec3 {
	l := w.scene.Light.Sub(hit).Normalize()

	color := c.Mul(ambientScale)
	if lDotN := l.Dot(normal); lDotN > 0 {
		color = color.Add(c.Mul(lDotN))
	}

	if mat.Specular {
		r := types.Reflect(l.Neg(), normal)
		if rDotV := r.Dot(view); rDotV > 0 {
			color = color.Add(white.Mul(math32.Pow(rDotV, mat.Shininess)))
		}
	}

	return color
}

// Cast a shadow ray from hit towards the light. If an occluder lies strictly
// between the two, return the scale to apply to the surface color.
func (w *Whitted) shadowScale(hit types.Vec3) (float32, bool) {
	lightVec := w.scene.Light.Sub(hit)
	lightDist := lightVec.Len()

	w.shadowRays.Add(1)
	shadowRay := scene.NewRay(hit, lightVec)
	if !w.scene.ClosestHit(&shadowRay) || shadowRay.Dist >= lightDist {
		return 0, false
	}

	if w.scene.Objects[shadowRay.Index].Material().IsTranslucent() {
		return translucentShadowScale, true
	}
	return ambientScale, true
}

// Refract the ray into obj, find where it leaves the body and trace the exit
// ray. Returns black if a non-finite direction is produced along the way.
func (w *Whitted) refract(obj scene.Object, ray *scene.Ray, normal types.Vec3, depth uint32) types.Vec3 {
	index := obj.Material().RefractiveIndex
	if index <= 0 {
		return types.Vec3{}
	}

	// Total internal reflection falls back to the reflected direction.
	g, _ := types.Refract(ray.Dir, normal, 1/index)
	if !g.IsFinite() || g.IsZero() {
		return types.Vec3{}
	}

	w.secondaryRays.Add(1)
	inner := scene.NewRay(ray.Hit, g)
	if !w.scene.ClosestHit(&inner) {
		return w.traceSecondary(ray.Hit, g, depth+1)
	}

	m := obj.NormalAt(inner.Hit)
	h, _ := types.Refract(inner.Dir, m.Neg(), index)
	if !h.IsFinite() || h.IsZero() {
		return types.Vec3{}
	}

	return w.traceSecondary(inner.Hit, h, depth+1)
}

func (w *Whitted) traceSecondary(origin, dir types.Vec3, depth uint32) types.Vec3 {
	if !dir.IsFinite() {
		return types.Vec3{}
	}
	w.secondaryRays.Add(1)
	return w.Trace(scene.NewRay(origin, dir), depth)
}

func (w *Whitted) background() types.Vec3 {
	if w.opts.Fog {
		return white
	}
	return w.scene.Background
}

// Blend color towards white when z lies inside the fog range.
func (w *Whitted) fog(color types.Vec3, z float32) types.Vec3 {
	near, far := w.opts.FogNear, w.opts.FogFar
	if near == far || z > near || z < far {
		return color
	}
	return color.Lerp(white, (z-near)/(far-near))
}

func (w *Whitted) recordDepth(depth uint32) {
	for {
		cur := w.maxDepth.Load()
		if depth <= cur || w.maxDepth.CompareAndSwap(cur, depth) {
			return
		}
	}
}
