package scene

import (
	"testing"

	"github.com/achilleasa/whitted/types"
	"github.com/chewxy/math32"
)

func TestSphereHitDistanceAndNormal(t *testing.T) {
	type spec struct {
		radius float32
		origin types.Vec3
	}
	specs := []spec{
		{1, types.XYZ(0, 0, 5)},
		{2.5, types.XYZ(10, 0, 0)},
		{3, types.XYZ(-4, 7, -2)},
	}

	for index, s := range specs {
		sphere := NewSphere(types.Vec3{}, s.radius, NewMaterial(white))
		ray := NewRay(s.origin, s.origin.Neg())

		dist, ok := sphere.Intersect(&ray)
		if !ok {
			t.Fatalf("[spec %d] expected ray aimed at the center to hit the sphere", index)
		}

		expDist := s.origin.Len() - s.radius
		if math32.Abs(dist-expDist) > 1e-4 {
			t.Fatalf("[spec %d] expected hit distance %f; got %f", index, expDist, dist)
		}

		normal := sphere.NormalAt(ray.At(dist))
		if math32.Abs(normal.Len()-1) > 1e-4 {
			t.Fatalf("[spec %d] expected unit normal; got length %f", index, normal.Len())
		}

		// The normal faces back along the ray.
		if cos := normal.Dot(ray.Dir); math32.Abs(cos+1) > 1e-4 {
			t.Fatalf("[spec %d] expected normal to be parallel to the ray direction; got cos %f", index, cos)
		}
	}
}

func TestSphereMissAndInside(t *testing.T) {
	sphere := NewSphere(types.Vec3{}, 1, NewMaterial(white))

	ray := NewRay(types.XYZ(2, 0, 0), types.XYZ(0, 1, 0))
	if _, ok := sphere.Intersect(&ray); ok {
		t.Fatal("expected ray to miss the sphere")
	}

	ray = NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, 1))
	if _, ok := sphere.Intersect(&ray); ok {
		t.Fatal("expected ray pointing away from the sphere to miss it")
	}

	// Rays starting inside hit the far side.
	ray = NewRay(types.Vec3{}, types.XYZ(1, 0, 0))
	dist, ok := sphere.Intersect(&ray)
	if !ok || math32.Abs(dist-1) > 1e-5 {
		t.Fatalf("expected ray from the center to hit at distance 1; got %f (hit: %t)", dist, ok)
	}

	// Rays starting on the surface do not hit their own origin.
	ray = NewRay(types.XYZ(0, 0, 1), types.XYZ(0, 0, -1))
	dist, ok = sphere.Intersect(&ray)
	if !ok || math32.Abs(dist-2) > 1e-4 {
		t.Fatalf("expected ray leaving the surface inwards to hit the far side at distance 2; got %f (hit: %t)", dist, ok)
	}
}

func TestNewPlaneValidation(t *testing.T) {
	mat := NewMaterial(white)

	_, err := NewPlane(mat, types.XYZ(0, 0, 0), types.XYZ(1, 0, 0))
	expError := "scene: plane requires 3 or 4 vertices; got 2"
	if err == nil || err.Error() != expError {
		t.Fatalf("expected error %q; got %v", expError, err)
	}

	_, err = NewPlane(mat, types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(2, 0, 0))
	if err != ErrDegeneratePlane {
		t.Fatalf("expected error %v; got %v", ErrDegeneratePlane, err)
	}

	_, err = NewPlane(mat, types.XYZ(0, 0, 0), types.XYZ(1, 0, 0), types.XYZ(1, 0, -1), types.XYZ(0, 3, -1))
	if err != ErrNonPlanar {
		t.Fatalf("expected error %v; got %v", ErrNonPlanar, err)
	}
}

func TestBoundedPlane(t *testing.T) {
	plane, err := NewPlane(NewMaterial(white),
		types.XYZ(-1, 0, 1),
		types.XYZ(1, 0, 1),
		types.XYZ(1, 0, -1),
		types.XYZ(-1, 0, -1),
	)
	if err != nil {
		t.Fatal(err)
	}

	expNormal := types.XYZ(0, 1, 0)
	if n := plane.NormalAt(types.Vec3{}); n != expNormal {
		t.Fatalf("expected normal %v; got %v", expNormal, n)
	}

	type spec struct {
		origin types.Vec3
		dir    types.Vec3
		expHit bool
	}
	specs := []spec{
		{types.XYZ(0, 5, 0), types.XYZ(0, -1, 0), true},
		{types.XYZ(0.9, 5, -0.9), types.XYZ(0, -1, 0), true},
		{types.XYZ(2, 5, 0), types.XYZ(0, -1, 0), false},
		{types.XYZ(0, 5, 0), types.XYZ(1, 0, 0), false},
		{types.XYZ(0, 5, 0), types.XYZ(0, 1, 0), false},
		{types.XYZ(0, -5, 0), types.XYZ(0, 1, 0), true},
	}

	for index, s := range specs {
		ray := NewRay(s.origin, s.dir)
		dist, ok := plane.Intersect(&ray)
		if ok != s.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, s.expHit, ok)
		}
		if ok && math32.Abs(dist-5) > 1e-5 {
			t.Fatalf("[spec %d] expected hit distance 5; got %f", index, dist)
		}
	}
}

func TestTrianglePlaneBounds(t *testing.T) {
	plane, err := NewPlane(NewMaterial(white),
		types.XYZ(0, 0, 0),
		types.XYZ(1, 0, 0),
		types.XYZ(0, 1, 0),
	)
	if err != nil {
		t.Fatal(err)
	}

	inside := NewRay(types.XYZ(0.2, 0.2, 3), types.XYZ(0, 0, -1))
	if _, ok := plane.Intersect(&inside); !ok {
		t.Fatal("expected ray through the triangle to hit it")
	}

	outside := NewRay(types.XYZ(0.8, 0.8, 3), types.XYZ(0, 0, -1))
	if _, ok := plane.Intersect(&outside); ok {
		t.Fatal("expected ray past the hypotenuse to miss the triangle")
	}
}

func TestInfinitePlane(t *testing.T) {
	plane := NewInfinitePlane(types.XYZ(0, -15, 0), types.XYZ(0, 2, 0), NewMaterial(white))

	ray := NewRay(types.XYZ(1000, 0, -5000), types.XYZ(0, -1, 0))
	dist, ok := plane.Intersect(&ray)
	if !ok || math32.Abs(dist-15) > 1e-3 {
		t.Fatalf("expected far away ray to hit the unbounded plane at distance 15; got %f (hit: %t)", dist, ok)
	}

	expNormal := types.XYZ(0, 1, 0)
	if n := plane.NormalAt(ray.At(dist)); n != expNormal {
		t.Fatalf("expected normalized normal %v; got %v", expNormal, n)
	}
}

func TestPyramidNormalsFaceOutwards(t *testing.T) {
	base := types.XYZ(-10, -15, -80)
	var size float32 = 10
	faces := NewPyramid(base, size, NewMaterial(white))
	if len(faces) != 5 {
		t.Fatalf("expected 5 pyramid faces; got %d", len(faces))
	}

	// The centroid of the pyramid volume lies behind every face.
	centroid := base.Add(types.XYZ(0, size/4, 0))
	for index, obj := range faces {
		plane := obj.(*Plane)
		var faceCenter types.Vec3
		for _, v := range plane.Vertices {
			faceCenter = faceCenter.Add(v)
		}
		faceCenter = faceCenter.Mul(1 / float32(len(plane.Vertices)))

		if plane.NormalAt(faceCenter).Dot(faceCenter.Sub(centroid)) <= 0 {
			t.Fatalf("[face %d] expected outward facing normal; got %v", index, plane.NormalAt(faceCenter))
		}
	}

	// A ray from above hits a side face of the pyramid.
	sc := NewScene(types.XYZ(0, 100, 0))
	sc.Add(faces...)
	ray := NewRay(types.XYZ(-8, 20, -79), types.XYZ(0, -1, 0))
	if !sc.ClosestHit(&ray) {
		t.Fatal("expected ray from above to hit the pyramid")
	}
	if ray.Index != 0 {
		t.Fatalf("expected ray to hit face 0; got %d", ray.Index)
	}
	if math32.Abs(ray.Hit[1]-(-8)) > 1e-3 {
		t.Fatalf("expected hit at y = -8; got %v", ray.Hit)
	}
}
