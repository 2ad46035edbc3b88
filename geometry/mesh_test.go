package geometry

import (
	"math"
	"testing"

	"github.com/prism-render/prism/types"
)

func makeTestTriangle(t *testing.T, v0, v1, v2 types.Vec3) *Triangle {
	t.Helper()
	mesh, err := NewMesh("test", []types.Vec3{v0, v1, v2}, []uint32{0, 1, 2})
	if err != nil {
		t.Fatalf("expected mesh creation to succeed; got %v", err)
	}
	return mesh.Triangles()[0].(*Triangle)
}

func TestTriangleAnalyticHit(t *testing.T) {
	// Triangle in the z=-5 plane straight ahead of the origin.
	tri := makeTestTriangle(t,
		types.XYZ(-1, -1, -5),
		types.XYZ(1, -1, -5),
		types.XYZ(0, 1, -5),
	)

	ray := NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1))
	isect := NewIntersection()
	if !tri.Intersect(ray, isect) {
		t.Fatal("expected ray to hit the triangle")
	}

	if isect.T < 5-1e-4 || isect.T > 5+1e-4 {
		t.Fatalf("expected hit at distance 5; got %f", isect.T)
	}
	if !types.ApproxEqVec3(isect.Point, types.XYZ(0, 0, -5)) {
		t.Fatalf("expected hit point {0 0 -5}; got %v", isect.Point)
	}
	if isect.Prim == nil || isect.PrimID != 0 {
		t.Fatalf("expected the record to reference face 0; got %v", isect.PrimID)
	}
}

func TestTriangleMiss(t *testing.T) {
	tri := makeTestTriangle(t,
		types.XYZ(-1, -1, -5),
		types.XYZ(1, -1, -5),
		types.XYZ(0, 1, -5),
	)

	// Aimed outside the triangle.
	ray := NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 5, -1).Normalize())
	if tri.Intersect(ray, nil) {
		t.Fatal("expected ray aimed past the triangle to miss")
	}

	// Parallel to the triangle plane.
	ray = NewRay(types.XYZ(0, 0, 0), types.XYZ(1, 0, 0))
	if tri.Intersect(ray, nil) {
		t.Fatal("expected ray parallel to the triangle plane to miss")
	}
}

func TestTriangleRespectsRayRange(t *testing.T) {
	tri := makeTestTriangle(t,
		types.XYZ(-1, -1, -5),
		types.XYZ(1, -1, -5),
		types.XYZ(0, 1, -5),
	)

	// The hit at t=5 lies beyond TMax. Both the hit-record path and the
	// existence-test path must reject it.
	ray := NewRayRange(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1), RayEpsilon, 2)
	if tri.Intersect(ray, nil) {
		t.Fatal("expected shadow query to respect TMax")
	}
	isect := NewIntersection()
	if tri.Intersect(ray, isect) {
		t.Fatal("expected closest-hit query to respect TMax")
	}
	if isect.Hit() {
		t.Fatal("expected the record to stay in the no-hit state")
	}
}

func TestTriangleKeepsRunningBest(t *testing.T) {
	near := makeTestTriangle(t,
		types.XYZ(-1, -1, -2),
		types.XYZ(1, -1, -2),
		types.XYZ(0, 1, -2),
	)
	far := makeTestTriangle(t,
		types.XYZ(-1, -1, -7),
		types.XYZ(1, -1, -7),
		types.XYZ(0, 1, -7),
	)

	ray := NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1))
	isect := NewIntersection()

	// Test in worst-case order: the far triangle first.
	if !far.Intersect(ray, isect) {
		t.Fatal("expected the far triangle to update an empty record")
	}
	if !near.Intersect(ray, isect) {
		t.Fatal("expected the near triangle to beat the far hit")
	}
	if isect.T < 2-1e-4 || isect.T > 2+1e-4 {
		t.Fatalf("expected the closest hit at distance 2 to survive; got %f", isect.T)
	}

	// A farther primitive must not overwrite the record.
	if far.Intersect(ray, isect) {
		t.Fatal("expected the far triangle not to overwrite a closer hit")
	}
	if isect.T > 2+1e-4 {
		t.Fatalf("expected the record to keep distance 2; got %f", isect.T)
	}
}

func TestTriangleNormalInterpolation(t *testing.T) {
	mesh := &Mesh{
		Name:     "smooth",
		Vertices: []types.Vec3{{-1, -1, 0}, {1, -1, 0}, {0, 1, 0}},
		Normals:  []types.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Indices:  []uint32{0, 1, 2},
	}
	tri := mesh.Triangles()[0]

	ray := NewRay(types.XYZ(0, 0, 5), types.XYZ(0, 0, -1))
	isect := NewIntersection()
	if !tri.Intersect(ray, isect) {
		t.Fatal("expected the ray to hit")
	}
	if !types.ApproxEqVec3(isect.Normal, types.XYZ(0, 0, 1)) {
		t.Fatalf("expected interpolated normal {0 0 1}; got %v", isect.Normal)
	}
}

func TestMeshValidation(t *testing.T) {
	if _, err := NewMesh("bad", []types.Vec3{{0, 0, 0}}, []uint32{0, 1}); err == nil {
		t.Fatal("expected non-multiple-of-3 index count to be rejected")
	}
	if _, err := NewMesh("bad", []types.Vec3{{0, 0, 0}}, []uint32{0, 1, 2}); err == nil {
		t.Fatal("expected out-of-range index to be rejected")
	}
}

func TestTriangleBBox(t *testing.T) {
	tri := makeTestTriangle(t,
		types.XYZ(-1, 0, -5),
		types.XYZ(2, -1, -4),
		types.XYZ(0, 3, -6),
	)

	box := tri.BBox()
	if box.Min != (types.Vec3{-1, -1, -6}) || box.Max != (types.Vec3{2, 3, -4}) {
		t.Fatalf("expected bbox {-1 -1 -6}..{2 3 -4}; got %v", box)
	}
	if tri.Center() != box.Center() {
		t.Fatalf("expected the primitive center to match its bbox center")
	}
}

func TestIntersectionReset(t *testing.T) {
	isect := NewIntersection()
	if isect.Hit() {
		t.Fatal("expected a fresh record to be in the no-hit state")
	}
	if !math.IsInf(float64(isect.T), 1) {
		t.Fatalf("expected a fresh record distance at +Inf; got %f", isect.T)
	}
}
