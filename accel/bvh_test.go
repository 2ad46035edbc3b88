package accel

import (
	"math"
	"math/rand"
	"testing"

	"github.com/prism-render/prism/geometry"
	"github.com/prism-render/prism/types"
)

func makeTriangleAt(t *testing.T, center types.Vec3, extent float32) geometry.Primitive {
	t.Helper()
	mesh, err := geometry.NewMesh("tri", []types.Vec3{
		center.Add(types.XYZ(-extent, -extent, 0)),
		center.Add(types.XYZ(extent, -extent, 0)),
		center.Add(types.XYZ(0, extent, 0)),
	}, []uint32{0, 1, 2})
	if err != nil {
		t.Fatalf("expected mesh creation to succeed; got %v", err)
	}
	return mesh.Triangles()[0]
}

func randomPrimitives(t *testing.T, rng *rand.Rand, count int) []geometry.Primitive {
	t.Helper()
	prims := make([]geometry.Primitive, 0, count)
	for i := 0; i < count; i++ {
		center := types.XYZ(
			(rng.Float32()*2-1)*10,
			(rng.Float32()*2-1)*10,
			(rng.Float32()*2-1)*10,
		)
		if i%5 == 0 {
			prims = append(prims, geometry.NewSphere(center, 0.5+rng.Float32()))
			continue
		}
		prims = append(prims, makeTriangleAt(t, center, 0.5+rng.Float32()))
	}
	return prims
}

func randomRay(rng *rand.Rand) *geometry.Ray {
	theta := rng.Float64() * 2 * math.Pi
	z := rng.Float64()*2 - 1
	r := math.Sqrt(1 - z*z)
	origin := types.XYZ(
		float32(r*math.Cos(theta)),
		float32(r*math.Sin(theta)),
		float32(z),
	).Mul(25)
	target := types.XYZ(
		(rng.Float32()*2-1)*10,
		(rng.Float32()*2-1)*10,
		(rng.Float32()*2-1)*10,
	)
	return geometry.NewRay(origin, target.Sub(origin).Normalize())
}

func TestBVHStructure(t *testing.T) {
	// Four well separated clusters, one per quadrant.
	prims := []geometry.Primitive{
		makeTriangleAt(t, types.XYZ(-2, 0, -2), 0.5),
		makeTriangleAt(t, types.XYZ(2, 0, -2), 0.5),
		makeTriangleAt(t, types.XYZ(-2, 0, 2), 0.5),
		makeTriangleAt(t, types.XYZ(2, 0, 2), 0.5),
	}

	// Partition each item into its own leaf.
	bvh := NewBVH(1, SurfaceAreaHeuristic)
	bvh.SetPrimitives(prims)
	bvh.Build()

	nodes, leafs, _ := bvh.Stats()
	if leafs != 4 {
		t.Fatalf("expected bvh tree to have 4 leafs; got %d", leafs)
	}
	if nodes != 7 {
		t.Fatalf("expected bvh tree to have 7 nodes; got %d", nodes)
	}

	// Partition two items into each leaf.
	bvh = NewBVH(2, SurfaceAreaHeuristic)
	bvh.SetPrimitives(prims)
	bvh.Build()

	nodes, leafs, _ = bvh.Stats()
	if leafs != 2 {
		t.Fatalf("expected bvh tree to have 2 leafs; got %d", leafs)
	}
	if nodes != 3 {
		t.Fatalf("expected bvh tree to have 3 nodes; got %d", nodes)
	}
}

func TestBVHMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	prims := randomPrimitives(t, rng, 300)

	bvh := NewBVH(10, SurfaceAreaHeuristic)
	bvh.SetPrimitives(prims)
	bvh.Build()

	bf := NewBruteForce()
	bf.SetPrimitives(prims)
	bf.Build()

	if bvh.BBox() != bf.BBox() {
		t.Fatalf("expected identical bounding boxes; got %v and %v", bvh.BBox(), bf.BBox())
	}

	const tolerance float32 = 1e-3
	bvhHit := geometry.NewIntersection()
	bfHit := geometry.NewIntersection()
	for i := 0; i < 500; i++ {
		ray := randomRay(rng)

		bvhHit.Reset()
		bfHit.Reset()
		gotHit := bvh.Intersect(ray, bvhHit)
		wantHit := bf.Intersect(ray, bfHit)

		if gotHit != wantHit {
			t.Fatalf("ray %d: expected hit=%v from the bvh; got %v", i, wantHit, gotHit)
		}
		if !gotHit {
			continue
		}

		diff := bvhHit.T - bfHit.T
		if diff < -tolerance || diff > tolerance {
			t.Fatalf("ray %d: expected hit distance %f; got %f", i, bfHit.T, bvhHit.T)
		}
		if bvhHit.T < ray.TMin || bvhHit.T > ray.TMax {
			t.Fatalf("ray %d: hit distance %f outside the valid range", i, bvhHit.T)
		}
	}
}

func TestBVHAnyHitMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	prims := randomPrimitives(t, rng, 200)

	bvh := NewBVH(4, SurfaceAreaHeuristic)
	bvh.SetPrimitives(prims)
	bvh.Build()

	bf := NewBruteForce()
	bf.SetPrimitives(prims)
	bf.Build()

	for i := 0; i < 500; i++ {
		free := randomRay(rng)
		// Alternate between unbounded and shadow-style bounded rays.
		ray := free
		if i%2 == 1 {
			ray = geometry.NewRayRange(free.Origin, free.Dir, free.TMin, 20)
		}

		got := bvh.Intersect(ray, nil)
		want := bf.Intersect(ray, nil)
		if got != want {
			t.Fatalf("ray %d: expected any-hit=%v from the bvh; got %v", i, want, got)
		}
	}
}

func TestBVHShadowRayShortCircuit(t *testing.T) {
	// A primitive on the ray path must occlude regardless of farther hits.
	prims := []geometry.Primitive{
		makeTriangleAt(t, types.XYZ(0, 0, -3), 1),
		makeTriangleAt(t, types.XYZ(0, 0, -6), 1),
		makeTriangleAt(t, types.XYZ(0, 0, -9), 1),
	}

	bvh := NewBVH(1, SurfaceAreaHeuristic)
	bvh.SetPrimitives(prims)
	bvh.Build()

	ray := geometry.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1))
	if !bvh.Intersect(ray, nil) {
		t.Fatal("expected the shadow ray to report an occlusion")
	}

	// The same query bounded before the first primitive must not occlude.
	ray = geometry.NewRayRange(ray.Origin, ray.Dir, ray.TMin, 2)
	if bvh.Intersect(ray, nil) {
		t.Fatal("expected occluders beyond TMax to be ignored")
	}
}

func TestEmptyAccelerators(t *testing.T) {
	ray := geometry.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1))

	bvh := NewBVH(4, SurfaceAreaHeuristic)
	bvh.SetPrimitives(nil)
	bvh.Build()
	if bvh.Intersect(ray, geometry.NewIntersection()) {
		t.Fatal("expected an empty bvh to never report a hit")
	}
	if !bvh.BBox().IsEmpty() {
		t.Fatal("expected an empty bvh bounding box to be the empty sentinel")
	}

	bf := NewBruteForce()
	bf.SetPrimitives(nil)
	bf.Build()
	if bf.Intersect(ray, geometry.NewIntersection()) {
		t.Fatal("expected an empty brute force scan to never report a hit")
	}
	if !bf.BBox().IsEmpty() {
		t.Fatal("expected an empty brute force bounding box to be the empty sentinel")
	}
}

func TestBVHRebuild(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	prims := randomPrimitives(t, rng, 100)

	bvh := NewBVH(4, SurfaceAreaHeuristic)
	bvh.SetPrimitives(prims)
	bvh.Build()
	nodes1, leafs1, _ := bvh.Stats()

	// A second build discards the previous index instead of growing it.
	bvh.Build()
	nodes2, leafs2, _ := bvh.Stats()
	if nodes1 != nodes2 || leafs1 != leafs2 {
		t.Fatalf("expected rebuild to produce the same structure; got %d/%d then %d/%d", nodes1, leafs1, nodes2, leafs2)
	}

	bf := NewBruteForce()
	bf.SetPrimitives(prims)
	bf.Build()

	bvhHit := geometry.NewIntersection()
	bfHit := geometry.NewIntersection()
	for i := 0; i < 100; i++ {
		ray := randomRay(rng)
		bvhHit.Reset()
		bfHit.Reset()
		if bvh.Intersect(ray, bvhHit) != bf.Intersect(ray, bfHit) {
			t.Fatalf("ray %d: rebuilt bvh disagrees with brute force", i)
		}
	}
}

func TestBVHSingleTriangle(t *testing.T) {
	prims := []geometry.Primitive{makeTriangleAt(t, types.XYZ(0, 0, -5), 1)}

	bvh := NewBVH(4, SurfaceAreaHeuristic)
	bvh.SetPrimitives(prims)
	bvh.Build()

	ray := geometry.NewRay(types.XYZ(0, 0, 0), types.XYZ(0, 0, -1))
	isect := geometry.NewIntersection()
	if !bvh.Intersect(ray, isect) {
		t.Fatal("expected the single-triangle bvh to report the hit")
	}
	if isect.T < 5-1e-4 || isect.T > 5+1e-4 {
		t.Fatalf("expected hit at distance 5; got %f", isect.T)
	}
}
