package cmd

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/prism-render/prism/accel"
	"github.com/prism-render/prism/geometry"
	"github.com/prism-render/prism/light"
	"github.com/prism-render/prism/scene"
	"github.com/prism-render/prism/types"
	"github.com/urfave/cli"
)

// The procedural scene fills a cube with this half-extent.
const benchSceneExtent float32 = 100.0

// A procedural entity that appends randomly placed triangles. Used only by
// the bench command; it doubles as an exercise of the entity expansion
// contract real loaders implement.
type proceduralEntity struct {
	triangles int
	rng       *rand.Rand
}

func (e *proceduralEntity) FillScene(s *scene.Scene) error {
	vertices := make([]types.Vec3, 0, e.triangles*3)
	indices := make([]uint32, 0, e.triangles*3)

	for i := 0; i < e.triangles; i++ {
		center := e.randomPoint(benchSceneExtent)
		for k := 0; k < 3; k++ {
			indices = append(indices, uint32(len(vertices)))
			vertices = append(vertices, center.Add(e.randomPoint(1.0)))
		}
	}

	mesh, err := geometry.NewMesh("procedural", vertices, indices)
	if err != nil {
		return err
	}
	s.AddPrimitives(mesh.Triangles()...)
	return nil
}

func (e *proceduralEntity) randomPoint(extent float32) types.Vec3 {
	return types.XYZ(
		(e.rng.Float32()*2-1)*extent,
		(e.rng.Float32()*2-1)*extent,
		(e.rng.Float32()*2-1)*extent,
	)
}

// A slightly tilted floor quad underneath the procedural triangles.
func floorEntity() (scene.Entity, error) {
	s := benchSceneExtent * 1.5
	mesh, err := geometry.NewMesh("floor", []types.Vec3{
		{-s, 0, -s}, {s, 0, -s}, {s, 0, s}, {-s, 0, s},
	}, []uint32{0, 1, 2, 0, 2, 3})
	if err != nil {
		return nil, err
	}

	ent := scene.NewMeshEntity(mesh)
	tilt := types.QuatFromAxisAngle(types.XYZ(1, 0, 0), math.Pi/64).Mat4()
	ent.Transform = types.Translation(types.XYZ(0, -benchSceneExtent, 0)).Mul4(tilt)
	return ent, nil
}

// Benchmark intersection queries against a procedural scene.
func Bench(ctx *cli.Context) error {
	setupLogging(ctx)

	var acc accel.Accelerator
	switch ctx.String("accel") {
	case "bvh":
		acc = accel.NewBVH(ctx.Int("leaf-size"), accel.SurfaceAreaHeuristic)
	case "brute":
		acc = accel.NewBruteForce()
	default:
		return fmt.Errorf("unsupported accelerator %q", ctx.String("accel"))
	}

	rng := rand.New(rand.NewSource(ctx.Int64("seed")))
	floor, err := floorEntity()
	if err != nil {
		logger.Error(err)
		return err
	}
	entities := []scene.Entity{
		&proceduralEntity{triangles: ctx.Int("primitives"), rng: rng},
		floor,
		&scene.LightEntity{Light: light.NewPointLight(types.XYZ(0, 80, 0), types.XYZ(100, 100, 100))},
		&scene.LightEntity{Light: light.NewSkyLight(types.XYZ(1, 1, 1), types.XYZ(0.3, 0.5, 1)), Sky: true},
	}

	sc := scene.New(acc)
	start := time.Now()
	if err := sc.Load(entities); err != nil {
		logger.Error(err)
		return err
	}
	sc.PreProcess()
	logger.Noticef("scene ready in %d ms", time.Since(start).Nanoseconds()/1e6)

	rayCount := ctx.Int("rays")
	rays := makeRayBatch(rng, rayCount)

	if checkCount := ctx.Int("check"); checkCount > 0 {
		if err := crossCheck(sc, rays, checkCount); err != nil {
			logger.Error(err)
			return err
		}
		logger.Noticef("cross-checked %d rays against brute force", checkCount)
	}

	// Fire the batch from one worker per logical CPU; queries are read-only
	// after PreProcess so the workers share the scene without locks.
	workers := runtime.NumCPU()
	var wg sync.WaitGroup
	var hitCount int64
	start = time.Now()
	chunk := (len(rays) + workers - 1) / workers
	hits := make([]int64, workers)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(rays) {
			hi = len(rays)
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			isect := geometry.NewIntersection()
			for _, ray := range rays[lo:hi] {
				if sc.Intersect(ray, isect) {
					hits[w]++
				}
			}
		}(w, lo, hi)
	}
	wg.Wait()
	elapsed := time.Since(start)
	for _, h := range hits {
		hitCount += h
	}

	raysPerSec := float64(len(rays)) / elapsed.Seconds()
	logger.Noticef("traced %d rays in %d ms (%.0f rays/sec, %d hits) across %d workers",
		len(rays), elapsed.Nanoseconds()/1e6, raysPerSec, hitCount, workers)

	fmt.Print(sc.Stats())
	return nil
}

// Generate rays from random points on a sphere around the scene aimed at
// random interior targets.
func makeRayBatch(rng *rand.Rand, count int) []*geometry.Ray {
	rays := make([]*geometry.Ray, count)
	for i := range rays {
		theta := rng.Float64() * 2 * math.Pi
		z := rng.Float64()*2 - 1
		r := math.Sqrt(1 - z*z)
		origin := types.XYZ(
			float32(r*math.Cos(theta)),
			float32(r*math.Sin(theta)),
			float32(z),
		).Mul(benchSceneExtent * 2)

		target := types.XYZ(
			(rng.Float32()*2-1)*benchSceneExtent,
			(rng.Float32()*2-1)*benchSceneExtent,
			(rng.Float32()*2-1)*benchSceneExtent,
		)
		rays[i] = geometry.NewRay(origin, target.Sub(origin).Normalize())
	}
	return rays
}

// Compare the configured accelerator against the brute force reference for a
// sample of the ray batch.
func crossCheck(sc *scene.Scene, rays []*geometry.Ray, count int) error {
	const tolerance float32 = 1e-3

	bf := accel.NewBruteForce()
	bf.SetPrimitives(sc.Primitives())
	bf.Build()

	if count > len(rays) {
		count = len(rays)
	}

	accelHit := geometry.NewIntersection()
	bfHit := geometry.NewIntersection()
	for _, ray := range rays[:count] {
		gotHit := sc.Intersect(ray, accelHit)
		bfHit.Reset()
		wantHit := bf.Intersect(ray, bfHit)

		if gotHit != wantHit {
			return fmt.Errorf("accelerator/brute force hit disagreement for ray origin %v", ray.Origin)
		}
		if gotHit {
			diff := accelHit.T - bfHit.T
			if diff < -tolerance || diff > tolerance {
				return fmt.Errorf("accelerator hit distance %f disagrees with brute force %f", accelHit.T, bfHit.T)
			}
		}
	}
	return nil
}
