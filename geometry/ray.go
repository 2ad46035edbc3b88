package geometry

import (
	"math"

	"github.com/prism-render/prism/types"
)

// Intersection tests reject hits closer than this to avoid self-intersection
// when rays are spawned off surfaces.
const RayEpsilon float32 = 1e-4

// A ray with a valid parametric range [TMin, TMax]. InvDir caches the
// component-wise reciprocal of Dir for bounding box slab tests.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3
	InvDir types.Vec3

	TMin float32
	TMax float32
}

// Create a ray with an unbounded parametric range.
func NewRay(origin, dir types.Vec3) *Ray {
	return NewRayRange(origin, dir, RayEpsilon, float32(math.Inf(1)))
}

// Create a ray with an explicit parametric range. Shadow rays bound TMax to
// the distance of the light sample so occluders behind the light are ignored.
func NewRayRange(origin, dir types.Vec3, tMin, tMax float32) *Ray {
	return &Ray{
		Origin: origin,
		Dir:    dir,
		InvDir: dir.Inverse(),
		TMin:   tMin,
		TMax:   tMax,
	}
}

// Get the point at parametric distance t along the ray.
func (r *Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}
