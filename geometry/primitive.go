package geometry

import (
	"math"

	"github.com/prism-render/prism/types"
)

// The caller-owned result of an intersection test. T carries the closest
// parametric distance found so far; primitives tested in any order only
// overwrite the record when they find a strictly closer hit, so the closest
// hit survives regardless of test order.
type Intersection struct {
	T      float32
	Point  types.Vec3
	Normal types.Vec3
	UV     types.Vec2

	// The primitive that produced the hit; nil when nothing has been hit.
	Prim Primitive

	// Stable identifier of the hit face within its source mesh.
	PrimID uint32
}

// Create a hit record in the no-hit state.
func NewIntersection() *Intersection {
	isect := &Intersection{}
	isect.Reset()
	return isect
}

// Restore the no-hit state: distance at +Inf, no primitive.
func (isect *Intersection) Reset() {
	isect.T = float32(math.Inf(1))
	isect.Prim = nil
	isect.PrimID = 0
}

// Returns true if the record holds a hit.
func (isect *Intersection) Hit() bool {
	return isect.Prim != nil
}

// The Primitive interface is implemented by every atomic piece of renderable
// geometry that the scene registry and the accelerators operate on.
//
// Intersect tests the ray against the primitive within [ray.TMin, ray.TMax].
// When isect is non-nil the record is updated in place only if the new hit is
// strictly closer than the record's current distance. When isect is nil the
// call is a pure existence test (shadow rays) that may report any in-range
// hit without ordering guarantees.
type Primitive interface {
	Intersect(ray *Ray, isect *Intersection) bool
	BBox() types.BBox
	Center() types.Vec3
}
