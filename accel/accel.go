// Package accel provides the pluggable spatial acceleration structures used
// by the scene to answer ray-intersection queries.
package accel

import (
	"github.com/prism-render/prism/geometry"
	"github.com/prism-render/prism/types"
)

// The Accelerator interface is implemented by every spatial index variant.
//
// SetPrimitives binds, without copying, the primitive set the index operates
// on and must be called before Build. Build constructs the internal index;
// calling it again rebuilds from scratch. After Build returns the index is
// immutable and Intersect may be called concurrently from any number of
// goroutines.
//
// Intersect follows the geometry.Primitive contract composed over the whole
// set: with a hit record it reports the globally closest hit, without one it
// may short-circuit on the first in-range hit.
type Accelerator interface {
	SetPrimitives(prims []geometry.Primitive)
	Build()
	Intersect(ray *geometry.Ray, isect *geometry.Intersection) bool
	BBox() types.BBox
}
