package accel

import (
	"github.com/prism-render/prism/geometry"
	"github.com/prism-render/prism/types"
)

// BruteForce is the reference accelerator: a linear scan over the bound
// primitive set. It is the correctness baseline the tree variants are
// cross-checked against.
type BruteForce struct {
	prims []geometry.Primitive
	bbox  types.BBox
}

// Create a brute-force accelerator.
func NewBruteForce() *BruteForce {
	return &BruteForce{bbox: types.NewBBox()}
}

// Bind the primitive set. The slice is referenced, not copied.
func (bf *BruteForce) SetPrimitives(prims []geometry.Primitive) {
	bf.prims = prims
}

// Build only aggregates the bounding box; there is no index to construct.
func (bf *BruteForce) Build() {
	bf.bbox = types.NewBBox()
	for _, prim := range bf.prims {
		bf.bbox = bf.bbox.Union(prim.BBox())
	}
}

// Scan every primitive keeping the closest hit, or short-circuit on the
// first in-range hit when no record is supplied.
func (bf *BruteForce) Intersect(ray *geometry.Ray, isect *geometry.Intersection) bool {
	if isect == nil {
		for _, prim := range bf.prims {
			if prim.Intersect(ray, nil) {
				return true
			}
		}
		return false
	}

	hit := false
	for _, prim := range bf.prims {
		if prim.Intersect(ray, isect) {
			hit = true
		}
	}
	return hit
}

// Get the union of all bound primitive boxes. Empty sentinel for an empty
// primitive set.
func (bf *BruteForce) BBox() types.BBox {
	return bf.bbox
}
