package types

import "math"

// An axis-aligned bounding box. The zero-volume "empty" box is represented
// by the canonical sentinel returned by NewBBox: min at +MaxFloat32 and max
// at -MaxFloat32 so that any union absorbs it.
type BBox struct {
	Min Vec3
	Max Vec3
}

// Create an empty bounding box.
func NewBBox() BBox {
	return BBox{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Create a bounding box enclosing a set of points.
func BBoxFromPoints(points ...Vec3) BBox {
	box := NewBBox()
	for _, p := range points {
		box = box.Extend(p)
	}
	return box
}

// Returns true if the box is the empty sentinel.
func (b BBox) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Calculate the smallest box containing both boxes. Union with the empty
// sentinel is the identity operation; a union never shrinks either operand.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		Min: MinVec3(b.Min, other.Min),
		Max: MaxVec3(b.Max, other.Max),
	}
}

// Extend the box to include a point.
func (b BBox) Extend(p Vec3) BBox {
	return BBox{
		Min: MinVec3(b.Min, p),
		Max: MaxVec3(b.Max, p),
	}
}

// Get the center of the box.
func (b BBox) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the box extents along each axis.
func (b BBox) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Calculate the surface area of the box. The empty sentinel has zero area.
func (b BBox) SurfaceArea() float32 {
	if b.IsEmpty() {
		return 0
	}
	side := b.Size()
	return 2.0 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}

// Get the axis (0=X, 1=Y, 2=Z) with the longest extent.
func (b BBox) LongestAxis() int {
	side := b.Size()
	if side[0] > side[1] && side[0] > side[2] {
		return 0
	}
	if side[1] > side[2] {
		return 1
	}
	return 2
}

// Slab test against a ray given as origin plus precomputed inverse direction.
// Returns true when the ray overlaps the box within [tMin, tMax].
func (b BBox) Intersects(origin, invDir Vec3, tMin, tMax float32) bool {
	for axis := 0; axis < 3; axis++ {
		t1 := (b.Min[axis] - origin[axis]) * invDir[axis]
		t2 := (b.Max[axis] - origin[axis]) * invDir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}
