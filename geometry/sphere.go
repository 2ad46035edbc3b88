package geometry

import (
	"math"

	"github.com/prism-render/prism/types"
)

// An analytic sphere primitive.
type Sphere struct {
	Origin types.Vec3
	Radius float32

	bbox types.BBox
}

// Create a sphere primitive.
func NewSphere(origin types.Vec3, radius float32) *Sphere {
	half := types.Vec3{radius, radius, radius}
	return &Sphere{
		Origin: origin,
		Radius: radius,
		bbox: types.BBox{
			Min: origin.Sub(half),
			Max: origin.Add(half),
		},
	}
}

// Test the ray against the sphere, reporting the nearest in-range root.
func (s *Sphere) Intersect(ray *Ray, isect *Intersection) bool {
	oc := ray.Origin.Sub(s.Origin)
	a := ray.Dir.Dot(ray.Dir)
	halfB := oc.Dot(ray.Dir)
	c := oc.Dot(oc) - s.Radius*s.Radius

	disc := halfB*halfB - a*c
	if disc < 0 {
		return false
	}
	sqrtDisc := float32(math.Sqrt(float64(disc)))

	// Prefer the near root; fall back to the far one when the origin is
	// inside the sphere.
	root := (-halfB - sqrtDisc) / a
	if root < ray.TMin || root > ray.TMax {
		root = (-halfB + sqrtDisc) / a
		if root < ray.TMin || root > ray.TMax {
			return false
		}
	}

	if isect == nil {
		return true
	}
	if root >= isect.T {
		return false
	}

	isect.T = root
	isect.Point = ray.At(root)
	isect.Normal = isect.Point.Sub(s.Origin).Mul(1.0 / s.Radius)
	isect.UV = types.Vec2{}
	isect.Prim = s
	isect.PrimID = 0
	return true
}

// Get the sphere bounding box.
func (s *Sphere) BBox() types.BBox {
	return s.bbox
}

// Get the sphere center.
func (s *Sphere) Center() types.Vec3 {
	return s.Origin
}
