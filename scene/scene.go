// Package scene owns the primitive and light registries and exposes the
// intersect / sample-light surface the render loop drives.
package scene

import (
	"fmt"
	"sync"

	"github.com/prism-render/prism/accel"
	"github.com/prism-render/prism/geometry"
	"github.com/prism-render/prism/light"
	"github.com/prism-render/prism/log"
	"github.com/prism-render/prism/sampler"
	"github.com/prism-render/prism/types"
)

// Scene owns the flattened primitive buffer, the light registry and the
// light-picking distribution, and optionally holds one accelerator. It is
// populated during the load phase, finalized by PreProcess and strictly
// read-only afterwards: all query methods are safe for concurrent use once
// PreProcess has returned.
type Scene struct {
	logger log.Logger

	// May be nil, in which case intersection queries fall back to a
	// brute-force scan.
	accel accel.Accelerator

	primitives []geometry.Primitive
	lights     []light.Light
	sky        light.Light

	lightDist *sampler.Distribution1D

	bboxOnce sync.Once
	bbox     types.BBox
}

// Create a scene. A nil accelerator selects the brute-force operating mode;
// that is a legitimate, if slower, configuration rather than an error.
func New(acc accel.Accelerator) *Scene {
	return &Scene{
		logger: log.New("scene"),
		accel:  acc,
	}
}

// Append primitives to the scene buffer. Only valid during the load phase.
func (s *Scene) AddPrimitives(prims ...geometry.Primitive) {
	s.primitives = append(s.primitives, prims...)
}

// Register a light. Only valid during the load phase.
func (s *Scene) AddLight(l light.Light) {
	s.lights = append(s.lights, l)
}

// Register the environment light evaluated for rays that escape the scene.
// The light also joins the regular registry so it is importance-sampled
// like any other source.
func (s *Scene) SetSkyLight(l light.Light) {
	s.sky = l
	s.AddLight(l)
}

// Get the flattened primitive buffer.
func (s *Scene) Primitives() []geometry.Primitive {
	return s.primitives
}

// Get the registered lights.
func (s *Scene) Lights() []light.Light {
	return s.lights
}

// Run every entity's fill step in order, then build the light-picking
// distribution. Entity order determines primitive insertion order but never
// affects intersection results.
func (s *Scene) Load(entities []Entity) error {
	for _, ent := range entities {
		if err := ent.FillScene(s); err != nil {
			return fmt.Errorf("scene load: %v", err)
		}
	}

	s.buildLightDistribution()

	s.logger.Noticef("loaded %d primitives, %d lights from %d entities", len(s.primitives), len(s.lights), len(entities))
	return nil
}

// Bind the primitive buffer to the accelerator and build its index. No-op in
// brute-force mode. Queries must not start before PreProcess returns; after
// it returns the scene is immutable.
func (s *Scene) PreProcess() {
	if s.accel == nil {
		s.logger.Notice("no accelerator configured, using brute force intersection")
		return
	}

	s.accel.SetPrimitives(s.primitives)
	s.accel.Build()
}

// Find the nearest surface hit along the ray. With a hit record the globally
// closest hit is reported; with a nil record the call degenerates to an
// existence test that honors the ray's parametric range.
func (s *Scene) Intersect(ray *geometry.Ray, isect *geometry.Intersection) bool {
	if isect != nil {
		isect.Reset()
	}

	if s.accel == nil {
		return s.bfIntersect(ray, isect)
	}
	return s.accel.Intersect(ray, isect)
}

// Brute force scan over the primitive buffer keeping the closest hit.
func (s *Scene) bfIntersect(ray *geometry.Ray, isect *geometry.Intersection) bool {
	if isect == nil {
		for _, prim := range s.primitives {
			if prim.Intersect(ray, nil) {
				return true
			}
		}
		return false
	}

	for _, prim := range s.primitives {
		prim.Intersect(ray, isect)
	}
	return isect.T < ray.TMax && isect.Prim != nil
}

// Pick a light with probability proportional to its power. u must lie in
// [0, 1]. Returns false when the scene has no lights or every light has zero
// power.
func (s *Scene) SampleLight(u float32) (light.Light, float32, bool) {
	if s.lightDist == nil {
		return nil, 0, false
	}

	index, pdf := s.lightDist.SampleDiscrete(u)
	if index < 0 || index >= len(s.lights) || pdf == 0 {
		return nil, 0, false
	}
	return s.lights[index], pdf, true
}

// Get the precomputed pick probability of light i. Requires the light
// distribution to have been built.
func (s *Scene) LightPdf(i int) float32 {
	if s.lightDist == nil {
		return 0
	}
	return s.lightDist.Property(i)
}

// Evaluate the environment light for a ray that left the scene. Zero when no
// sky light is configured. This is the fallback for rays Intersect reports
// no hit for.
func (s *Scene) Le(ray *geometry.Ray) types.Vec3 {
	if s.sky == nil {
		return types.Vec3{}
	}
	return s.sky.Le(ray)
}

// Get the scene bounding box: the accelerator's box when one is configured,
// otherwise the union of all primitive boxes computed once and cached.
func (s *Scene) BBox() types.BBox {
	if s.accel != nil {
		return s.accel.BBox()
	}

	s.bboxOnce.Do(func() {
		s.bbox = types.NewBBox()
		for _, prim := range s.primitives {
			s.bbox = s.bbox.Union(prim.BBox())
		}
	})
	return s.bbox
}

// Build the light-picking distribution over the registered lights' power and
// write each light's normalized pick probability back onto the light. No-op
// when the scene has no lights.
func (s *Scene) buildLightDistribution() {
	if len(s.lights) == 0 {
		return
	}

	weights := make([]float32, len(s.lights))
	for i, l := range s.lights {
		weights[i] = l.Power()
	}

	s.lightDist = sampler.NewDistribution1D(weights)
	for i, l := range s.lights {
		l.SetPickProb(s.lightDist.Property(i))
	}
}
