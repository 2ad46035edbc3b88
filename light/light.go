package light

import (
	"math"

	"github.com/prism-render/prism/geometry"
	"github.com/prism-render/prism/types"
)

// The Light interface is implemented by every light source the scene can
// importance-sample.
//
// Power is a scalar proxy for the light's total radiometric contribution and
// drives the scene's light-picking distribution. PickProb is assigned exactly
// once, after all lights are registered, when the scene builds that
// distribution. Le evaluates the radiance the light contributes along a ray
// that escaped the scene; it is zero for all non-environment lights.
type Light interface {
	Power() float32
	PickProb() float32
	SetPickProb(p float32)
	Le(ray *geometry.Ray) types.Vec3
}

// Common pick-probability storage embedded by all light variants.
type pickProb struct {
	prob float32
}

func (p *pickProb) PickProb() float32 {
	return p.prob
}

func (p *pickProb) SetPickProb(prob float32) {
	p.prob = prob
}

// Scalar intensity of an RGB radiance value.
func intensity(v types.Vec3) float32 {
	return (v[0] + v[1] + v[2]) / 3.0
}

// An isotropic point light emitting the given RGB intensity.
type PointLight struct {
	pickProb

	Pos       types.Vec3
	Intensity types.Vec3
}

func NewPointLight(pos, radiantIntensity types.Vec3) *PointLight {
	return &PointLight{Pos: pos, Intensity: radiantIntensity}
}

func (l *PointLight) Power() float32 {
	return 4.0 * math.Pi * intensity(l.Intensity)
}

func (l *PointLight) Le(ray *geometry.Ray) types.Vec3 {
	return types.Vec3{}
}

// A directional light: parallel rays from an infinitely distant source.
type DirectionalLight struct {
	pickProb

	// Direction the light travels, normalized.
	Dir      types.Vec3
	Radiance types.Vec3
}

func NewDirectionalLight(dir, radiance types.Vec3) *DirectionalLight {
	return &DirectionalLight{Dir: dir.Normalize(), Radiance: radiance}
}

func (l *DirectionalLight) Power() float32 {
	return intensity(l.Radiance)
}

func (l *DirectionalLight) Le(ray *geometry.Ray) types.Vec3 {
	return types.Vec3{}
}

// A gradient environment light evaluated for rays that leave the scene.
// Radiance blends from Horizon at the horizon to Zenith straight up.
type SkyLight struct {
	pickProb

	Horizon types.Vec3
	Zenith  types.Vec3
}

func NewSkyLight(horizon, zenith types.Vec3) *SkyLight {
	return &SkyLight{Horizon: horizon, Zenith: zenith}
}

func (l *SkyLight) Power() float32 {
	return math.Pi * intensity(l.Horizon.Add(l.Zenith).Mul(0.5))
}

func (l *SkyLight) Le(ray *geometry.Ray) types.Vec3 {
	t := 0.5 * (ray.Dir.Normalize()[1] + 1.0)
	return l.Horizon.Lerp(l.Zenith, t)
}
