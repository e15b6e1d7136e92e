package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// ShadowAcneEpsilon is the minimum hit distance; it keeps a scattered ray from
// re-hitting the surface it left because of floating point error
const ShadowAcneEpsilon = 0.001

var (
	// DefaultTopColor is the sky color straight up
	DefaultTopColor = core.NewVec3(0.5, 0.7, 1.0)
	// DefaultBottomColor is the sky color straight down
	DefaultBottomColor = core.NewVec3(1.0, 1.0, 1.0)
)

// PathTracingIntegrator implements unidirectional path tracing against a
// gradient sky, the only light source
type PathTracingIntegrator struct {
	TopColor    core.Vec3
	BottomColor core.Vec3
}

// NewPathTracingIntegrator creates a path tracer with the default blue-to-white sky
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{
		TopColor:    DefaultTopColor,
		BottomColor: DefaultBottomColor,
	}
}

// RayColor computes the color for a single ray. Bounces are followed in a loop
// with a running throughput; maxDepth is the only bound on path length.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler, maxDepth int) core.Vec3 {
	throughput := core.NewVec3(1, 1, 1)

	for depth := maxDepth; depth > 0; depth-- {
		hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
		if !isHit {
			return throughput.MultiplyVec(pt.BackgroundGradient(ray))
		}

		scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
		if !didScatter {
			// Material absorbed the ray
			return core.Vec3{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}

	// Bounce budget exhausted, no more light is gathered
	return core.Vec3{}
}

// BackgroundGradient returns a gradient color based on ray direction
func (pt *PathTracingIntegrator) BackgroundGradient(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return pt.BottomColor.Lerp(pt.TopColor, t)
}
