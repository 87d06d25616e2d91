package integrator

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
)

// ShadowEpsilon is the minimum hit distance, keeping scattered rays from
// re-hitting the surface they start on
const ShadowEpsilon = 0.001

// PathTracingIntegrator estimates radiance by following a single scattered path
// per camera ray until it escapes, is absorbed, or runs out of bounces
type PathTracingIntegrator struct {
	maxDepth    int
	topColor    core.Vec3 // Sky at the zenith
	bottomColor core.Vec3 // Sky at the horizon and below
}

// NewPathTracingIntegrator creates a path tracer with the default white-to-blue sky
func NewPathTracingIntegrator(maxDepth int) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		maxDepth:    maxDepth,
		topColor:    core.NewVec3(0.5, 0.7, 1.0),
		bottomColor: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// WithBackground returns a copy of the integrator using a different sky gradient
func (pt *PathTracingIntegrator) WithBackground(topColor, bottomColor core.Vec3) *PathTracingIntegrator {
	clone := *pt
	clone.topColor = topColor
	clone.bottomColor = bottomColor
	return &clone
}

// MaxDepth returns the bounce budget given to every camera ray
func (pt *PathTracingIntegrator) MaxDepth() int {
	return pt.maxDepth
}

// RayColor computes the color seen along a camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Vec3 {
	return pt.rayColor(ray, world, sampler, pt.maxDepth)
}

// rayColor returns the radiance along r with depth bounces remaining
func (pt *PathTracingIntegrator) rayColor(r core.Ray, world geometry.Shape, sampler core.Sampler, depth int) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := world.Hit(r, ShadowEpsilon, math.Inf(1))
	if !isHit {
		return pt.backgroundGradient(r)
	}

	scatter, didScatter := hit.Material.Scatter(r, *hit, sampler)
	if !didScatter {
		return core.Vec3{}
	}

	return scatter.Attenuation.MultiplyVec(pt.rayColor(scatter.Scattered, world, sampler, depth-1))
}

// backgroundGradient returns a gradient color based on ray direction
func (pt *PathTracingIntegrator) backgroundGradient(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Normalize()

	// Use the y-component to create a gradient (map from -1,1 to 0,1)
	t := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-t)*bottom + t*top
	return pt.bottomColor.Multiply(1.0 - t).Add(pt.topColor.Multiply(t))
}
