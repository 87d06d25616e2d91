package integrator

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms.
// Implementations must be safe for concurrent use as long as each goroutine
// passes its own sampler.
type Integrator interface {
	RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler) core.Vec3
}
