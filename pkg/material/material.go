package material

import (
	"fmt"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Kind identifies which scattering model a Material uses
type Kind int

const (
	// Empty absorbs every ray. It is the zero value of Material.
	Empty Kind = iota
	Lambertian
	Metal
	Dielectric
)

// String returns the lower-case name used in scene files and logs
func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Lambertian:
		return "lambertian"
	case Metal:
		return "metal"
	case Dielectric:
		return "dielectric"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Material is a small immutable description of how a surface scatters light.
// Only the fields relevant to Kind are meaningful; materials are shared by value.
type Material struct {
	Kind            Kind
	Albedo          core.Vec3 // Lambertian and Metal reflectance
	Fuzz            float64   // Metal roughness in [0, 1]
	RefractiveIndex float64   // Dielectric index of refraction
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// NewLambertian creates a perfectly diffuse material
func NewLambertian(albedo core.Vec3) Material {
	return Material{Kind: Lambertian, Albedo: albedo}
}

// NewMetal creates a metal material; fuzz is clamped to [0, 1]
func NewMetal(albedo core.Vec3, fuzz float64) Material {
	return Material{Kind: Metal, Albedo: albedo, Fuzz: max(0.0, min(1.0, fuzz))}
}

// NewDielectric creates a clear refractive material such as glass (1.5) or water (1.33)
func NewDielectric(refractiveIndex float64) Material {
	return Material{Kind: Dielectric, RefractiveIndex: refractiveIndex}
}

// Scatter computes the outgoing ray and attenuation for a ray hitting a surface with this
// material. It returns false when the ray is absorbed.
func (m Material) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	switch m.Kind {
	case Lambertian:
		return m.scatterLambertian(hit, sampler)
	case Metal:
		return m.scatterMetal(rayIn, hit, sampler)
	case Dielectric:
		return m.scatterDielectric(rayIn, hit, sampler)
	default:
		return ScatterResult{}, false
	}
}

// String describes the material for logs
func (m Material) String() string {
	switch m.Kind {
	case Lambertian:
		return fmt.Sprintf("lambertian(albedo=%v)", m.Albedo)
	case Metal:
		return fmt.Sprintf("metal(albedo=%v, fuzz=%.2f)", m.Albedo, m.Fuzz)
	case Dielectric:
		return fmt.Sprintf("dielectric(ior=%.2f)", m.RefractiveIndex)
	default:
		return m.Kind.String()
	}
}
