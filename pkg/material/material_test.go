package material

import (
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

func TestEmptyMaterial_Absorbs(t *testing.T) {
	var empty Material
	if empty.Kind != Empty {
		t.Fatalf("Zero value material should be Empty, got %v", empty.Kind)
	}

	hit := HitRecord{Normal: core.NewVec3(0, 1, 0), FrontFace: true}
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	sampler := core.NewSequenceSampler(0.5)

	if _, scattered := empty.Scatter(ray, hit, sampler); scattered {
		t.Error("Empty material should absorb every ray")
	}
	if sampler.Draws() != 0 {
		t.Errorf("Absorption should not consume random numbers, got %d draws", sampler.Draws())
	}
}

func TestKind_String(t *testing.T) {
	tests := map[Kind]string{
		Empty:      "empty",
		Lambertian: "lambertian",
		Metal:      "metal",
		Dielectric: "dielectric",
		Kind(42):   "kind(42)",
	}
	for kind, expected := range tests {
		if kind.String() != expected {
			t.Errorf("Expected %q, got %q", expected, kind.String())
		}
	}
}

func TestHitRecord_SetFaceNormal(t *testing.T) {
	outward := core.NewVec3(0, 0, 1)

	tests := []struct {
		name           string
		direction      core.Vec3
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{"Ray against normal", core.NewVec3(0, 0, -1), true, outward},
		{"Ray along normal", core.NewVec3(0, 0, 1), false, outward.Negate()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hit HitRecord
			ray := core.NewRay(core.NewVec3(0, 0, 0), tt.direction)
			hit.SetFaceNormal(ray, outward)

			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected front face %t, got %t", tt.expectedFront, hit.FrontFace)
			}
			if !hit.Normal.Equals(tt.expectedNormal) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
			if ray.Direction.Dot(hit.Normal) > 0 {
				t.Error("Stored normal must oppose the incoming ray")
			}
		})
	}
}
