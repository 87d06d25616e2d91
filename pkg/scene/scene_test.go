package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/loaders"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

func spheres(t *testing.T, s *Scene) []*geometry.Sphere {
	t.Helper()
	var result []*geometry.Sphere
	for _, shape := range s.World.Shapes {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			t.Fatalf("Expected only spheres, got %T", shape)
		}
		result = append(result, sphere)
	}
	return result
}

func TestNewRandomScene(t *testing.T) {
	s := NewRandomScene(core.NewSeededSampler(42))
	all := spheres(t, s)

	// Ground, at most 22*22 small spheres, three large ones
	if len(all) < 4 || len(all) > 4+22*22 {
		t.Fatalf("Unexpected sphere count %d", len(all))
	}

	ground := all[0]
	if ground.Radius != 1000 || !ground.Center.Equals(core.NewVec3(0, -1000, 0)) {
		t.Errorf("Expected the ground sphere first, got %+v", ground)
	}

	large := all[len(all)-3:]
	wantKinds := []material.Kind{material.Dielectric, material.Lambertian, material.Metal}
	for i, sphere := range large {
		if sphere.Radius != 1 || sphere.Material.Kind != wantKinds[i] {
			t.Errorf("Large sphere %d: expected radius 1 %v, got %+v", i, wantKinds[i], sphere)
		}
	}

	clearing := core.NewVec3(4, 0.2, 0)
	for _, sphere := range all[1 : len(all)-3] {
		if sphere.Radius != 0.2 || sphere.Center.Y != 0.2 {
			t.Errorf("Small spheres should rest on the ground, got %+v", sphere)
		}
		if sphere.Center.Subtract(clearing).Length() <= 0.9 {
			t.Errorf("Sphere at %v intrudes on the clearing", sphere.Center)
		}
		switch sphere.Material.Kind {
		case material.Metal:
			if sphere.Material.Fuzz >= 0.5 || sphere.Material.Albedo.X < 0.5 {
				t.Errorf("Unexpected metal %v", sphere.Material)
			}
		case material.Dielectric:
			if sphere.Material.RefractiveIndex != 1.5 {
				t.Errorf("Unexpected glass %v", sphere.Material)
			}
		case material.Lambertian:
		default:
			t.Errorf("Unexpected material %v", sphere.Material)
		}
	}

	if s.CameraConfig.VFov != 20 || s.CameraConfig.FocusDistance != 10 || s.CameraConfig.Aperture != 0.1 {
		t.Errorf("Unexpected camera %+v", s.CameraConfig)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Random scene should validate, got %v", err)
	}
}

func TestNewRandomScene_Deterministic(t *testing.T) {
	a := spheres(t, NewRandomScene(core.NewSeededSampler(9)))
	b := spheres(t, NewRandomScene(core.NewSeededSampler(9)))

	if len(a) != len(b) {
		t.Fatalf("Same seed produced %d and %d spheres", len(a), len(b))
	}
	for i := range a {
		if *a[i] != *b[i] {
			t.Fatalf("Sphere %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestNewDefaultScene(t *testing.T) {
	s := NewDefaultScene()
	all := spheres(t, s)

	if len(all) != 5 {
		t.Fatalf("Expected 5 spheres, got %d", len(all))
	}
	hollow := 0
	for _, sphere := range all {
		if sphere.Radius < 0 && sphere.Material.Kind == material.Dielectric {
			hollow++
		}
	}
	if hollow != 1 {
		t.Errorf("Expected one negative-radius glass sphere, got %d", hollow)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Default scene should validate, got %v", err)
	}
}

func TestCameraOverrides(t *testing.T) {
	s := NewDefaultScene(renderer.CameraConfig{VFov: 60})
	if s.CameraConfig.VFov != 60 || s.Camera.Config().VFov != 60 {
		t.Errorf("Expected override applied to config and camera, got %+v", s.CameraConfig)
	}

	s.SetAspectRatio(2)
	width, height := s.ImageSize(400)
	if width != 400 || height != 200 {
		t.Errorf("Expected 400x200, got %dx%d", width, height)
	}
}

func TestDefaultImageSize(t *testing.T) {
	tests := []struct {
		name           string
		width, height  int
		expectedWidth  int
		expectedHeight int
	}{
		{"No size uses renderer default width", 0, 0, 400, 200},
		{"Width only follows aspect", 100, 0, 100, 50},
		{"Height only follows aspect", 0, 30, 60, 30},
		{"Both sizes taken as given", 64, 48, 64, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewDefaultScene()
			s.SetAspectRatio(2)
			s.SamplingConfig.Width = tt.width
			s.SamplingConfig.Height = tt.height

			width, height := s.DefaultImageSize()
			if width != tt.expectedWidth || height != tt.expectedHeight {
				t.Errorf("Expected %dx%d, got %dx%d", tt.expectedWidth, tt.expectedHeight, width, height)
			}
		})
	}
}

func TestSingleSphereScene_Render(t *testing.T) {
	s := NewSingleSphereScene(renderer.CameraConfig{AspectRatio: 1})
	rt := renderer.NewRaytracer(s, 9, 9)
	rt.MergeSamplingConfig(renderer.SamplingConfig{SamplesPerPixel: 8})
	img, _ := rt.RenderPass()

	center := img.RGBAAt(4, 4)
	corner := img.RGBAAt(0, 0)
	if center.B >= corner.B {
		t.Errorf("Grey sphere should be darker than the sky, got center=%v corner=%v", center, corner)
	}
}

func TestLookup(t *testing.T) {
	for _, name := range Names() {
		s, err := Lookup(name, core.NewSeededSampler(1))
		if err != nil {
			t.Errorf("Lookup(%q) failed: %v", name, err)
			continue
		}
		if s.World.Len() == 0 {
			t.Errorf("Scene %q is empty", name)
		}
	}

	if _, err := Lookup("cornell", nil); !errors.Is(err, loaders.ErrInvalidScene) {
		t.Errorf("Expected ErrInvalidScene for unknown scene, got %v", err)
	}
}

func TestNewFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glass.json")
	content := `{"description": "one glass ball",
		"camera": {"lookFrom": [0,0,2], "lookAt": [0,0,0]},
		"background": {"top": [0,0,0], "bottom": [1,1,1]},
		"spheres": [{"center": [0,0,0], "radius": 1, "material": {"type": "dielectric", "ior": 1.5}}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	s, err := Lookup(path, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.GetPrimitiveCount() != 1 {
		t.Errorf("Expected 1 sphere, got %d", s.GetPrimitiveCount())
	}
	top, _ := s.GetBackgroundColors()
	if !top.Equals(core.Vec3{}) {
		t.Errorf("Expected background override, got %v", top)
	}

	scenes, err := ListScenes(dir)
	if err != nil {
		t.Fatalf("ListScenes failed: %v", err)
	}
	last := scenes[len(scenes)-1]
	if len(scenes) != len(Names())+1 || last.Type != "file" || last.Description != "one glass ball" {
		t.Errorf("Expected built-ins plus one file scene, got %+v", scenes)
	}
}
