package loaders

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

const threeSpheres = `{
  "name": "three",
  "camera": {"lookFrom": [0, 0, 1], "lookAt": [0, 0, -1], "vfov": 40, "aperture": 0.1},
  "sampling": {"samplesPerPixel": 8, "maxDepth": 5},
  "background": {"top": [0, 0, 1], "bottom": [1, 0, 0]},
  "spheres": [
    {"center": [0, -100.5, -1], "radius": 100, "material": {"type": "lambertian", "albedo": [0.8, 0.8, 0]}},
    {"center": [1, 0, -1], "radius": 0.5, "material": {"type": "metal", "albedo": [0.8, 0.6, 0.2], "fuzz": 2}},
    {"center": [-1, 0, -1], "radius": -0.45, "material": {"type": "Dielectric", "ior": 1.5}}
  ]
}`

func TestParseScene(t *testing.T) {
	scene, err := ParseScene(strings.NewReader(threeSpheres))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if scene.Name != "three" {
		t.Errorf("Expected name 'three', got %q", scene.Name)
	}
	if scene.Camera.VFov != 40 || scene.Camera.Aperture != 0.1 {
		t.Errorf("Unexpected camera %+v", scene.Camera)
	}
	if !scene.Camera.Up.Equals(core.NewVec3(0, 1, 0)) || scene.Camera.AspectRatio != 16.0/9.0 {
		t.Errorf("Expected default up vector and aspect ratio, got %+v", scene.Camera)
	}
	if scene.Sampling.SamplesPerPixel != 8 || scene.Sampling.MaxDepth != 5 {
		t.Errorf("Unexpected sampling %+v", scene.Sampling)
	}
	if scene.TopColor == nil || !scene.TopColor.Equals(core.NewVec3(0, 0, 1)) {
		t.Errorf("Expected blue sky top, got %v", scene.TopColor)
	}

	if len(scene.Spheres) != 3 {
		t.Fatalf("Expected 3 spheres, got %d", len(scene.Spheres))
	}
	metal := scene.Spheres[1].Material
	if metal.Kind != material.Metal || metal.Fuzz != 1 {
		t.Errorf("Expected metal with fuzz clamped to 1, got %v", metal)
	}
	glass := scene.Spheres[2]
	if glass.Material.Kind != material.Dielectric || glass.Radius != -0.45 {
		t.Errorf("Expected hollow glass sphere, got %+v", glass)
	}
}

func TestParseScene_ImageSizeSetsAspect(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
	}{
		{"Width and height", `{"camera": {"lookFrom": [0,0,1], "lookAt": [0,0,0]},
			"sampling": {"width": 300, "height": 200}}`, 1.5},
		{"Width only keeps default", `{"camera": {"lookFrom": [0,0,1], "lookAt": [0,0,0]},
			"sampling": {"width": 300}}`, 16.0 / 9.0},
		{"Explicit aspect wins", `{"camera": {"lookFrom": [0,0,1], "lookAt": [0,0,0], "aspectRatio": 2},
			"sampling": {"width": 300, "height": 200}}`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scene, err := ParseScene(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if scene.Camera.AspectRatio != tt.expected {
				t.Errorf("Expected aspect ratio %f, got %f", tt.expected, scene.Camera.AspectRatio)
			}
			if scene.Sampling.Width != 300 {
				t.Errorf("Expected sampling width 300, got %d", scene.Sampling.Width)
			}
		})
	}
}

func TestParseScene_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Not JSON", `spheres:`},
		{"Unknown field", `{"camera": {"lookFrom": [0,0,1], "lookAt": [0,0,0]}, "lights": []}`},
		{"Missing camera", `{"spheres": []}`},
		{"Camera without target", `{"camera": {"lookFrom": [0,0,1]}}`},
		{"Degenerate camera", `{"camera": {"lookFrom": [0,0,1], "lookAt": [0,0,1]}}`},
		{"Missing radius", `{"camera": {"lookFrom": [0,0,1], "lookAt": [0,0,0]},
			"spheres": [{"center": [0,0,0], "material": {"type": "lambertian", "albedo": [1,1,1]}}]}`},
		{"Missing material", `{"camera": {"lookFrom": [0,0,1], "lookAt": [0,0,0]},
			"spheres": [{"center": [0,0,0], "radius": 1}]}`},
		{"Unknown material", `{"camera": {"lookFrom": [0,0,1], "lookAt": [0,0,0]},
			"spheres": [{"center": [0,0,0], "radius": 1, "material": {"type": "emissive"}}]}`},
		{"Glass without ior", `{"camera": {"lookFrom": [0,0,1], "lookAt": [0,0,0]},
			"spheres": [{"center": [0,0,0], "radius": 1, "material": {"type": "dielectric"}}]}`},
		{"Metal without albedo", `{"camera": {"lookFrom": [0,0,1], "lookAt": [0,0,0]},
			"spheres": [{"center": [0,0,0], "radius": 1, "material": {"type": "metal"}}]}`},
		{"Negative width", `{"camera": {"lookFrom": [0,0,1], "lookAt": [0,0,0]}, "sampling": {"width": -4}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScene(strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidScene) {
				t.Errorf("Expected ErrInvalidScene, got %v", err)
			}
		})
	}
}

func TestLoadScene(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my_scene.json")
	content := `{"camera": {"lookFrom": [0,0,0], "lookAt": [0,0,-1]},
		"spheres": [{"center": [0,0,-1], "radius": 0.5, "material": {"type": "empty"}}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	scene, err := LoadScene(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if scene.Name != "my_scene" {
		t.Errorf("Expected name from file name, got %q", scene.Name)
	}
	if len(scene.Spheres) != 1 || scene.Spheres[0].Material.Kind != material.Empty {
		t.Errorf("Expected one empty-material sphere, got %+v", scene.Spheres)
	}
}

func TestLoadScene_BadPaths(t *testing.T) {
	for _, path := range []string{"", "scene.pbrt", "bad\x00.json"} {
		if _, err := LoadScene(path); err == nil {
			t.Errorf("Expected error for path %q", path)
		}
	}

	if _, err := LoadScene(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist for a missing file, got %v", err)
	}
}
