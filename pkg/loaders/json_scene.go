package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// ErrInvalidScene is returned for scene files that cannot be turned into a scene
var ErrInvalidScene = errors.New("invalid scene")

// SceneFile is a scene description after parsing and validation
type SceneFile struct {
	Name        string
	Description string
	Camera      renderer.CameraConfig
	Sampling    renderer.SamplingConfig
	TopColor    *core.Vec3 // Optional sky override
	BottomColor *core.Vec3
	Spheres     []*geometry.Sphere
}

// vec3JSON is a vector written as [x, y, z]
type vec3JSON [3]float64

func (v vec3JSON) vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

type sceneJSON struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Camera      *cameraJSON     `json:"camera"`
	Sampling    samplingJSON    `json:"sampling"`
	Background  *backgroundJSON `json:"background"`
	Spheres     []sphereJSON    `json:"spheres"`
}

type cameraJSON struct {
	LookFrom      *vec3JSON `json:"lookFrom"`
	LookAt        *vec3JSON `json:"lookAt"`
	Up            *vec3JSON `json:"up"`
	VFov          float64   `json:"vfov"`
	AspectRatio   float64   `json:"aspectRatio"`
	Aperture      float64   `json:"aperture"`
	FocusDistance float64   `json:"focusDistance"`
}

type samplingJSON struct {
	Width           int `json:"width"`
	Height          int `json:"height"`
	SamplesPerPixel int `json:"samplesPerPixel"`
	MaxDepth        int `json:"maxDepth"`
}

type backgroundJSON struct {
	Top    vec3JSON `json:"top"`
	Bottom vec3JSON `json:"bottom"`
}

type sphereJSON struct {
	Center   *vec3JSON     `json:"center"`
	Radius   *float64      `json:"radius"`
	Material *materialJSON `json:"material"`
}

type materialJSON struct {
	Type   string    `json:"type"`
	Albedo *vec3JSON `json:"albedo"`
	Fuzz   float64   `json:"fuzz"`
	IOR    float64   `json:"ior"`
}

// ParseScene reads a JSON scene description
func ParseScene(reader io.Reader) (*SceneFile, error) {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	var doc sceneJSON
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}

	if doc.Camera == nil {
		return nil, fmt.Errorf("%w: missing camera", ErrInvalidScene)
	}
	if doc.Sampling.Width < 0 || doc.Sampling.Height < 0 {
		return nil, fmt.Errorf("%w: image size must not be negative, got %dx%d",
			ErrInvalidScene, doc.Sampling.Width, doc.Sampling.Height)
	}

	// A scene that fixes both image dimensions implies the camera aspect ratio
	aspectRatio := 16.0 / 9.0
	if doc.Sampling.Width > 0 && doc.Sampling.Height > 0 {
		aspectRatio = float64(doc.Sampling.Width) / float64(doc.Sampling.Height)
	}

	camera, err := doc.Camera.config(aspectRatio)
	if err != nil {
		return nil, err
	}

	scene := &SceneFile{
		Name:        doc.Name,
		Description: doc.Description,
		Camera:      camera,
		Sampling: renderer.SamplingConfig{
			Width:           doc.Sampling.Width,
			Height:          doc.Sampling.Height,
			SamplesPerPixel: doc.Sampling.SamplesPerPixel,
			MaxDepth:        doc.Sampling.MaxDepth,
		},
	}

	if doc.Background != nil {
		top, bottom := doc.Background.Top.vec3(), doc.Background.Bottom.vec3()
		scene.TopColor, scene.BottomColor = &top, &bottom
	}

	for i, s := range doc.Spheres {
		sphere, err := s.sphere()
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		scene.Spheres = append(scene.Spheres, sphere)
	}

	return scene, nil
}

// LoadScene loads and parses a JSON scene file
func LoadScene(filename string) (*SceneFile, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	scene, err := ParseScene(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if scene.Name == "" {
		scene.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return scene, nil
}

// config converts the camera block, filling in the up vector, field of view
// and aspect ratio when they are omitted
func (c *cameraJSON) config(defaultAspectRatio float64) (renderer.CameraConfig, error) {
	if c.LookFrom == nil || c.LookAt == nil {
		return renderer.CameraConfig{}, fmt.Errorf("%w: camera needs lookFrom and lookAt", ErrInvalidScene)
	}

	config := renderer.CameraConfig{
		LookFrom:      c.LookFrom.vec3(),
		LookAt:        c.LookAt.vec3(),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90,
		AspectRatio:   defaultAspectRatio,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	}
	if c.Up != nil {
		config.Up = c.Up.vec3()
	}
	if c.VFov != 0 {
		config.VFov = c.VFov
	}
	if c.AspectRatio != 0 {
		config.AspectRatio = c.AspectRatio
	}

	if err := config.Validate(); err != nil {
		return renderer.CameraConfig{}, fmt.Errorf("%w: camera: %w", ErrInvalidScene, err)
	}
	return config, nil
}

func (s sphereJSON) sphere() (*geometry.Sphere, error) {
	if s.Center == nil {
		return nil, fmt.Errorf("%w: missing center", ErrInvalidScene)
	}
	if s.Radius == nil || *s.Radius == 0 {
		return nil, fmt.Errorf("%w: missing or zero radius", ErrInvalidScene)
	}
	if s.Material == nil {
		return nil, fmt.Errorf("%w: missing material", ErrInvalidScene)
	}

	mat, err := s.Material.material()
	if err != nil {
		return nil, err
	}
	return geometry.NewSphere(s.Center.vec3(), *s.Radius, mat), nil
}

func (m materialJSON) material() (material.Material, error) {
	switch strings.ToLower(m.Type) {
	case "lambertian":
		if m.Albedo == nil {
			return material.Material{}, fmt.Errorf("%w: lambertian needs an albedo", ErrInvalidScene)
		}
		return material.NewLambertian(m.Albedo.vec3()), nil
	case "metal":
		if m.Albedo == nil {
			return material.Material{}, fmt.Errorf("%w: metal needs an albedo", ErrInvalidScene)
		}
		return material.NewMetal(m.Albedo.vec3(), m.Fuzz), nil
	case "dielectric":
		if m.IOR <= 0 {
			return material.Material{}, fmt.Errorf("%w: dielectric needs a positive ior, got %f", ErrInvalidScene, m.IOR)
		}
		return material.NewDielectric(m.IOR), nil
	case "empty":
		return material.Material{}, nil
	default:
		return material.Material{}, fmt.Errorf("%w: unknown material type %q", ErrInvalidScene, m.Type)
	}
}

// validateFilePath rejects paths that cannot name a scene file
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}
	if len(filename) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}
	if !strings.EqualFold(filepath.Ext(filename), ".json") {
		return fmt.Errorf("invalid file type: only .json scene files are allowed")
	}
	return nil
}
