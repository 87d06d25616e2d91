package scene

import (
	"fmt"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *renderer.Camera
	CameraConfig   renderer.CameraConfig
	World          *geometry.HittableList // Objects in the scene
	SamplingConfig renderer.SamplingConfig
	TopColor       core.Vec3 // Sky color straight up
	BottomColor    core.Vec3 // Sky color at and below the horizon
}

// NewScene builds a scene from a camera configuration and a list of shapes,
// using the white-to-blue sky
func NewScene(cameraConfig renderer.CameraConfig, samplingConfig renderer.SamplingConfig, shapes ...geometry.Shape) *Scene {
	return &Scene{
		Camera:         renderer.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		World:          geometry.NewHittableList(shapes...),
		SamplingConfig: samplingConfig,
		TopColor:       core.NewVec3(0.5, 0.7, 1.0),
		BottomColor:    core.NewVec3(1.0, 1.0, 1.0),
	}
}

// AddSphere adds a sphere to the scene
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) {
	s.World.Add(geometry.NewSphere(center, radius, mat))
}

// SetAspectRatio rebuilds the camera for a different image shape
func (s *Scene) SetAspectRatio(aspectRatio float64) {
	s.CameraConfig.AspectRatio = aspectRatio
	s.Camera = renderer.NewCamera(s.CameraConfig)
}

// ImageSize returns the image dimensions for the given width, keeping the camera's aspect ratio
func (s *Scene) ImageSize(width int) (int, int) {
	// The epsilon keeps exact ratios such as 16/(16/9) from truncating one pixel short
	height := int(float64(width)/s.CameraConfig.AspectRatio + 1e-9)
	return width, max(1, height)
}

// DefaultImageSize returns the image size asked for by the scene's sampling configuration.
// A missing dimension follows the camera aspect ratio; with neither set the default width is used.
func (s *Scene) DefaultImageSize() (int, int) {
	width, height := s.SamplingConfig.Width, s.SamplingConfig.Height
	switch {
	case width > 0 && height > 0:
		return width, height
	case width > 0:
		return s.ImageSize(width)
	case height > 0:
		return max(1, int(float64(height)*s.CameraConfig.AspectRatio+1e-9)), height
	default:
		return s.ImageSize(renderer.DefaultSamplingConfig().Width)
	}
}

// Validate checks the camera and sampling configuration
func (s *Scene) Validate() error {
	if err := s.CameraConfig.Validate(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	if err := renderer.MergeSamplingConfig(renderer.DefaultSamplingConfig(), s.SamplingConfig).Validate(); err != nil {
		return fmt.Errorf("sampling: %w", err)
	}
	return nil
}

// GetCamera implements renderer.Scene
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetWorld implements renderer.Scene
func (s *Scene) GetWorld() geometry.Shape {
	return s.World
}

// GetBackgroundColors implements renderer.Scene
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// GetSamplingConfig implements renderer.Scene
func (s *Scene) GetSamplingConfig() renderer.SamplingConfig {
	return s.SamplingConfig
}

// GetPrimitiveCount returns the number of objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}
