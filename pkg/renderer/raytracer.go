package renderer

import (
	"image"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
)

// Scene interface to avoid circular imports
type Scene interface {
	GetCamera() *Camera
	GetWorld() geometry.Shape
	GetBackgroundColors() (topColor, bottomColor core.Vec3)
	GetSamplingConfig() SamplingConfig
}

// Raytracer renders pixels of a scene. It holds no per-render state, so one
// Raytracer can serve several goroutines that each bring their own sampler.
type Raytracer struct {
	scene      Scene
	width      int
	height     int
	config     SamplingConfig
	integrator integrator.Integrator
	seed       int64
}

// NewRaytracer creates a new raytracer for an image of the given size, using the
// scene's sampling configuration on top of the defaults
func NewRaytracer(scene Scene, width, height int) *Raytracer {
	config := MergeSamplingConfig(DefaultSamplingConfig(), scene.GetSamplingConfig())
	config.Width = width
	config.Height = height

	rt := &Raytracer{
		scene:  scene,
		width:  width,
		height: height,
		seed:   42,
	}
	rt.SetSamplingConfig(config)
	return rt
}

// SetSamplingConfig updates the sampling configuration
func (rt *Raytracer) SetSamplingConfig(config SamplingConfig) {
	rt.config = config
	topColor, bottomColor := rt.scene.GetBackgroundColors()
	rt.integrator = integrator.NewPathTracingIntegrator(config.MaxDepth).WithBackground(topColor, bottomColor)
}

// MergeSamplingConfig applies the positive fields of override to the current configuration
func (rt *Raytracer) MergeSamplingConfig(override SamplingConfig) {
	rt.SetSamplingConfig(MergeSamplingConfig(rt.config, override))
}

// SetSeed changes the seed used by RenderPass
func (rt *Raytracer) SetSeed(seed int64) {
	rt.seed = seed
}

// GetSamplingConfig returns the active sampling configuration
func (rt *Raytracer) GetSamplingConfig() SamplingConfig {
	return rt.config
}

// samplePixel traces one jittered camera ray through pixel (i, j) where j is an
// image row counted from the top
func (rt *Raytracer) samplePixel(camera *Camera, i, j int, sampler core.Sampler) core.Vec3 {
	// Image rows go down, camera t goes up
	row := rt.height - 1 - j

	jitter := sampler.Get2D()
	s := (float64(i) + jitter.X) / float64(max(1, rt.width-1))
	t := (float64(row) + jitter.Y) / float64(max(1, rt.height-1))

	ray := camera.GetRay(s, t, sampler)
	return rt.integrator.RayColor(ray, rt.scene.GetWorld(), sampler)
}

// RenderBounds renders pixels within the specified bounds into pixelStats until every
// pixel holds targetSamples samples. Each pixel is written only by the caller that owns
// its bounds, so disjoint bounds may be rendered concurrently.
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, pixelStats [][]PixelStats, sampler core.Sampler, targetSamples int) RenderStats {
	camera := rt.scene.GetCamera()
	stats := newRenderStats(bounds.Dx()*bounds.Dy(), targetSamples)

	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			ps := &pixelStats[j][i]
			initialSampleCount := ps.SampleCount
			for ps.SampleCount < targetSamples {
				ps.AddSample(rt.samplePixel(camera, i, j, sampler))
			}
			stats.update(ps.SampleCount - initialSampleCount)
		}
	}

	stats.finalize()
	return stats
}

// RenderPass renders the whole image on the calling goroutine and returns it
func (rt *Raytracer) RenderPass() (*image.RGBA, RenderStats) {
	pixelStats := newPixelStatsGrid(rt.width, rt.height)
	sampler := core.NewSeededSampler(rt.seed)

	bounds := image.Rect(0, 0, rt.width, rt.height)
	stats := rt.RenderBounds(bounds, pixelStats, sampler, rt.config.SamplesPerPixel)

	return assembleImage(pixelStats, rt.width, rt.height), stats
}

// newPixelStatsGrid allocates per-pixel accumulators indexed [y][x]
func newPixelStatsGrid(width, height int) [][]PixelStats {
	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}
	return pixelStats
}

// assembleImage converts accumulated pixel statistics to an image
func assembleImage(pixelStats [][]PixelStats, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, Vec3ToColor(pixelStats[y][x].GetColor()))
		}
	}
	return img
}
