package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// options holds everything a render run needs. A -config file fills it first and
// explicitly passed flags win over the file.
type options struct {
	Scene    string `json:"scene"`
	Width    int    `json:"width"`
	Samples  int    `json:"samples"`
	Depth    int    `json:"depth"`
	Workers  int    `json:"workers"`
	Passes   int    `json:"passes"`
	TileSize int    `json:"tileSize"`
	Seed     int64  `json:"seed"`
	Format   string `json:"format"`
	Output   string `json:"output"`

	configPath string
	help       bool
	list       bool
}

func defaultOptions() options {
	progressive := renderer.DefaultProgressiveConfig()
	return options{
		Scene:    "random",
		Passes:   progressive.MaxPasses,
		TileSize: progressive.TileSize,
		Seed:     progressive.Seed,
		Format:   "png",
	}
}

// parseOptions parses command line arguments into options
func parseOptions(args []string, stderr io.Writer) (options, error) {
	opts := defaultOptions()
	flagOpts := opts

	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&flagOpts.Scene, "scene", opts.Scene, "Scene name ("+strings.Join(scene.Names(), ", ")+") or path to a .json scene file")
	fs.StringVar(&flagOpts.configPath, "config", "", "JSON file with render settings; flags override it")
	fs.IntVar(&flagOpts.Width, "width", opts.Width, "Image width in pixels, height follows the camera aspect ratio (0 = scene default)")
	fs.IntVar(&flagOpts.Samples, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&flagOpts.Depth, "depth", 0, "Maximum bounce depth (0 = scene default)")
	fs.IntVar(&flagOpts.Workers, "workers", 0, "Number of parallel workers (0 = CPU count)")
	fs.IntVar(&flagOpts.Passes, "passes", opts.Passes, "Number of progressive passes (1 = single pass)")
	fs.Int64Var(&flagOpts.Seed, "seed", opts.Seed, "Random seed for scene layout and sampling")
	fs.StringVar(&flagOpts.Format, "format", opts.Format, "Output format: png or ppm")
	fs.StringVar(&flagOpts.Output, "output", "", "Output file (default output/<scene>/render_<timestamp>.<format>)")
	fs.BoolVar(&flagOpts.help, "help", false, "Show help information")
	fs.BoolVar(&flagOpts.list, "list", false, "List available scenes")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if flagOpts.configPath != "" {
		if err := loadConfig(flagOpts.configPath, &opts); err != nil {
			return options{}, err
		}
	}

	// Explicit flags override the config file
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "scene":
			opts.Scene = flagOpts.Scene
		case "width":
			opts.Width = flagOpts.Width
		case "samples":
			opts.Samples = flagOpts.Samples
		case "depth":
			opts.Depth = flagOpts.Depth
		case "workers":
			opts.Workers = flagOpts.Workers
		case "passes":
			opts.Passes = flagOpts.Passes
		case "seed":
			opts.Seed = flagOpts.Seed
		case "format":
			opts.Format = flagOpts.Format
		case "output":
			opts.Output = flagOpts.Output
		}
	})
	opts.configPath = flagOpts.configPath
	opts.help = flagOpts.help
	opts.list = flagOpts.list

	opts.Format = strings.ToLower(opts.Format)
	if opts.Format != "png" && opts.Format != "ppm" {
		return options{}, fmt.Errorf("%w: unknown format %q", output.ErrUnsupportedFormat, opts.Format)
	}
	if opts.Width < 0 {
		return options{}, fmt.Errorf("%w: width must not be negative, got %d", renderer.ErrInvalidConfig, opts.Width)
	}
	if opts.Passes <= 0 || opts.TileSize <= 0 {
		return options{}, fmt.Errorf("%w: passes and tile size must be positive", renderer.ErrInvalidConfig)
	}
	return opts, nil
}

// loadConfig fills opts from a JSON settings file
func loadConfig(path string, opts *options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// createScene resolves a scene name or scene file path
func createScene(name string, seed int64) (*scene.Scene, error) {
	if name == "" {
		return nil, errors.New("scene name cannot be empty")
	}
	s, err := scene.Lookup(name, core.NewSeededSampler(seed))
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	return s, nil
}

// sceneLabel names the output directory for a scene
func sceneLabel(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return name
}

// outputPath returns the file the render is saved to
func outputPath(opts options, now time.Time) string {
	if opts.Output != "" {
		return opts.Output
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", sceneLabel(opts.Scene), fmt.Sprintf("render_%s.%s", timestamp, opts.Format))
}

// render produces the final image, progressively when more than one pass is requested
func render(ctx context.Context, s *scene.Scene, opts options, logger core.Logger) (*image.RGBA, renderer.RenderStats, error) {
	width, height := s.DefaultImageSize()
	if opts.Width > 0 {
		width, height = s.ImageSize(opts.Width)
	}
	sampling := renderer.MergeSamplingConfig(renderer.DefaultSamplingConfig(), s.SamplingConfig)
	sampling = renderer.MergeSamplingConfig(sampling, renderer.SamplingConfig{
		SamplesPerPixel: opts.Samples,
		MaxDepth:        opts.Depth,
	})
	s.SamplingConfig = sampling

	logger.Printf("Rendering %dx%d, %d samples per pixel, max depth %d\n",
		width, height, sampling.SamplesPerPixel, sampling.MaxDepth)

	if opts.Passes == 1 {
		rt := renderer.NewRaytracer(s, width, height)
		rt.SetSeed(opts.Seed)
		img, stats := rt.RenderPass()
		return img, stats, nil
	}

	config := renderer.ProgressiveConfig{
		TileSize:           opts.TileSize,
		InitialSamples:     1,
		MaxSamplesPerPixel: sampling.SamplesPerPixel,
		MaxPasses:          min(opts.Passes, sampling.SamplesPerPixel),
		NumWorkers:         opts.Workers,
		Seed:               opts.Seed,
	}
	pr, err := renderer.NewProgressiveRaytracer(s, width, height, config, logger)
	if err != nil {
		return nil, renderer.RenderStats{}, err
	}
	defer pr.Close()

	passChan, _, errChan := pr.RenderProgressive(ctx, renderer.RenderOptions{})

	var last renderer.PassResult
	for result := range passChan {
		last = result
	}
	if err := <-errChan; err != nil {
		return nil, renderer.RenderStats{}, err
	}
	if last.Image == nil {
		return nil, renderer.RenderStats{}, errors.New("render produced no passes")
	}
	return last.Image, last.Stats, nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Weekend Raytracer")
	fmt.Fprintln(w, "Usage: raytracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run with -list to see the available scenes.")
	fmt.Fprintln(w, "Output will be saved to output/<scene>/render_<timestamp>.<format>")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return err
	}

	if opts.help {
		printHelp(stdout)
		return nil
	}
	if opts.list {
		scenes, err := scene.ListScenes("scenes")
		if err != nil {
			return err
		}
		for _, info := range scenes {
			fmt.Fprintf(stdout, "  %-20s %s\n", info.ID, info.Description)
		}
		return nil
	}

	logger := renderer.NewDefaultLogger()
	logger.Printf("Starting Weekend Raytracer...\n")

	s, err := createScene(opts.Scene, opts.Seed)
	if err != nil {
		return err
	}
	logger.Printf("Using scene %s (%d objects)\n", opts.Scene, s.GetPrimitiveCount())

	startTime := time.Now()
	img, stats, err := render(ctx, s, opts, logger)
	if err != nil {
		return err
	}
	logger.Printf("Render completed in %v\n", time.Since(startTime))
	logger.Printf("Samples per pixel: %.1f (range %d - %d)\n",
		stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed)

	filename := outputPath(opts, time.Now())
	if err := output.Save(filename, img); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", filename)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
