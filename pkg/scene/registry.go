package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/loaders"
)

// SceneInfo describes a scene that can be rendered by name
type SceneInfo struct {
	ID          string `json:"id"`          // Name accepted by Lookup
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the scene file (file type only)
}

type builtinScene struct {
	info  SceneInfo
	build func(sampler core.Sampler) *Scene
}

var builtinScenes = []builtinScene{
	{
		info: SceneInfo{ID: "random", Description: "Field of random spheres around three large ones"},
		build: func(sampler core.Sampler) *Scene {
			return NewRandomScene(sampler)
		},
	},
	{
		info: SceneInfo{ID: "default", Description: "Diffuse, hollow glass and fuzzy metal spheres"},
		build: func(core.Sampler) *Scene {
			return NewDefaultScene()
		},
	},
	{
		info: SceneInfo{ID: "single", Description: "One grey diffuse sphere"},
		build: func(core.Sampler) *Scene {
			return NewSingleSphereScene()
		},
	},
}

// Names returns the IDs of the built-in scenes
func Names() []string {
	names := make([]string, len(builtinScenes))
	for i, s := range builtinScenes {
		names[i] = s.info.ID
	}
	return names
}

// Lookup returns the scene with the given name. Names ending in .json are loaded
// from disk; anything else must be a built-in scene. The sampler is only used by
// scenes with a randomized layout.
func Lookup(name string, sampler core.Sampler) (*Scene, error) {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return NewFromFile(name)
	}

	for _, s := range builtinScenes {
		if s.info.ID == name {
			return s.build(sampler), nil
		}
	}
	return nil, fmt.Errorf("%w: unknown scene %q (available: %s)",
		loaders.ErrInvalidScene, name, strings.Join(Names(), ", "))
}

// NewFromFile builds a scene from a JSON scene file
func NewFromFile(filename string) (*Scene, error) {
	file, err := loaders.LoadScene(filename)
	if err != nil {
		return nil, err
	}

	s := NewScene(file.Camera, file.Sampling)
	for _, sphere := range file.Spheres {
		s.World.Add(sphere)
	}
	if file.TopColor != nil {
		s.TopColor = *file.TopColor
	}
	if file.BottomColor != nil {
		s.BottomColor = *file.BottomColor
	}
	return s, nil
}

// ListScenes returns the built-in scenes followed by the JSON scene files found in dir,
// sorted by ID. A missing directory yields only the built-in scenes.
func ListScenes(dir string) ([]SceneInfo, error) {
	var scenes []SceneInfo
	for _, s := range builtinScenes {
		info := s.info
		info.Type = "builtin"
		scenes = append(scenes, info)
	}

	if _, err := os.Stat(dir); err != nil {
		return scenes, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	var fileScenes []SceneInfo
	for _, path := range files {
		info := SceneInfo{ID: path, Type: "file", FilePath: path}
		if file, err := loaders.LoadScene(path); err == nil {
			info.Description = file.Description
		} else {
			info.Description = fmt.Sprintf("unreadable: %v", err)
		}
		fileScenes = append(fileScenes, info)
	}
	sort.Slice(fileScenes, func(i, j int) bool {
		return fileScenes[i].ID < fileScenes[j].ID
	})

	return append(scenes, fileScenes...), nil
}
