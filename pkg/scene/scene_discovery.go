package scene

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

const (
	builtInGroup   = "Built-in Scenes"
	sceneFileGroup = "Scene Files"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "yaml"
	FilePath    string `json:"filePath"`    // Path to scene file (yaml type only)
	Variant     string `json:"variant"`     // Variant name (optional)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// builtIn pairs a built-in scene description with its constructor
type builtIn struct {
	info   SceneInfo
	create func(overrides ...renderer.CameraConfig) *Scene
}

var builtIns = []builtIn{
	{
		info: SceneInfo{
			ID:          "default",
			Name:        "Default Scene",
			Description: "Diffuse, hollow glass and gold spheres on a large ground sphere",
		},
		create: NewDefaultScene,
	},
	{
		info: SceneInfo{
			ID:          "random-spheres",
			Name:        "Random Spheres",
			Description: "Hundreds of small random spheres around three large ones",
		},
		create: func(overrides ...renderer.CameraConfig) *Scene {
			return NewRandomSpheresScene(DefaultRandomSpheresSeed, overrides...)
		},
	},
	{
		info: SceneInfo{
			ID:          "spheregrid",
			Name:        "Sphere Grid",
			Description: "10x10 grid of rainbow-colored metallic spheres",
		},
		create: func(overrides ...renderer.CameraConfig) *Scene {
			return NewSphereGridScene(10, overrides...)
		},
	},
	{
		info: SceneInfo{
			ID:          "single-sphere",
			Name:        "Single Sphere",
			Description: "One diffuse sphere under the sky",
		},
		create: NewSingleSphereScene,
	},
}

// BuiltInScenes lists the scenes compiled into the binary
func BuiltInScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtIns))
	for _, b := range builtIns {
		info := b.info
		info.DisplayName = info.Name
		info.Group = builtInGroup
		info.Type = "builtin"
		scenes = append(scenes, info)
	}
	return scenes
}

// Create resolves a built-in scene ID or a YAML scene file path
func Create(name string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	for _, b := range builtIns {
		if b.info.ID == name {
			return b.create(cameraOverrides...), nil
		}
	}

	if loaders.IsSceneFile(name) {
		return NewYAMLScene(name, cameraOverrides...)
	}

	return nil, fmt.Errorf("unknown scene %q: %w", name, core.ErrInvalidConfig)
}

// ListYAMLScenes scans dir for scene files. An empty dir searches ./scenes and
// ../scenes; a missing directory yields no scenes.
func ListYAMLScenes(dir string) ([]SceneInfo, error) {
	scenesDir := dir
	if scenesDir == "" {
		for _, path := range []string{"scenes", "../scenes"} {
			if _, err := os.Stat(path); err == nil {
				scenesDir = path
				break
			}
		}
	}
	if scenesDir == "" {
		return []SceneInfo{}, nil
	}
	if _, err := os.Stat(scenesDir); os.IsNotExist(err) {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(scenesDir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		sceneInfo, err := ParseYAMLMetadata(filePath)
		if err != nil {
			// Keep going with the other files
			log.Warn().Err(err).Str("file", filePath).Msg("failed to parse scene metadata")
			continue
		}
		scenes = append(scenes, sceneInfo)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseYAMLMetadata extracts metadata from the comment lines at the top of a
// scene file:
//
//	# Scene: Three Spheres
//	# Variant: Glass
//	# Description: ...
//	# Group: ...
func ParseYAMLMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	// Fallback values
	sceneInfo := SceneInfo{
		ID:          fmt.Sprintf("yaml:%s", nameWithoutExt),
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       sceneFileGroup,
		Type:        "yaml",
		FilePath:    filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return sceneInfo, nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Stop parsing at first non-comment line
		if !strings.HasPrefix(line, "#") {
			break
		}

		content := strings.TrimSpace(strings.TrimPrefix(line, "#"))
		key, value, found := strings.Cut(content, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch key {
		case "Scene":
			sceneInfo.Name = value
		case "Variant":
			sceneInfo.Variant = value
		case "Description":
			sceneInfo.Description = value
		case "Group":
			sceneInfo.Group = value
		}
	}

	if sceneInfo.Variant != "" {
		sceneInfo.DisplayName = fmt.Sprintf("%s - %s", sceneInfo.Name, sceneInfo.Variant)
	} else {
		sceneInfo.DisplayName = sceneInfo.Name
	}

	return sceneInfo, scanner.Err()
}

// ListAllScenes returns built-in and file scenes, grouped by category
func ListAllScenes(dir string) (ScenesResponse, error) {
	var response ScenesResponse

	fileScenes, err := ListYAMLScenes(dir)
	if err != nil {
		return response, fmt.Errorf("failed to list scene files: %w", err)
	}

	allScenes := append(BuiltInScenes(), fileScenes...)

	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	// Built-in first, then alphabetical
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtInGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{
		Name:   builtInGroup,
		Scenes: groupMap[builtInGroup],
	})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// FindScene looks a scene up by ID among everything ListAllScenes returns
func FindScene(id, dir string) (SceneInfo, error) {
	response, err := ListAllScenes(dir)
	if err != nil {
		return SceneInfo{}, err
	}
	for _, group := range response.Groups {
		for _, info := range group.Scenes {
			if info.ID == id {
				return info, nil
			}
		}
	}
	return SceneInfo{}, fmt.Errorf("unknown scene %q: %w", id, core.ErrInvalidConfig)
}

// CreateFromInfo builds a discovered scene
func CreateFromInfo(info SceneInfo, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	if info.Type == "yaml" {
		return NewYAMLScene(info.FilePath, cameraOverrides...)
	}
	return Create(info.ID, cameraOverrides...)
}

// titleCase converts a filename-style string to title case
// e.g., "three-spheres" -> "Three Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}

	return strings.Join(words, " ")
}
