package loaders

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Supported material types
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// Vec3Value is a vector written as a three element YAML sequence
type Vec3Value core.Vec3

// UnmarshalYAML implements yaml.Unmarshaler
func (v *Vec3Value) UnmarshalYAML(node *yaml.Node) error {
	var values []float64
	if err := node.Decode(&values); err != nil {
		return fmt.Errorf("line %d: vector must be a list of 3 numbers: %w", node.Line, err)
	}
	if len(values) != 3 {
		return fmt.Errorf("line %d: vector must have 3 components, got %d", node.Line, len(values))
	}
	*v = Vec3Value{X: values[0], Y: values[1], Z: values[2]}
	return nil
}

// Vec3 returns the value as a core vector
func (v Vec3Value) Vec3() core.Vec3 {
	return core.Vec3(v)
}

// ColorValue is a linear RGB color written either as [r, g, b] in [0, 1] or as
// an SVG color name. Named colors are 8-bit sRGB and are decoded with gamma 2
// to match the output encoding.
type ColorValue core.Vec3

// UnmarshalYAML implements yaml.Unmarshaler
func (c *ColorValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		name := strings.ToLower(strings.TrimSpace(node.Value))
		named, ok := colornames.Map[name]
		if !ok {
			return fmt.Errorf("line %d: unknown color name %q", node.Line, node.Value)
		}
		r, g, b := float64(named.R)/255, float64(named.G)/255, float64(named.B)/255
		*c = ColorValue{X: r * r, Y: g * g, Z: b * b}
		return nil
	}

	var v Vec3Value
	if err := v.UnmarshalYAML(node); err != nil {
		return err
	}
	for _, channel := range []float64{v.X, v.Y, v.Z} {
		if channel < 0 || channel > 1 {
			return fmt.Errorf("line %d: color channel %v outside [0, 1]", node.Line, channel)
		}
	}
	*c = ColorValue(v)
	return nil
}

// Vec3 returns the color as a core vector
func (c ColorValue) Vec3() core.Vec3 {
	return core.Vec3(c)
}

// YAMLCamera holds the optional camera section of a scene file
type YAMLCamera struct {
	LookFrom      *Vec3Value `yaml:"look_from"`
	LookAt        *Vec3Value `yaml:"look_at"`
	Up            *Vec3Value `yaml:"up"`
	VFov          float64    `yaml:"vfov"`
	Aperture      float64    `yaml:"aperture"`
	FocusDistance float64    `yaml:"focus_distance"`
}

// YAMLRender holds the optional image and sampling defaults of a scene file
type YAMLRender struct {
	Width           int `yaml:"width"`
	Height          int `yaml:"height"`
	SamplesPerPixel int `yaml:"samples_per_pixel"`
	MaxDepth        int `yaml:"max_depth"`
}

// YAMLMaterial is one entry of the materials table
type YAMLMaterial struct {
	Type   string      `yaml:"type"`
	Albedo *ColorValue `yaml:"albedo"`
	Fuzz   float64     `yaml:"fuzz"`
	Index  float64     `yaml:"index"`
}

// YAMLSphere places a sphere using a material from the table
type YAMLSphere struct {
	Center   Vec3Value `yaml:"center"`
	Radius   float64   `yaml:"radius"`
	Material string    `yaml:"material"`
}

// YAMLScene contains all parsed scene file data
type YAMLScene struct {
	Name      string                  `yaml:"name"`
	Camera    YAMLCamera              `yaml:"camera"`
	Render    YAMLRender              `yaml:"render"`
	Materials map[string]YAMLMaterial `yaml:"materials"`
	Spheres   []YAMLSphere            `yaml:"spheres"`
}

// MaterialNames returns the material table keys in sorted order
func (s *YAMLScene) MaterialNames() []string {
	names := make([]string, 0, len(s.Materials))
	for name := range s.Materials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseYAMLScene parses scene content from an io.Reader and checks that every
// sphere references a known material of a supported type
func ParseYAMLScene(reader io.Reader) (*YAMLScene, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var scene YAMLScene
	if err := decoder.Decode(&scene); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scene file is empty")
		}
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}

	if err := scene.validate(); err != nil {
		return nil, err
	}
	return &scene, nil
}

// LoadYAMLScene loads and parses a YAML scene file
func LoadYAMLScene(filename string) (*YAMLScene, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	scene, err := ParseYAMLScene(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if scene.Name == "" {
		scene.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return scene, nil
}

func (s *YAMLScene) validate() error {
	for _, name := range s.MaterialNames() {
		m := s.Materials[name]
		switch m.Type {
		case MaterialLambertian, MaterialMetal:
			if m.Albedo == nil {
				return fmt.Errorf("material %q: %s requires an albedo", name, m.Type)
			}
		case MaterialDielectric:
			if m.Index == 0 {
				return fmt.Errorf("material %q: dielectric requires an index", name)
			}
		case "":
			return fmt.Errorf("material %q: missing type", name)
		default:
			return fmt.Errorf("material %q: unknown type %q", name, m.Type)
		}
	}

	if len(s.Spheres) == 0 {
		return fmt.Errorf("scene has no spheres")
	}
	for i, sphere := range s.Spheres {
		if _, ok := s.Materials[sphere.Material]; !ok {
			return fmt.Errorf("sphere %d: unknown material %q", i, sphere.Material)
		}
	}
	return nil
}

// validateFilePath rejects paths that cannot be scene files
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)
	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	if !IsSceneFile(cleanPath) {
		return fmt.Errorf("invalid file type: only .yaml and .yml scene files are allowed")
	}
	return nil
}

// IsSceneFile reports whether path has a scene file extension
func IsSceneFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
