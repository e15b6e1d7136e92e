package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/encoders"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Camera overrides the scene's camera; unset values keep the scene's choice.
// Aperture and focus distance are pointers because 0 is meaningful for both:
// a pinhole lens and an auto-focused one.
type Camera struct {
	LookFrom      []float64 `yaml:"look_from,omitempty"`
	LookAt        []float64 `yaml:"look_at,omitempty"`
	Up            []float64 `yaml:"up,omitempty"`
	VFov          float64   `yaml:"vfov,omitempty"`
	Aperture      *float64  `yaml:"aperture,omitempty"`
	FocusDistance *float64  `yaml:"focus_distance,omitempty"`
}

// Output selects where and how the image is written
type Output struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format,omitempty"` // empty: inferred from the path
}

// Config is a render job. Zero image and sampling values fall back to the
// scene's defaults.
type Config struct {
	Scene     string `yaml:"scene"`
	ScenesDir string `yaml:"scenes_dir,omitempty"`

	Width           int   `yaml:"width,omitempty"`
	Height          int   `yaml:"height,omitempty"`
	SamplesPerPixel int   `yaml:"samples_per_pixel,omitempty"`
	MaxDepth        int   `yaml:"max_depth,omitempty"`
	Seed            int64 `yaml:"seed"`
	Workers         int   `yaml:"workers,omitempty"` // 0: one per CPU

	Camera Camera `yaml:"camera,omitempty"`
	Output Output `yaml:"output"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Scene: "random-spheres",
		Seed:  42,
		Output: Output{
			Path: "output/image.png",
		},
	}
}

// Load reads a YAML config on top of the defaults. Unknown keys are errors.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes c as YAML
func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate rejects values no render could use
func (c *Config) Validate() error {
	if c.Scene == "" {
		return invalid("scene must be set")
	}
	if c.Width != 0 && c.Width < 2 {
		return invalid("width %d must be at least 2", c.Width)
	}
	if c.Height != 0 && c.Height < 2 {
		return invalid("height %d must be at least 2", c.Height)
	}
	if (c.Width == 0) != (c.Height == 0) {
		return invalid("width and height must be set together")
	}
	if c.SamplesPerPixel < 0 {
		return invalid("samples_per_pixel %d must not be negative", c.SamplesPerPixel)
	}
	if c.MaxDepth < 0 {
		return invalid("max_depth %d must not be negative", c.MaxDepth)
	}
	if c.Workers < 0 {
		return invalid("workers %d must not be negative", c.Workers)
	}

	for name, v := range map[string][]float64{"look_from": c.Camera.LookFrom, "look_at": c.Camera.LookAt, "up": c.Camera.Up} {
		if v != nil && len(v) != 3 {
			return invalid("camera.%s must have 3 components, got %d", name, len(v))
		}
	}
	if c.Camera.VFov != 0 && (c.Camera.VFov <= 0 || c.Camera.VFov >= 180 || math.IsNaN(c.Camera.VFov)) {
		return invalid("camera.vfov %v must be in (0, 180)", c.Camera.VFov)
	}
	if c.Camera.Aperture != nil && (*c.Camera.Aperture < 0 || math.IsNaN(*c.Camera.Aperture)) {
		return invalid("camera.aperture %v must not be negative", *c.Camera.Aperture)
	}
	if c.Camera.FocusDistance != nil && (*c.Camera.FocusDistance < 0 || math.IsNaN(*c.Camera.FocusDistance)) {
		return invalid("camera.focus_distance %v must not be negative", *c.Camera.FocusDistance)
	}

	if c.Output.Path == "" {
		return invalid("output.path must be set")
	}
	if _, err := c.OutputFormat(); err != nil {
		return fmt.Errorf("%v: %w", err, core.ErrInvalidConfig)
	}
	return nil
}

// OutputFormat returns the configured format, or the one implied by the path
func (c *Config) OutputFormat() (string, error) {
	if c.Output.Format != "" {
		if _, err := encoders.ForFormat(c.Output.Format); err != nil {
			return "", err
		}
		return c.Output.Format, nil
	}
	return encoders.FormatFromPath(c.Output.Path)
}

// CameraOverrides converts the camera section for renderer.MergeCameraConfig.
// A zero aperture or focus distance is lost there; BuildScene applies those
// two explicitly.
func (c *Config) CameraOverrides() renderer.CameraConfig {
	toVec := func(v []float64) core.Vec3 {
		if len(v) != 3 {
			return core.Vec3{}
		}
		return core.NewVec3(v[0], v[1], v[2])
	}
	return renderer.CameraConfig{
		LookFrom:      toVec(c.Camera.LookFrom),
		LookAt:        toVec(c.Camera.LookAt),
		Up:            toVec(c.Camera.Up),
		VFov:          c.Camera.VFov,
		Aperture:      derefOrZero(c.Camera.Aperture),
		FocusDistance: derefOrZero(c.Camera.FocusDistance),
	}
}

// BuildScene creates the configured scene with every override applied
func (c *Config) BuildScene() (*scene.Scene, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s, err := c.createScene()
	if err != nil {
		return nil, err
	}

	if c.Camera.Aperture != nil {
		s.CameraConfig.Aperture = *c.Camera.Aperture
	}
	if c.Camera.FocusDistance != nil {
		s.CameraConfig.FocusDistance = *c.Camera.FocusDistance
	}
	if c.Width != 0 {
		if err := s.Resize(c.Width, c.Height); err != nil {
			return nil, err
		}
	}
	if c.SamplesPerPixel != 0 {
		s.SamplingConfig.SamplesPerPixel = c.SamplesPerPixel
	}
	if c.MaxDepth != 0 {
		s.SamplingConfig.MaxDepth = c.MaxDepth
	}
	return s, nil
}

// createScene resolves built-in names and file paths first, then IDs of
// discovered scene files
func (c *Config) createScene() (*scene.Scene, error) {
	overrides := c.CameraOverrides()

	s, err := scene.Create(c.Scene, overrides)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, core.ErrInvalidConfig) {
		return nil, err
	}

	info, findErr := scene.FindScene(c.Scene, c.ScenesDir)
	if findErr != nil {
		return nil, err
	}
	return scene.CreateFromInfo(info, overrides)
}

// RenderOptions returns the renderer options implied by the config
func (c *Config) RenderOptions() renderer.RenderOptions {
	return renderer.RenderOptions{
		Seed:    c.Seed,
		Workers: c.Workers,
	}
}

func derefOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), core.ErrInvalidConfig)
}
