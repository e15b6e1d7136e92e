package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Shapes         geometry.HittableList // Objects in the scene, intersected brute-force
	CameraConfig   renderer.CameraConfig
	SamplingConfig renderer.SamplingConfig
	Width          int // Default image width
	Height         int // Default image height
}

// GetPrimitiveCount returns the number of primitives in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Shapes)
}

// Resize changes the image size and keeps the camera aspect ratio in step
func (s *Scene) Resize(width, height int) error {
	if width < 2 || height < 2 {
		return fmt.Errorf("image size %dx%d must be at least 2x2: %w", width, height, core.ErrInvalidConfig)
	}
	s.Width = width
	s.Height = height
	s.CameraConfig.AspectRatio = float64(width) / float64(height)
	return nil
}

// NewCamera builds the scene's camera
func (s *Scene) NewCamera() (*renderer.Camera, error) {
	camera, err := renderer.NewCamera(s.CameraConfig)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", s.Name, err)
	}
	return camera, nil
}

// NewRaytracer prepares a raytracer for the scene at its current size and
// sampling budget
func (s *Scene) NewRaytracer(options renderer.RenderOptions) (*renderer.Raytracer, error) {
	camera, err := s.NewCamera()
	if err != nil {
		return nil, err
	}
	return renderer.NewRaytracer(s.Shapes, camera, s.Width, s.Height, s.SamplingConfig, options)
}

// applyCameraOverrides merges the first override, if any, into config
func applyCameraOverrides(config renderer.CameraConfig, overrides []renderer.CameraConfig) renderer.CameraConfig {
	if len(overrides) == 0 {
		return config
	}
	return renderer.MergeCameraConfig(config, overrides[0])
}
