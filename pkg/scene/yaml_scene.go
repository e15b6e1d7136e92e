package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewYAMLScene creates a scene from a YAML scene file
func NewYAMLScene(filepath string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	doc, err := loaders.LoadYAMLScene(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene file: %w", err)
	}
	return FromYAMLScene(doc, cameraOverrides...)
}

// FromYAMLScene converts a parsed scene file. Materials are built once and
// shared by every sphere that names them.
func FromYAMLScene(doc *loaders.YAMLScene, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	s := &Scene{
		Name:           doc.Name,
		SamplingConfig: renderer.DefaultSamplingConfig(),
		Width:          400,
		Height:         225,
	}
	if doc.Render.Width > 0 {
		s.Width = doc.Render.Width
	}
	if doc.Render.Height > 0 {
		s.Height = doc.Render.Height
	}
	if doc.Render.SamplesPerPixel > 0 {
		s.SamplingConfig.SamplesPerPixel = doc.Render.SamplesPerPixel
	}
	if doc.Render.MaxDepth > 0 {
		s.SamplingConfig.MaxDepth = doc.Render.MaxDepth
	}

	s.CameraConfig = applyCameraOverrides(convertCamera(doc.Camera, s.Width, s.Height), cameraOverrides)

	materials := make(map[string]material.Material, len(doc.Materials))
	for _, name := range doc.MaterialNames() {
		mat, err := convertMaterial(doc.Materials[name])
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}

	for i, sphere := range doc.Spheres {
		mat, ok := materials[sphere.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: unknown material %q: %w", i, sphere.Material, core.ErrInvalidConfig)
		}
		shape, err := geometry.NewSphere(sphere.Center.Vec3(), sphere.Radius, mat)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		s.Shapes = append(s.Shapes, shape)
	}

	return s, nil
}

// convertCamera fills unset camera fields with defaults
func convertCamera(c loaders.YAMLCamera, width, height int) renderer.CameraConfig {
	config := renderer.CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   float64(width) / float64(height),
		VFov:          90.0,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	}

	if c.LookFrom != nil {
		config.LookFrom = c.LookFrom.Vec3()
	}
	if c.LookAt != nil {
		config.LookAt = c.LookAt.Vec3()
	}
	if c.Up != nil {
		config.Up = c.Up.Vec3()
	}
	if c.VFov != 0 {
		config.VFov = c.VFov
	}

	return config
}

// convertMaterial builds one entry of the materials table
func convertMaterial(m loaders.YAMLMaterial) (material.Material, error) {
	switch m.Type {
	case loaders.MaterialLambertian:
		if m.Albedo == nil {
			return nil, fmt.Errorf("lambertian requires an albedo: %w", core.ErrInvalidConfig)
		}
		return material.NewLambertian(m.Albedo.Vec3()), nil
	case loaders.MaterialMetal:
		if m.Albedo == nil {
			return nil, fmt.Errorf("metal requires an albedo: %w", core.ErrInvalidConfig)
		}
		return material.NewMetal(m.Albedo.Vec3(), m.Fuzz)
	case loaders.MaterialDielectric:
		return material.NewDielectric(m.Index)
	default:
		return nil, fmt.Errorf("unknown material type %q: %w", m.Type, core.ErrInvalidConfig)
	}
}
