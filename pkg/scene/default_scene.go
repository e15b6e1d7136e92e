package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// NewDefaultScene creates a default scene with spheres, ground, and camera
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   16.0 / 9.0,
		VFov:          30.0,
		Aperture:      0.05,
		FocusDistance: 0.0, // Auto-calculate focus distance
	}

	s := &Scene{
		Name:         "default",
		CameraConfig: applyCameraOverrides(defaultCameraConfig, cameraOverrides),
		SamplingConfig: renderer.SamplingConfig{
			SamplesPerPixel: 100,
			MaxDepth:        50,
		},
		Width:  400,
		Height: 225,
	}

	// Create materials
	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	glass := material.MustNewDielectric(1.5)
	// Air inside glass: the ratio is inverted so the inner sphere bends light back
	bubble := material.MustNewDielectric(1.0 / 1.5)
	gold := material.MustNewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	s.Shapes = geometry.HittableList{
		geometry.MustNewSphere(core.NewVec3(0, -100.5, -1), 100, ground),
		geometry.MustNewSphere(core.NewVec3(0, 0, -1.2), 0.5, center),
		// Hollow glass sphere
		geometry.MustNewSphere(core.NewVec3(-1, 0, -1), 0.5, glass),
		geometry.MustNewSphere(core.NewVec3(-1, 0, -1), 0.4, bubble),
		geometry.MustNewSphere(core.NewVec3(1, 0, -1), 0.5, gold),
	}

	return s
}
