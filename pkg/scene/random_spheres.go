package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// DefaultRandomSpheresSeed fixes the layout of the built-in random-spheres scene
const DefaultRandomSpheresSeed int64 = 1

// NewRandomSpheresScene creates a field of small random spheres around three
// large ones (glass, diffuse and polished metal). The layout depends only on seed.
func NewRandomSpheresScene(seed int64, cameraOverrides ...renderer.CameraConfig) *Scene {
	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   3.0 / 2.0,
		VFov:          20.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}

	s := &Scene{
		Name:         "random-spheres",
		CameraConfig: applyCameraOverrides(defaultCameraConfig, cameraOverrides),
		SamplingConfig: renderer.SamplingConfig{
			SamplesPerPixel: 50,
			MaxDepth:        10,
		},
		Width:  300,
		Height: 200,
	}

	sampler := core.NewSeededSampler(seed)

	ground := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.Shapes = append(s.Shapes, geometry.MustNewSphere(core.NewVec3(0, -1000, 0), 1000, ground))

	// Keep the small spheres clear of the large metal sphere
	clearance := core.NewVec3(4, 0.2, 0)
	glass := material.MustNewDielectric(1.5)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(
				float64(a)+0.9*sampler.Get1D(),
				0.2,
				float64(b)+0.9*sampler.Get1D(),
			)

			if center.Subtract(clearance).Length() <= 0.9 {
				continue
			}

			var sphereMaterial material.Material
			switch {
			case chooseMat < 0.8:
				albedo := core.RandomVec3Range(sampler, 0, 1).MultiplyVec(core.RandomVec3Range(sampler, 0, 1))
				sphereMaterial = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				albedo := core.RandomVec3Range(sampler, 0.5, 1)
				fuzz := core.RandomRange(sampler, 0, 0.5)
				sphereMaterial = material.MustNewMetal(albedo, fuzz)
			default:
				sphereMaterial = glass
			}

			s.Shapes = append(s.Shapes, geometry.MustNewSphere(center, 0.2, sphereMaterial))
		}
	}

	s.Shapes = append(s.Shapes,
		geometry.MustNewSphere(core.NewVec3(0, 1, 0), 1.0, glass),
		geometry.MustNewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))),
		geometry.MustNewSphere(core.NewVec3(4, 1, 0), 1.0, material.MustNewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)),
	)

	return s
}
