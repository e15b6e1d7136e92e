package scene

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// oklchToRGB converts OKLCH color values to RGB
// L: lightness (0-1), C: chroma (0-0.4+), H: hue (0-360 degrees)
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0

	// OKLCH to OKLAB
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS
	lCone := l + 0.3963377774*a + 0.2158037573*b
	mCone := l - 0.1055613458*a - 0.0638541728*b
	sCone := l - 0.0894841775*a - 1.2914855480*b

	lCone = lCone * lCone * lCone
	mCone = mCone * mCone * mCone
	sCone = sCone * sCone * sCone

	// LMS to linear RGB
	red := +4.0767416621*lCone - 3.3077115913*mCone + 0.2309699292*sCone
	green := -1.2684380046*lCone + 2.6097574011*mCone - 0.3413193965*sCone
	blue := -0.0041960863*lCone - 0.7034186147*mCone + 1.7076147010*sCone

	return core.NewVec3(red, green, blue).Clamp(0, 1)
}

// NewSphereGridScene creates a scene with a grid of metal spheres whose hue
// varies along x and chroma along z
func NewSphereGridScene(gridSize int, cameraOverrides ...renderer.CameraConfig) *Scene {
	if gridSize < 1 {
		gridSize = 1
	}

	defaultCameraConfig := renderer.CameraConfig{
		LookFrom:      core.NewVec3(4.5, 6, 18),    // Farther back and slightly lower
		LookAt:        core.NewVec3(4.5, 0.8, 4.5), // Center of grid, slightly lower
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   16.0 / 9.0,
		VFov:          40.0,
		Aperture:      0.02, // Small depth of field for some focus variation
		FocusDistance: 0.0,  // Auto-calculate focus distance
	}

	s := &Scene{
		Name:         "spheregrid",
		CameraConfig: applyCameraOverrides(defaultCameraConfig, cameraOverrides),
		SamplingConfig: renderer.SamplingConfig{
			SamplesPerPixel: 100,
			MaxDepth:        40,
		},
		Width:  400,
		Height: 225,
	}

	// Ground sphere large enough to look flat under the grid
	ground := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.Shapes = append(s.Shapes, geometry.MustNewSphere(core.NewVec3(4.5, -1000, 4.5), 1000, ground))

	// Fit the grid into roughly 9x9 units
	targetArea := 9.0
	spacing := targetArea
	if gridSize > 1 {
		spacing = targetArea / float64(gridSize-1)
	}

	sphereRadius := spacing * 0.35
	sphereRadius = math.Max(0.02, math.Min(0.35, sphereRadius))

	baseLightness := 0.65
	minChroma := 0.05 // Near gray
	maxChroma := 0.25 // Vivid

	steps := math.Max(1, float64(gridSize-1))
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5
			position := core.NewVec3(x, sphereRadius, z)

			hue := (float64(i) / steps) * 360.0
			chroma := minChroma + (float64(j)/steps)*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)

			roughness := 0.05 + 0.1*float64((i+j)%3)/2.0
			metal := material.MustNewMetal(oklchToRGB(lightness, chroma, hue), roughness)

			s.Shapes = append(s.Shapes, geometry.MustNewSphere(position, sphereRadius, metal))
		}
	}

	return s
}
