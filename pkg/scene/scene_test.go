package scene

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/loaders"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

func TestRandomSpheresScene(t *testing.T) {
	s := NewRandomSpheresScene(DefaultRandomSpheresSeed)

	// Ground, at most 22x22 small spheres, three large spheres
	assert.Greater(t, s.GetPrimitiveCount(), 4)
	assert.LessOrEqual(t, s.GetPrimitiveCount(), 1+22*22+3)

	ground, ok := s.Shapes[0].(*geometry.Sphere)
	require.True(t, ok)
	assert.Equal(t, 1000.0, ground.Radius)

	assert.Equal(t, core.NewVec3(13, 2, 3), s.CameraConfig.LookFrom)
	assert.Equal(t, 20.0, s.CameraConfig.VFov)
	assert.Equal(t, 0.1, s.CameraConfig.Aperture)
	assert.Equal(t, 10.0, s.CameraConfig.FocusDistance)
	assert.Equal(t, 1.5, s.CameraConfig.AspectRatio)

	// Small spheres stay clear of the large metal sphere
	for _, shape := range s.Shapes[1 : len(s.Shapes)-3] {
		sphere := shape.(*geometry.Sphere)
		assert.Equal(t, 0.2, sphere.Radius)
		assert.Greater(t, sphere.Center.Subtract(core.NewVec3(4, 0.2, 0)).Length(), 0.9)
	}
}

func TestRandomSpheresScene_ReproducibleFromSeed(t *testing.T) {
	centers := func(seed int64) []core.Vec3 {
		var out []core.Vec3
		for _, shape := range NewRandomSpheresScene(seed).Shapes {
			out = append(out, shape.(*geometry.Sphere).Center)
		}
		return out
	}

	assert.Equal(t, centers(5), centers(5))
	assert.NotEqual(t, centers(5), centers(6))
}

func TestSphereGridScene(t *testing.T) {
	s := NewSphereGridScene(4)
	assert.Equal(t, 1+16, s.GetPrimitiveCount())

	for _, shape := range s.Shapes[1:] {
		sphere := shape.(*geometry.Sphere)
		metal, ok := sphere.Material.(*material.Metal)
		require.True(t, ok)
		assert.InDelta(t, 0.1, metal.Fuzzness, 0.05+1e-12, "fuzz stays in [0.05, 0.15]")
		assert.True(t, metal.Albedo.IsFinite())
	}

	assert.Equal(t, 2, NewSphereGridScene(0).GetPrimitiveCount())
}

func TestOklchToRGB_InRange(t *testing.T) {
	for hue := 0.0; hue < 360; hue += 30 {
		c := oklchToRGB(0.65, 0.25, hue)
		for _, channel := range []float64{c.X, c.Y, c.Z} {
			assert.GreaterOrEqual(t, channel, 0.0)
			assert.LessOrEqual(t, channel, 1.0)
		}
	}
	gray := oklchToRGB(0.5, 0, 0)
	assert.InDelta(t, gray.X, gray.Y, 1e-6)
	assert.InDelta(t, gray.Y, gray.Z, 1e-6)
}

func TestCameraOverrides(t *testing.T) {
	s := NewDefaultScene(renderer.CameraConfig{VFov: 60})
	assert.Equal(t, 60.0, s.CameraConfig.VFov)
	assert.Equal(t, core.NewVec3(-2, 2, 1), s.CameraConfig.LookFrom)
}

func TestScene_Resize(t *testing.T) {
	s := NewSingleSphereScene()
	require.NoError(t, s.Resize(30, 10))
	assert.Equal(t, 30, s.Width)
	assert.Equal(t, 3.0, s.CameraConfig.AspectRatio)

	assert.ErrorIs(t, s.Resize(1, 10), core.ErrInvalidConfig)
}

func TestScene_NewRaytracerRenders(t *testing.T) {
	s := NewSingleSphereScene()
	require.NoError(t, s.Resize(8, 4))
	s.SamplingConfig = renderer.SamplingConfig{SamplesPerPixel: 2, MaxDepth: 4}

	rt, err := s.NewRaytracer(renderer.RenderOptions{Seed: 1, Workers: 2})
	require.NoError(t, err)
	fb, stats, err := rt.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, fb.Width)
	assert.Equal(t, 64, stats.TotalSamples)
}

func TestFromYAMLScene(t *testing.T) {
	doc, err := loaders.ParseYAMLScene(strings.NewReader(`
name: shared
camera: {look_from: [0, 1, 3], vfov: 45}
render: {width: 60, height: 30, samples_per_pixel: 8}
materials:
  glass: {type: dielectric, index: 1.5}
  matte: {type: lambertian, albedo: [0.2, 0.4, 0.6]}
spheres:
  - {center: [0, 0, -1], radius: 0.5, material: glass}
  - {center: [1, 0, -1], radius: 0.5, material: glass}
  - {center: [0, -100.5, -1], radius: 100, material: matte}
`))
	require.NoError(t, err)

	s, err := FromYAMLScene(doc)
	require.NoError(t, err)
	assert.Equal(t, "shared", s.Name)
	assert.Equal(t, 60, s.Width)
	assert.Equal(t, 30, s.Height)
	assert.Equal(t, 8, s.SamplingConfig.SamplesPerPixel)
	assert.Equal(t, renderer.DefaultSamplingConfig().MaxDepth, s.SamplingConfig.MaxDepth)
	assert.Equal(t, core.NewVec3(0, 1, 3), s.CameraConfig.LookFrom)
	assert.Equal(t, core.NewVec3(0, 0, -1), s.CameraConfig.LookAt)
	assert.Equal(t, 2.0, s.CameraConfig.AspectRatio)

	// Spheres naming the same material share one instance
	require.Len(t, s.Shapes, 3)
	first := s.Shapes[0].(*geometry.Sphere).Material
	second := s.Shapes[1].(*geometry.Sphere).Material
	assert.Same(t, first, second)
}

func TestFromYAMLScene_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			"fuzz above one",
			"materials:\n  m: {type: metal, albedo: [1, 1, 1], fuzz: 1.5}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: m}\n",
			`material "m"`,
		},
		{
			"negative index",
			"materials:\n  g: {type: dielectric, index: -1}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: g}\n",
			`material "g"`,
		},
		{
			"zero radius",
			"materials:\n  a: {type: lambertian, albedo: [1, 1, 1]}\nspheres:\n  - {center: [0, 0, 0], radius: 1, material: a}\n  - {center: [0, 0, 0], radius: 0, material: a}\n",
			"sphere 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := loaders.ParseYAMLScene(strings.NewReader(tt.content))
			require.NoError(t, err)

			_, err = FromYAMLScene(doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
