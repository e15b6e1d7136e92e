package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// MockMaterial implements material.Material for testing
type MockMaterial struct {
	scatterFn func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool)
	calls     int
}

func (m *MockMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	m.calls++
	return m.scatterFn(rayIn, hit, sampler)
}

// createTestWorld creates a simple world with a single lambertian sphere
func createTestWorld() geometry.HittableList {
	lambertian := material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))
	return geometry.HittableList{geometry.MustNewSphere(core.NewVec3(0, 0, -1), 0.5, lambertian)}
}

func TestPathTracing_DepthZeroIsBlack(t *testing.T) {
	integrator := NewPathTracingIntegrator()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	worlds := map[string]geometry.HittableList{
		"empty":  nil,
		"sphere": createTestWorld(),
	}

	for name, world := range worlds {
		t.Run(name, func(t *testing.T) {
			for _, depth := range []int{0, -1, -100} {
				ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
				assert.Equal(t, core.Vec3{}, integrator.RayColor(ray, world, sampler, depth))
			}
		})
	}
}

func TestPathTracing_EmptySceneReturnsSky(t *testing.T) {
	integrator := NewPathTracingIntegrator()
	sampler := core.NewSeededSampler(1)
	var world geometry.HittableList

	up := integrator.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 3, 0)), world, sampler, 5)
	assert.Equal(t, DefaultTopColor, up)

	down := integrator.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, -0.2, 0)), world, sampler, 5)
	assert.Equal(t, DefaultBottomColor, down)

	horizon := integrator.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0)), world, sampler, 1)
	assert.InDelta(t, 0, horizon.Subtract(core.NewVec3(0.75, 0.85, 1.0)).Length(), 1e-12)
}

func TestPathTracing_AttenuationCompounds(t *testing.T) {
	attenuation := core.NewVec3(0.5, 0.25, 1.0)
	mirror := &MockMaterial{
		scatterFn: func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
			// Send every bounce straight up into the sky
			return material.ScatterResult{
				Scattered:   core.NewRay(hit.Point, core.NewVec3(0, 1, 0)),
				Attenuation: attenuation,
			}, true
		},
	}
	// Camera looks down at a large sphere; the scattered ray goes up and escapes
	world := geometry.HittableList{geometry.MustNewSphere(core.NewVec3(0, -10, 0), 5, mirror)}
	integrator := NewPathTracingIntegrator()

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, -1, 0))
	color := integrator.RayColor(ray, world, core.NewSeededSampler(1), 10)

	assert.Equal(t, 1, mirror.calls)
	assert.Equal(t, attenuation.MultiplyVec(DefaultTopColor), color)
}

func TestPathTracing_AbsorptionIsBlack(t *testing.T) {
	absorber := &MockMaterial{
		scatterFn: func(core.Ray, material.HitRecord, core.Sampler) (material.ScatterResult, bool) {
			return material.ScatterResult{}, false
		},
	}
	world := geometry.HittableList{geometry.MustNewSphere(core.NewVec3(0, 0, -1), 0.5, absorber)}

	color := NewPathTracingIntegrator().RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), world, core.NewSeededSampler(1), 10)
	assert.Equal(t, core.Vec3{}, color)
}

func TestPathTracing_MutualMirrorsTerminateAtDepth(t *testing.T) {
	// Two facing perfect mirrors never let the ray escape
	mirror := material.MustNewMetal(core.NewVec3(1, 1, 1), 0)
	counter := &MockMaterial{
		scatterFn: func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
			return mirror.Scatter(rayIn, hit, sampler)
		},
	}
	world := geometry.HittableList{
		geometry.MustNewSphere(core.NewVec3(0, 0, -1001), 1000, counter),
		geometry.MustNewSphere(core.NewVec3(0, 0, 1001), 1000, counter),
	}

	const maxDepth = 37
	color := NewPathTracingIntegrator().RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), world, core.NewSeededSampler(1), maxDepth)
	assert.Equal(t, core.Vec3{}, color)
	assert.Equal(t, maxDepth, counter.calls)
}

func TestPathTracing_LambertianSphereIsFiniteAndDimmed(t *testing.T) {
	world := createTestWorld()
	integrator := NewPathTracingIntegrator()
	sampler := core.NewSeededSampler(42)
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	var sum core.Vec3
	const n = 500
	for i := 0; i < n; i++ {
		c := integrator.RayColor(ray, world, sampler, 10)
		require.True(t, c.IsFinite())
		sum = sum.Add(c)
	}
	mean := sum.Divide(n)

	// One lambertian bounce of albedo (0.7, 0.3, 0.3) against a sky no brighter than 1
	assert.Greater(t, mean.X, 0.0)
	assert.LessOrEqual(t, mean.X, 0.7)
	assert.LessOrEqual(t, mean.Y, 0.3)
	assert.Greater(t, mean.X, mean.Y)
	assert.False(t, math.IsNaN(mean.Z))
}

func TestBackgroundGradient_CustomColors(t *testing.T) {
	integrator := &PathTracingIntegrator{TopColor: core.NewVec3(1, 0, 0), BottomColor: core.NewVec3(0, 0, 1)}
	assert.Equal(t, core.NewVec3(1, 0, 0), integrator.BackgroundGradient(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))))
	assert.Equal(t, core.NewVec3(0, 0, 1), integrator.BackgroundGradient(core.NewRay(core.Vec3{}, core.NewVec3(0, -1, 0))))
}
