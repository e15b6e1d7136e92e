package core

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomInUnitSphere(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))

	var sum Vec3
	const n = 20000
	for i := 0; i < n; i++ {
		p := RandomInUnitSphere(sampler)
		assert.Less(t, p.LengthSquared(), 1.0)
		sum = sum.Add(p)
	}

	// Uniform distribution is centered on the origin
	mean := sum.Divide(n)
	assert.InDelta(t, 0, mean.X, 0.02)
	assert.InDelta(t, 0, mean.Y, 0.02)
	assert.InDelta(t, 0, mean.Z, 0.02)
}

func TestRandomUnitVector(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))
	for i := 0; i < 5000; i++ {
		assert.InDelta(t, 1.0, RandomUnitVector(sampler).Length(), 1e-9)
	}
}

func TestRandomInUnitDisk(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))
	for i := 0; i < 5000; i++ {
		p := RandomInUnitDisk(sampler)
		assert.Zero(t, p.Z)
		assert.Less(t, p.LengthSquared(), 1.0)
	}
}

func TestSeededSampler_Deterministic(t *testing.T) {
	a := NewSeededSampler(99)
	b := NewSeededSampler(99)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Get3D(), b.Get3D())
	}
}

func TestRandomRange(t *testing.T) {
	sampler := NewSeededSampler(3)
	for i := 0; i < 1000; i++ {
		v := RandomRange(sampler, -2, 5)
		assert.GreaterOrEqual(t, v, -2.0)
		assert.Less(t, v, 5.0)

		c := RandomVec3Range(sampler, 0.5, 1)
		assert.GreaterOrEqual(t, c.X, 0.5)
		assert.Less(t, c.Z, 1.0)
	}
}
