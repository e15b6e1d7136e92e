package material

import (
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Metal represents a metallic material with specular reflection
type Metal struct {
	Albedo   core.Vec3 // Metal color
	Fuzzness float64   // 0.0 = perfect mirror, 1.0 = very fuzzy
}

// NewMetal creates a new metal material. Fuzzness must lie in [0, 1].
func NewMetal(albedo core.Vec3, fuzzness float64) (*Metal, error) {
	if math.IsNaN(fuzzness) || fuzzness < 0 || fuzzness > 1 {
		return nil, fmt.Errorf("metal fuzz %v outside [0, 1]: %w", fuzzness, core.ErrInvalidConfig)
	}
	return &Metal{Albedo: albedo, Fuzzness: fuzzness}, nil
}

// MustNewMetal is NewMetal for hard-coded parameters; it panics on invalid input
func MustNewMetal(albedo core.Vec3, fuzzness float64) *Metal {
	m, err := NewMetal(albedo, fuzzness)
	if err != nil {
		panic(err)
	}
	return m
}

// Scatter implements the Material interface for metal scattering
func (m *Metal) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := Reflect(rayIn.Direction.Normalize(), hit.Normal)

	// Perturb the reflection; a fuzz of zero still consumes no samples
	if m.Fuzzness > 0 {
		reflected = reflected.Add(core.RandomInUnitSphere(sampler).Multiply(m.Fuzzness))
	}

	scattered := core.NewRay(hit.Point, reflected)

	// Fuzzed reflections that point into the surface are absorbed
	if scattered.Direction.Dot(hit.Normal) <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Scattered:   scattered,
		Attenuation: m.Albedo,
	}, true
}
