package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// CameraConfig contains all parameters needed to construct a camera
type CameraConfig struct {
	LookFrom      core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter, 0 for a pinhole camera
	FocusDistance float64   // Distance to the focal plane, 0 = auto-calculate
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	zero := core.Vec3{}

	if override.LookFrom != zero {
		result.LookFrom = override.LookFrom
	}
	if override.LookAt != zero {
		result.LookAt = override.LookAt
	}
	if override.Up != zero {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}

	return result
}

// Camera generates rays for rendering. It is immutable after construction.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3
	lensRadius      float64
	config          CameraConfig
}

// NewCamera builds a thin-lens camera from the configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if math.IsNaN(config.VFov) || config.VFov <= 0 || config.VFov >= 180 {
		return nil, fmt.Errorf("vertical field of view %v must be in (0, 180) degrees: %w", config.VFov, core.ErrInvalidConfig)
	}
	if math.IsNaN(config.AspectRatio) || config.AspectRatio <= 0 {
		return nil, fmt.Errorf("aspect ratio %v must be positive: %w", config.AspectRatio, core.ErrInvalidConfig)
	}
	if math.IsNaN(config.Aperture) || config.Aperture < 0 {
		return nil, fmt.Errorf("aperture %v must not be negative: %w", config.Aperture, core.ErrInvalidConfig)
	}
	if math.IsNaN(config.FocusDistance) || config.FocusDistance < 0 {
		return nil, fmt.Errorf("focus distance %v must not be negative: %w", config.FocusDistance, core.ErrInvalidConfig)
	}

	view := config.LookFrom.Subtract(config.LookAt)
	if view.NearZero() {
		return nil, fmt.Errorf("camera look-from %v equals look-at: %w", config.LookFrom, core.ErrInvalidConfig)
	}
	if config.Up.Cross(view).NearZero() {
		return nil, fmt.Errorf("camera up %v is parallel to the view direction: %w", config.Up, core.ErrInvalidConfig)
	}

	// Focus on the look-at point unless told otherwise
	if config.FocusDistance == 0 {
		config.FocusDistance = view.Length()
	}

	theta := config.VFov * math.Pi / 180
	h := math.Tan(theta / 2)
	viewportHeight := 2.0 * h
	viewportWidth := config.AspectRatio * viewportHeight

	// Orthonormal basis
	w := view.Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := config.LookFrom
	horizontal := u.Multiply(viewportWidth * config.FocusDistance)
	vertical := v.Multiply(viewportHeight * config.FocusDistance)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(config.FocusDistance))

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
		config:          config,
	}, nil
}

// GetRay generates a ray for normalized image coordinates (s, t), 0 <= s,t <= 1,
// with (0, 0) at the lower-left corner. The origin is jittered across the lens.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
	offset := c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))

	origin := c.origin.Add(offset)
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// GetCameraForward returns the direction the camera is looking
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// Config returns the configuration the camera was built from, with the
// focus distance resolved
func (c *Camera) Config() CameraConfig {
	return c.config
}
