package renderer

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/integrator"
)

// MaxChannelValue is the ceiling applied to an averaged channel before gamma
// correction, keeping 256*sqrt(c) below 256
const MaxChannelValue = 0.9999

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Validate checks that both budgets are positive
func (c SamplingConfig) Validate() error {
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples per pixel %d must be positive: %w", c.SamplesPerPixel, core.ErrInvalidConfig)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max depth %d must be positive: %w", c.MaxDepth, core.ErrInvalidConfig)
	}
	return nil
}

// RenderOptions tunes how a render is executed. The zero value is usable.
type RenderOptions struct {
	Seed       int64                 // Base seed; each row derives its own sampler from it
	Workers    int                   // Parallel workers, <= 0 means runtime.NumCPU()
	Progress   chan<- Progress       // Optional, receives one event per finished row
	Logger     core.Logger           // Optional, defaults to a no-op logger
	Integrator integrator.Integrator // Optional, defaults to path tracing
}

// Raytracer renders a world through a camera into a framebuffer.
// The world, camera and integrator are shared read-only by all workers.
type Raytracer struct {
	world      geometry.Shape
	camera     *Camera
	width      int
	height     int
	config     SamplingConfig
	options    RenderOptions
	integrator integrator.Integrator
	logger     core.Logger

	rowsCompleted atomic.Int64
}

// NewRaytracer validates the render parameters and creates a raytracer
func NewRaytracer(world geometry.Shape, camera *Camera, width, height int, config SamplingConfig, options RenderOptions) (*Raytracer, error) {
	if world == nil {
		return nil, fmt.Errorf("world is nil: %w", core.ErrInvalidConfig)
	}
	if camera == nil {
		return nil, fmt.Errorf("camera is nil: %w", core.ErrInvalidConfig)
	}
	// Pixel coordinates are divided by width-1 and height-1
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("image size %dx%d must be at least 2x2: %w", width, height, core.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rt := &Raytracer{
		world:      world,
		camera:     camera,
		width:      width,
		height:     height,
		config:     config,
		options:    options,
		integrator: options.Integrator,
		logger:     options.Logger,
	}
	if rt.integrator == nil {
		rt.integrator = integrator.NewPathTracingIntegrator()
	}
	if rt.logger == nil {
		rt.logger = core.NopLogger{}
	}
	return rt, nil
}

// Render renders the whole image, one row per task across the worker pool.
// A cancelled context stops the render and returns the context's error.
func (rt *Raytracer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	start := time.Now()
	rt.rowsCompleted.Store(0)

	fb, err := NewFramebuffer(rt.width, rt.height)
	if err != nil {
		return nil, RenderStats{}, err
	}

	pool := NewWorkerPool(rt, rt.options.Workers)
	stats := RenderStats{
		TotalPixels:     rt.width * rt.height,
		SamplesPerPixel: rt.config.SamplesPerPixel,
		MaxDepth:        rt.config.MaxDepth,
		Workers:         pool.GetNumWorkers(),
	}
	rt.logger.Printf("Rendering %dx%d, %d spp, depth %d, %d workers\n",
		rt.width, rt.height, rt.config.SamplesPerPixel, rt.config.MaxDepth, stats.Workers)

	pool.Start()
	for row := 0; row < rt.height; row++ {
		pool.SubmitTask(RowTask{Ctx: ctx, Row: row, TaskID: row, Framebuffer: fb})
	}

	var renderErr error
	for i := 0; i < rt.height; i++ {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil {
			if renderErr == nil {
				renderErr = result.Error
			}
			continue
		}

		stats.TotalSamples += result.Samples
		completed := int(rt.rowsCompleted.Add(1))
		rt.sendProgress(Progress{RowsCompleted: completed, TotalRows: rt.height})
	}
	pool.Stop()

	stats.Duration = time.Since(start)
	if renderErr == nil {
		renderErr = ctx.Err()
	}
	if renderErr != nil {
		rt.logger.Printf("Render stopped after %d/%d rows: %v\n", rt.RowsCompleted(), rt.height, renderErr)
		return nil, stats, renderErr
	}

	rt.logger.Printf("Render completed in %v (%d samples)\n", stats.Duration, stats.TotalSamples)
	return fb, stats, nil
}

// RowsCompleted returns the number of rows finished by the current or last render
func (rt *Raytracer) RowsCompleted() int {
	return int(rt.rowsCompleted.Load())
}

// sendProgress never blocks; a slow listener misses events rather than
// stalling the render
func (rt *Raytracer) sendProgress(p Progress) {
	if rt.options.Progress == nil {
		return
	}
	select {
	case rt.options.Progress <- p:
	default:
	}
}

// renderRow samples every pixel of image row y into fb and returns the number
// of camera rays traced
func (rt *Raytracer) renderRow(fb *Framebuffer, y int) int {
	sampler := core.NewSeededSampler(RowSeed(rt.options.Seed, y))

	// Image row 0 is the top of the camera's viewport
	j := float64(rt.height - y)
	spp := rt.config.SamplesPerPixel

	for x := 0; x < rt.width; x++ {
		var ps PixelStats
		for s := 0; s < spp; s++ {
			jitter := sampler.Get2D()
			u := (float64(x) + jitter.X) / float64(rt.width-1)
			v := (j + jitter.Y) / float64(rt.height-1)

			ray := rt.camera.GetRay(u, v, sampler)
			ps.AddSample(rt.integrator.RayColor(ray, rt.world, sampler, rt.config.MaxDepth))
		}

		r, g, b := QuantizeColor(ps.GetColor())
		fb.Set(x, y, r, g, b)
	}

	return rt.width * spp
}

// RowSeed derives the sampler seed for one image row, making the image
// independent of worker count and scheduling
func RowSeed(seed int64, row int) int64 {
	return seed*1_000_003 + int64(row) + 42
}

// QuantizeColor maps an averaged linear color to 8-bit channels: clamp to
// [0, MaxChannelValue], gamma 2, scale by 256. NaN channels become 0.
func QuantizeColor(c core.Vec3) (r, g, b uint8) {
	return quantizeChannel(c.X), quantizeChannel(c.Y), quantizeChannel(c.Z)
}

func quantizeChannel(c float64) uint8 {
	if math.IsNaN(c) || c < 0 {
		c = 0
	}
	if c > MaxChannelValue {
		c = MaxChannelValue
	}
	return uint8(256 * math.Sqrt(c))
}

// Render is the single-call entry point: it renders world through camera with
// the default options and returns the quantized image
func Render(world geometry.Shape, camera *Camera, width, height, samplesPerPixel, maxDepth int) (*Framebuffer, error) {
	rt, err := NewRaytracer(world, camera, width, height, SamplingConfig{
		SamplesPerPixel: samplesPerPixel,
		MaxDepth:        maxDepth,
	}, RenderOptions{})
	if err != nil {
		return nil, err
	}

	fb, _, err := rt.Render(context.Background())
	return fb, err
}
