package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/df07/go-pathtracer/pkg/core"
)

// Framebuffer is the quantized output of a render: width*height RGB triples
// stored row-major, row 0 at the top of the image
type Framebuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFramebuffer allocates a black framebuffer
func NewFramebuffer(width, height int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("framebuffer size %dx%d must be positive: %w", width, height, core.ErrInvalidConfig)
	}
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}, nil
}

func (fb *Framebuffer) offset(x, y int) int {
	return (y*fb.Width + x) * 3
}

// Set stores one pixel
func (fb *Framebuffer) Set(x, y int, r, g, b uint8) {
	i := fb.offset(x, y)
	fb.Pix[i] = r
	fb.Pix[i+1] = g
	fb.Pix[i+2] = b
}

// RGBAt returns the stored triple at (x, y)
func (fb *Framebuffer) RGBAt(x, y int) (r, g, b uint8) {
	i := fb.offset(x, y)
	return fb.Pix[i], fb.Pix[i+1], fb.Pix[i+2]
}

// Row returns the bytes of row y
func (fb *Framebuffer) Row(y int) []uint8 {
	start := fb.offset(0, y)
	return fb.Pix[start : start+fb.Width*3]
}

// ColorModel implements image.Image
func (fb *Framebuffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// At implements image.Image; every pixel is opaque
func (fb *Framebuffer) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(fb.Bounds())) {
		return color.RGBA{}
	}
	r, g, b := fb.RGBAt(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// RGBA copies the framebuffer into a standard library image
func (fb *Framebuffer) RGBA() *image.RGBA {
	img := image.NewRGBA(fb.Bounds())
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			r, g, b := fb.RGBAt(x, y)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}
