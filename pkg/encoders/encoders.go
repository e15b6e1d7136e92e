// Package encoders writes finished framebuffers in common image formats.
package encoders

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// Format names accepted by ForFormat
const (
	FormatPPM       = "ppm"
	FormatPPMBinary = "ppm-binary"
	FormatPNG       = "png"
	FormatBMP       = "bmp"
	FormatTIFF      = "tiff"
)

// Encoder serializes a framebuffer
type Encoder interface {
	Encode(w io.Writer, fb *renderer.Framebuffer) error
	// Extension is the conventional file extension, including the dot
	Extension() string
}

var encoders = map[string]Encoder{
	FormatPPM:       PPMEncoder{},
	FormatPPMBinary: PPMEncoder{Binary: true},
	FormatPNG:       PNGEncoder{CompressionLevel: png.DefaultCompression},
	FormatBMP:       BMPEncoder{},
	FormatTIFF:      TIFFEncoder{Compression: tiff.Deflate},
}

// Formats lists the supported format names
func Formats() []string {
	names := make([]string, 0, len(encoders))
	for name := range encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForFormat returns the encoder for a format name
func ForFormat(name string) (Encoder, error) {
	enc, ok := encoders[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported image format %q (supported: %s)", name, strings.Join(Formats(), ", "))
	}
	return enc, nil
}

// FormatFromPath infers the format from a file extension. Plain .ppm files
// use the text variant.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ppm":
		return FormatPPM, nil
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("cannot infer image format from %q", path)
	}
}

// PPMEncoder writes netpbm pixmaps: P3 text with one image row per line, or
// P6 binary when Binary is set
type PPMEncoder struct {
	Binary bool
}

// Encode implements Encoder
func (e PPMEncoder) Encode(w io.Writer, fb *renderer.Framebuffer) error {
	bw := bufio.NewWriter(w)

	magic := "P3"
	if e.Binary {
		magic = "P6"
	}
	if _, err := fmt.Fprintf(bw, "%s\n%d %d\n255\n", magic, fb.Width, fb.Height); err != nil {
		return err
	}

	if e.Binary {
		if _, err := bw.Write(fb.Pix); err != nil {
			return err
		}
		return bw.Flush()
	}

	buf := make([]byte, 0, fb.Width*12)
	for y := 0; y < fb.Height; y++ {
		buf = buf[:0]
		for i, v := range fb.Row(y) {
			if i > 0 {
				buf = append(buf, ' ')
			}
			buf = strconv.AppendUint(buf, uint64(v), 10)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Extension implements Encoder
func (e PPMEncoder) Extension() string {
	return ".ppm"
}

// PNGEncoder writes lossless PNG
type PNGEncoder struct {
	CompressionLevel png.CompressionLevel
}

// Encode implements Encoder
func (e PNGEncoder) Encode(w io.Writer, fb *renderer.Framebuffer) error {
	enc := png.Encoder{CompressionLevel: e.CompressionLevel}
	return enc.Encode(w, fb.RGBA())
}

// Extension implements Encoder
func (e PNGEncoder) Extension() string {
	return ".png"
}

// BMPEncoder writes uncompressed Windows bitmaps
type BMPEncoder struct{}

// Encode implements Encoder
func (BMPEncoder) Encode(w io.Writer, fb *renderer.Framebuffer) error {
	return bmp.Encode(w, fb.RGBA())
}

// Extension implements Encoder
func (BMPEncoder) Extension() string {
	return ".bmp"
}

// TIFFEncoder writes baseline TIFF
type TIFFEncoder struct {
	Compression tiff.CompressionType
}

// Encode implements Encoder
func (e TIFFEncoder) Encode(w io.Writer, fb *renderer.Framebuffer) error {
	return tiff.Encode(w, fb.RGBA(), &tiff.Options{Compression: e.Compression})
}

// Extension implements Encoder
func (e TIFFEncoder) Extension() string {
	return ".tiff"
}
