package watermark

import (
	"fmt"
	"math"
)

// Plane is one channel of an image: Width*Height samples in row-major order, nominally in [0, 255].
type Plane struct {
	Width  int
	Height int
	Pix    []float64
}

// NewPlane allocates a zeroed plane.
func NewPlane(width, height int) Plane {
	return Plane{Width: width, Height: height, Pix: make([]float64, width*height)}
}

// At returns the sample at column x, row y.
func (p Plane) At(x, y int) float64 {
	return p.Pix[y*p.Width+x]
}

// Set stores v at column x, row y.
func (p Plane) Set(x, y int, v float64) {
	p.Pix[y*p.Width+x] = v
}

// Clone returns a deep copy.
func (p Plane) Clone() Plane {
	out := Plane{Width: p.Width, Height: p.Height, Pix: make([]float64, len(p.Pix))}
	copy(out.Pix, p.Pix)
	return out
}

// quantized rounds every sample to the nearest integer inside [0, 255].
func (p Plane) quantized() Plane {
	out := Plane{Width: p.Width, Height: p.Height, Pix: make([]float64, len(p.Pix))}
	for i, v := range p.Pix {
		out.Pix[i] = clampSample(v)
	}
	return out
}

func clampSample(v float64) float64 {
	return math.Max(0, math.Min(255, math.Round(v)))
}

// Image is the boundary to whatever decodes and encodes image containers.
// Planes are ordered: 1 gray, 2 gray+alpha, 3 RGB, 4 RGBA.
type Image struct {
	Width  int
	Height int
	Planes []Plane
}

// Channels returns the number of planes.
func (img *Image) Channels() int {
	return len(img.Planes)
}

// HasAlpha reports whether the last plane is an alpha channel.
func (img *Image) HasAlpha() bool {
	return len(img.Planes) == 2 || len(img.Planes) == 4
}

// ColorPlanes returns the number of planes that carry color (every plane except alpha).
func (img *Image) ColorPlanes() int {
	if img.HasAlpha() {
		return len(img.Planes) - 1
	}
	return len(img.Planes)
}

// Clone returns a deep copy of the image.
func (img *Image) Clone() *Image {
	out := &Image{Width: img.Width, Height: img.Height, Planes: make([]Plane, len(img.Planes))}
	for i, p := range img.Planes {
		out.Planes[i] = p.Clone()
	}
	return out
}

func (img *Image) validate() error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidDimensions)
	}
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("%w: image is %dx%d", ErrInvalidDimensions, img.Width, img.Height)
	}
	if n := len(img.Planes); n < 1 || n > 4 {
		return fmt.Errorf("%w: %d planes, want 1 to 4", ErrInvalidDimensions, n)
	}
	for i, p := range img.Planes {
		if p.Width != img.Width || p.Height != img.Height || len(p.Pix) != p.Width*p.Height {
			return fmt.Errorf("%w: plane %d is %dx%d with %d samples, image is %dx%d",
				ErrInvalidDimensions, i, p.Width, p.Height, len(p.Pix), img.Width, img.Height)
		}
	}
	return nil
}
