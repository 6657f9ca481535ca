package watermark

import (
	"io"
	"math"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/rs/zerolog/log"
)

func init() {
	// Silence logs during tests
	log.Logger = log.Output(io.Discard)
}

// texturedPlane returns a deterministic pattern that stays well inside [0, 255].
func texturedPlane(width, height, seed int) Plane {
	p := NewPlane(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			wave := 40 * math.Sin(float64(x+seed)/5) * math.Cos(float64(y+2*seed)/7)
			grain := float64((x*31+y*17+seed*13)%23) - 11
			p.Set(x, y, math.Round(128+wave+grain))
		}
	}
	return p
}

func texturedImage(width, height, channels int) *Image {
	img := &Image{Width: width, Height: height}
	for ch := 0; ch < channels; ch++ {
		if (channels == 2 && ch == 1) || (channels == 4 && ch == 3) {
			alpha := NewPlane(width, height)
			for i := range alpha.Pix {
				alpha.Pix[i] = float64(200 + i%56)
			}
			img.Planes = append(img.Planes, alpha)
			continue
		}
		img.Planes = append(img.Planes, texturedPlane(width, height, ch*7))
	}
	return img
}

// noisyImage returns a gray image of uniform noise in [30, 219].
func noisyImage(width, height int, seed int64) *Image {
	rng := rand.New(rand.NewSource(seed))
	p := NewPlane(width, height)
	for i := range p.Pix {
		p.Pix[i] = float64(30 + rng.Intn(190))
	}
	return &Image{Width: width, Height: height, Planes: []Plane{p}}
}

// fillText returns the longest text that fits a width x height image under params.
func fillText(t *testing.T, width, height int, params *Params) string {
	t.Helper()
	c, err := GetCapacity(width, height, params)
	if err != nil {
		t.Fatalf("GetCapacity failed: %v", err)
	}
	if c.MaxTextBytes < 0 {
		t.Fatalf("%dx%d holds no frame", width, height)
	}
	return strings.Repeat("x", c.MaxTextBytes)
}

func planesEqual(a, b Plane) bool {
	return a.Width == b.Width && a.Height == b.Height && slices.Equal(a.Pix, b.Pix)
}

func imagesEqual(t *testing.T, a, b *Image) bool {
	t.Helper()
	if a.Width != b.Width || a.Height != b.Height || len(a.Planes) != len(b.Planes) {
		return false
	}
	for i := range a.Planes {
		if !planesEqual(a.Planes[i], b.Planes[i]) {
			return false
		}
	}
	return true
}

// flipBlock moves the first designated coefficient of one block by a full step,
// which inverts the bit that block votes for.
func flipBlock(t *testing.T, plane Plane, p *Params, index int) Plane {
	t.Helper()
	part, err := NewPartition(plane.Width, plane.Height, p.BlockSize, p.Edges)
	if err != nil {
		t.Fatalf("NewPartition failed: %v", err)
	}
	tr := NewTransform(p.BlockSize)
	b := part.Block(plane, index)
	coef := tr.Forward(b.Pix)
	coef[p.Positions[0].Row*p.BlockSize+p.Positions[0].Col] += p.Step
	b.Pix = tr.Inverse(coef)
	return part.Reassemble(plane, slices.Values([]Block{b})).quantized()
}
