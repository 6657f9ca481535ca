// Package imageio moves images between files, the standard image package and the
// plane representation used by package watermark.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresmejia3/lfmark/pkg/watermark"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned when an output path has an extension no encoder handles.
var ErrUnsupportedFormat = errors.New("imageio: unsupported format")

// Load decodes the image at path. It also returns the name of the decoder that read it.
func Load(path string) (*watermark.Image, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return FromImage(img), format, nil
}

// Save encodes img to path, picking the container from the file extension.
// JPEG is written at quality 100 to disturb the watermark as little as possible.
func Save(path string, img *watermark.Image) error {
	var encode func(f *os.File, m image.Image) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = func(f *os.File, m image.Image) error { return png.Encode(f, m) }
	case ".jpg", ".jpeg":
		encode = func(f *os.File, m image.Image) error { return jpeg.Encode(f, m, &jpeg.Options{Quality: 100}) }
	case ".bmp":
		encode = func(f *os.File, m image.Image) error { return bmp.Encode(f, m) }
	case ".tif", ".tiff":
		encode = func(f *os.File, m image.Image) error { return tiff.Encode(f, m, &tiff.Options{Compression: tiff.Deflate}) }
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(file, ToImage(img)); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// FromImage splits img into planes. Gray images give one plane, opaque color images
// three (RGB) and everything else four (non-premultiplied RGBA).
func FromImage(img image.Image) *watermark.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	out := &watermark.Image{Width: width, Height: height}

	switch img.(type) {
	case *image.Gray, *image.Gray16:
		gray := watermark.NewPlane(width, height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				c := color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
				gray.Set(x, y, float64(c.Y))
			}
		}
		out.Planes = []watermark.Plane{gray}
		return out
	}

	planes := make([]watermark.Plane, 4)
	for i := range planes {
		planes[i] = watermark.NewPlane(width, height)
	}
	opaque := true
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			planes[0].Set(x, y, float64(c.R))
			planes[1].Set(x, y, float64(c.G))
			planes[2].Set(x, y, float64(c.B))
			planes[3].Set(x, y, float64(c.A))
			if c.A != 0xff {
				opaque = false
			}
		}
	}
	if opaque {
		planes = planes[:3]
	}
	out.Planes = planes
	return out
}

// ToImage builds an image.Image from planes, clamping samples to [0, 255].
func ToImage(img *watermark.Image) image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)
	if img.Channels() == 1 {
		gray := image.NewGray(rect)
		for i, v := range img.Planes[0].Pix {
			gray.Pix[(i/img.Width)*gray.Stride+i%img.Width] = sample(v)
		}
		return gray
	}

	out := image.NewNRGBA(rect)
	for i := 0; i < img.Width*img.Height; i++ {
		off := (i/img.Width)*out.Stride + (i%img.Width)*4
		var r, g, b, a uint8
		switch img.Channels() {
		case 2:
			r = sample(img.Planes[0].Pix[i])
			g, b, a = r, r, sample(img.Planes[1].Pix[i])
		case 3:
			r, g, b, a = sample(img.Planes[0].Pix[i]), sample(img.Planes[1].Pix[i]), sample(img.Planes[2].Pix[i]), 0xff
		default:
			r, g, b, a = sample(img.Planes[0].Pix[i]), sample(img.Planes[1].Pix[i]), sample(img.Planes[2].Pix[i]), sample(img.Planes[3].Pix[i])
		}
		out.Pix[off], out.Pix[off+1], out.Pix[off+2], out.Pix[off+3] = r, g, b, a
	}
	return out
}

func sample(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
